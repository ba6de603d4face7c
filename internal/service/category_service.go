package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/pkg/api"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryService maintains the category catalog. Mutations are manager-only.
type CategoryService interface {
	List(ctx context.Context) ([]api.Category, error)
	Create(ctx context.Context, actor Actor, input api.CategoryInput) (*api.Category, error)
	Update(ctx context.Context, actor Actor, id string, input api.CategoryInput) (*api.Category, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type categoryService struct {
	tx         repository.TransactionManager
	categories repository.CategoryRepository
	requests   repository.PurchaseRequestRepository
	audit      repository.AuditRepository
}

func NewCategoryService(
	tx repository.TransactionManager,
	categories repository.CategoryRepository,
	requests repository.PurchaseRequestRepository,
	audit repository.AuditRepository,
) CategoryService {
	return &categoryService{tx: tx, categories: categories, requests: requests, audit: audit}
}

func validateCategoryInput(input api.CategoryInput) (api.CategoryInput, error) {
	input.Description = strings.TrimSpace(input.Description)
	if input.Description == "" {
		return input, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if input.UnitCost.Valid && input.UnitCost.Decimal.IsNegative() {
		return input, fmt.Errorf("%w: unit cost must not be negative", ErrInvalidInput)
	}
	return input, nil
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return parsed, nil
}

func (s *categoryService) List(ctx context.Context) ([]api.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	out := make([]api.Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategory(c))
	}
	return out, nil
}

func (s *categoryService) Create(ctx context.Context, actor Actor, input api.CategoryInput) (*api.Category, error) {
	if !actor.IsManager() {
		return nil, ErrForbidden
	}
	input, err := validateCategoryInput(input)
	if err != nil {
		return nil, err
	}

	category := model.Category{Description: input.Description, UnitCost: input.UnitCost}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.categories.Create(txCtx, &category); err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionCreateCategory, category.ID.String(), map[string]interface{}{
			"description": category.Description,
			"unit_cost":   category.UnitCost,
		})
	})
	if err != nil {
		return nil, err
	}

	logger(ctx, actor).WithField("category_id", category.ID.String()).Info("category created")
	out := toCategory(category)
	return &out, nil
}

func (s *categoryService) Update(ctx context.Context, actor Actor, id string, input api.CategoryInput) (*api.Category, error) {
	if !actor.IsManager() {
		return nil, ErrForbidden
	}
	categoryID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	input, err = validateCategoryInput(input)
	if err != nil {
		return nil, err
	}

	var category *model.Category
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		category, err = s.categories.FindByID(txCtx, categoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		category.Description = input.Description
		category.UnitCost = input.UnitCost
		if err := s.categories.Update(txCtx, category); err != nil {
			return fmt.Errorf("failed to update category: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionUpdateCategory, category.ID.String(), map[string]interface{}{
			"description": category.Description,
			"unit_cost":   category.UnitCost,
		})
	})
	if err != nil {
		return nil, err
	}

	out := toCategory(*category)
	return &out, nil
}

// Delete refuses to remove a category that purchase requests still reference.
func (s *categoryService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsManager() {
		return ErrForbidden
	}
	categoryID, err := parseID(id)
	if err != nil {
		return err
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		category, err := s.categories.FindByID(txCtx, categoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		used, err := s.requests.CountByCategory(txCtx, categoryID)
		if err != nil {
			return fmt.Errorf("failed to count category usage: %w", err)
		}
		if used > 0 {
			return &CategoryInUseError{Count: used}
		}

		if err := s.categories.Delete(txCtx, categoryID); err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionDeleteCategory, categoryID.String(), map[string]interface{}{
			"description": category.Description,
		})
	})
}
