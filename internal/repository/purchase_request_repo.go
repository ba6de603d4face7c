package repository

import (
	"context"

	"procurement/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestFilter narrows List. Zero values mean "no restriction".
type RequestFilter struct {
	OwnerID       *uuid.UUID
	Status        string
	ExcludeStatus string
}

// StatusTotal is one row of the per-status aggregate.
type StatusTotal struct {
	Status string
	Count  int64
	Total  decimal.Decimal
}

type PurchaseRequestRepository interface {
	Create(ctx context.Context, req *model.PurchaseRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]model.PurchaseRequest, error)
	Update(ctx context.Context, req *model.PurchaseRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	TotalsByStatus(ctx context.Context) ([]StatusTotal, error)
}

type purchaseRequestRepository struct {
	db *gorm.DB
}

func NewPurchaseRequestRepository(db *gorm.DB) PurchaseRequestRepository {
	return &purchaseRequestRepository{db: db}
}

func (r *purchaseRequestRepository) Create(ctx context.Context, req *model.PurchaseRequest) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(req).Error
}

// FindByID loads the request with its owner and approver.
func (r *purchaseRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	if err := GetDB(ctx, r.db).Preload("User").Preload("Approver").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *purchaseRequestRepository) List(ctx context.Context, filter RequestFilter) ([]model.PurchaseRequest, error) {
	var requests []model.PurchaseRequest

	query := GetDB(ctx, r.db).Preload("User").Preload("Approver")
	if filter.OwnerID != nil {
		query = query.Where("user_id = ?", *filter.OwnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ExcludeStatus != "" {
		query = query.Where("status <> ?", filter.ExcludeStatus)
	}

	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Update writes the request row only; preloaded users are never upserted.
func (r *purchaseRequestRepository) Update(ctx context.Context, req *model.PurchaseRequest) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(req).Error
}

func (r *purchaseRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.PurchaseRequest{}).Error
}

func (r *purchaseRequestRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.PurchaseRequest{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

func (r *purchaseRequestRepository) TotalsByStatus(ctx context.Context) ([]StatusTotal, error) {
	var rows []StatusTotal
	err := GetDB(ctx, r.db).Model(&model.PurchaseRequest{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(cost), 0) AS total").
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, err
}
