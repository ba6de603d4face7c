package service

import (
	"context"
	"errors"
	"testing"

	"procurement/internal/model"
	"procurement/pkg/api"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCategoryService(s *store) CategoryService {
	return NewCategoryService(fakeTx{}, fakeCategoryRepo{s}, fakeRequestRepo{s}, fakeAuditRepo{s})
}

func TestCategoryCRUD(t *testing.T) {
	s := newStore()
	svc := newCategoryService(s)
	manager := s.actor(s.addUser("Marco", api.RoleManager))
	ctx := context.Background()

	created, err := svc.Create(ctx, manager, api.CategoryInput{
		Description: "  Monitor ",
		UnitCost:    decimal.NewNullDecimal(decimal.RequireFromString("249.90")),
	})
	require.NoError(t, err)
	assert.Equal(t, "Monitor", created.Description)
	assert.True(t, created.UnitCost.Valid)

	updated, err := svc.Update(ctx, manager, created.ID, api.CategoryInput{Description: "Monitor 27\""})
	require.NoError(t, err)
	assert.Equal(t, "Monitor 27\"", updated.Description)
	assert.False(t, updated.UnitCost.Valid, "unit cost can be removed")

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, manager, created.ID))
	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.Equal(t, []string{
		model.ActionCreateCategory,
		model.ActionUpdateCategory,
		model.ActionDeleteCategory,
	}, s.actions())
}

func TestCategoryMutationsAreManagerOnly(t *testing.T) {
	s := newStore()
	svc := newCategoryService(s)
	employee := s.actor(s.addUser("Anna", api.RoleEmployee))
	existing := s.addCategory("Laptop", nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, employee, api.CategoryInput{Description: "Chair"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Update(ctx, employee, existing.ID.String(), api.CategoryInput{Description: "Chair"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, employee, existing.ID.String()), ErrForbidden)
	assert.Empty(t, s.actions())
}

func TestCategoryValidation(t *testing.T) {
	s := newStore()
	svc := newCategoryService(s)
	manager := s.actor(s.addUser("Marco", api.RoleManager))
	ctx := context.Background()

	_, err := svc.Create(ctx, manager, api.CategoryInput{Description: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, manager, api.CategoryInput{
		Description: "Refund",
		UnitCost:    decimal.NewNullDecimal(decimal.NewFromInt(-1)),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, manager, "c1", api.CategoryInput{Description: "Laptop"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteReferencedCategoryIsRefused(t *testing.T) {
	s := newStore()
	svc := newCategoryService(s)
	manager := s.actor(s.addUser("Marco", api.RoleManager))
	employee := s.actor(s.addUser("Anna", api.RoleEmployee))
	unit := decimal.NewFromInt(1000)
	laptop := s.addCategory("Laptop", &unit)
	ctx := context.Background()

	requests := NewPurchaseRequestService(fakeTx{}, fakeRequestRepo{s}, fakeCategoryRepo{s}, fakeAuditRepo{s}, nil)
	for i := 0; i < 2; i++ {
		_, err := requests.Create(ctx, employee, api.PurchaseRequestInput{
			CategoryID: laptop.ID.String(), Quantity: 1, Justification: "Need for new hire onboarding",
		})
		require.NoError(t, err)
	}

	err := svc.Delete(ctx, manager, laptop.ID.String())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCategoryInUse)
	assert.Equal(t, "category is used by 2 purchase request(s)", err.Error())

	var inUse *CategoryInUseError
	require.True(t, errors.As(err, &inUse))
	assert.EqualValues(t, 2, inUse.Count)

	_, stillThere := s.categories[laptop.ID]
	assert.True(t, stillThere)
}
