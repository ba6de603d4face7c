// Package catalog manages the category list shown to managers and used to
// price purchase requests.
package catalog

import (
	"context"
	"strings"
	"sync"

	"procurement/pkg/api"
	"procurement/pkg/client"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	ErrMissingIdentifier  = errors.New("missing category identifier")
	ErrMissingDescription = errors.New("description is required")
	ErrNegativeCost       = errors.New("unit cost cannot be negative")
	ErrCancelled          = errors.New("operation cancelled")
)

type Gateway interface {
	ListCategories(ctx context.Context) ([]api.Category, error)
	CreateCategory(ctx context.Context, in api.CategoryInput) (*api.Category, error)
	UpdateCategory(ctx context.Context, id string, in api.CategoryInput) (*api.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// Confirm asks the user to confirm prompt. Returning false aborts.
type Confirm func(prompt string) bool

type Manager struct {
	gw Gateway

	mu         sync.RWMutex
	categories []api.Category
}

func NewManager(gw Gateway) *Manager {
	return &Manager{gw: gw}
}

// Categories returns the last fetched snapshot.
func (m *Manager) Categories() []api.Category {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]api.Category(nil), m.categories...)
}

// Find looks a category up in the snapshot.
func (m *Manager) Find(id string) (api.Category, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.categories {
		if c.ID == id {
			return c, true
		}
	}
	return api.Category{}, false
}

func (m *Manager) Refresh(ctx context.Context) error {
	list, err := m.gw.ListCategories(ctx)
	if err != nil {
		log.WithError(err).Warn("category refresh failed")
		return err
	}
	m.mu.Lock()
	m.categories = list
	m.mu.Unlock()
	return nil
}

func (m *Manager) Create(ctx context.Context, in api.CategoryInput) (*api.Category, error) {
	in, err := checkInput(in)
	if err != nil {
		return nil, err
	}
	created, err := m.gw.CreateCategory(ctx, in)
	if err != nil {
		log.WithError(err).Error("create category failed")
		return nil, err
	}
	m.refreshAfter(ctx)
	return created, nil
}

func (m *Manager) Update(ctx context.Context, id string, in api.CategoryInput) (*api.Category, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingIdentifier
	}
	in, err := checkInput(in)
	if err != nil {
		return nil, err
	}
	updated, err := m.gw.UpdateCategory(ctx, id, in)
	if err != nil {
		log.WithError(err).WithField("category_id", id).Error("update category failed")
		return nil, err
	}
	m.refreshAfter(ctx)
	return updated, nil
}

// Delete removes the category after confirmation. When the server refuses,
// client.Message(err) is its reason verbatim.
func (m *Manager) Delete(ctx context.Context, id string, confirm Confirm) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingIdentifier
	}
	if confirm == nil || !confirm("Eliminare la categoria?") {
		return ErrCancelled
	}
	if err := m.gw.DeleteCategory(ctx, id); err != nil {
		log.WithError(err).WithField("category_id", id).Warnf("delete category refused: %s", client.Message(err))
		return err
	}
	m.refreshAfter(ctx)
	return nil
}

func (m *Manager) refreshAfter(ctx context.Context) {
	if err := m.Refresh(ctx); err != nil {
		log.WithError(err).Warn("categories left stale after mutation")
	}
}

func checkInput(in api.CategoryInput) (api.CategoryInput, error) {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return in, ErrMissingDescription
	}
	if in.UnitCost.Valid && in.UnitCost.Decimal.IsNegative() {
		return in, ErrNegativeCost
	}
	return in, nil
}
