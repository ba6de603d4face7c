// Package lifecycle drives the purchase request operations of a signed-in
// user and keeps the request lists fresh after every change.
package lifecycle

import (
	"context"
	"strings"
	"sync"

	"procurement/pkg/api"
	"procurement/pkg/cost"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	ErrMissingIdentifier = errors.New("missing request identifier")
	ErrCancelled         = errors.New("operation cancelled")
	ErrInvalidStatus     = errors.New("invalid status")
)

// Gateway is the slice of the API client used for requests.
type Gateway interface {
	ListRequests(ctx context.Context) ([]api.PurchaseRequest, error)
	ListPending(ctx context.Context) ([]api.PurchaseRequest, error)
	ListProcessed(ctx context.Context) ([]api.PurchaseRequest, error)
	CreateRequest(ctx context.Context, in api.PurchaseRequestInput) (*api.PurchaseRequest, error)
	UpdateRequest(ctx context.Context, id string, in api.PurchaseRequestInput) (*api.PurchaseRequest, error)
	DeleteRequest(ctx context.Context, id string) error
	Approve(ctx context.Context, id string) (*api.PurchaseRequest, error)
	Reject(ctx context.Context, id string) (*api.PurchaseRequest, error)
	ChangeStatus(ctx context.Context, id, status string) (*api.PurchaseRequest, error)
}

// IdentitySource yields the signed-in user, or nil.
type IdentitySource interface {
	Current() *api.User
}

// CategorySource yields the catalog snapshot used to price drafts.
type CategorySource interface {
	Categories() []api.Category
}

// Confirm asks the user to confirm prompt. Returning false aborts.
type Confirm func(prompt string) bool

// Lists are the request lists a user sees. Pending and Processed stay empty
// for employees.
type Lists struct {
	All       []api.PurchaseRequest
	Pending   []api.PurchaseRequest
	Processed []api.PurchaseRequest
}

type Manager struct {
	gw         Gateway
	identity   IdentitySource
	categories CategorySource

	mu    sync.RWMutex
	lists Lists
}

func NewManager(gw Gateway, identity IdentitySource, categories CategorySource) *Manager {
	return &Manager{gw: gw, identity: identity, categories: categories}
}

// Lists returns the last fetched lists.
func (m *Manager) Lists() Lists {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Lists{
		All:       append([]api.PurchaseRequest(nil), m.lists.All...),
		Pending:   append([]api.PurchaseRequest(nil), m.lists.Pending...),
		Processed: append([]api.PurchaseRequest(nil), m.lists.Processed...),
	}
}

// Preview returns the cost shown read-only next to the draft.
func (m *Manager) Preview(d Draft) decimal.Decimal {
	var snapshot []api.Category
	if m.categories != nil {
		snapshot = m.categories.Categories()
	}
	return cost.Derive(d.CategoryID, d.Quantity, snapshot)
}

// Refresh refetches every list visible to the current user. Either all of
// them are replaced or none is.
func (m *Manager) Refresh(ctx context.Context) error {
	user := m.identity.Current()
	manager := user != nil && user.IsManager()

	var next Lists
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		next.All, err = m.gw.ListRequests(gctx)
		return errors.Wrap(err, "list requests")
	})
	if manager {
		g.Go(func() (err error) {
			next.Pending, err = m.gw.ListPending(gctx)
			return errors.Wrap(err, "list pending requests")
		})
		g.Go(func() (err error) {
			next.Processed, err = m.gw.ListProcessed(gctx)
			return errors.Wrap(err, "list processed requests")
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("request refresh failed")
		return err
	}

	m.mu.Lock()
	m.lists = next
	m.mu.Unlock()
	return nil
}

func (m *Manager) Create(ctx context.Context, d Draft) (*api.PurchaseRequest, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	created, err := m.gw.CreateRequest(ctx, m.input(d))
	if err != nil {
		log.WithError(err).Error("create request failed")
		return nil, err
	}
	m.refreshAfter(ctx, "create")
	return created, nil
}

// Update sends the edited draft. The server decides whether the caller may
// still edit the request.
func (m *Manager) Update(ctx context.Context, id string, d Draft) (*api.PurchaseRequest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingIdentifier
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	updated, err := m.gw.UpdateRequest(ctx, id, m.input(d))
	if err != nil {
		log.WithError(err).WithField("request_id", id).Error("update request failed")
		return nil, err
	}
	m.refreshAfter(ctx, "update")
	return updated, nil
}

func (m *Manager) Delete(ctx context.Context, id string, confirm Confirm) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingIdentifier
	}
	if confirm == nil || !confirm("Eliminare la richiesta?") {
		return ErrCancelled
	}
	if err := m.gw.DeleteRequest(ctx, id); err != nil {
		log.WithError(err).WithField("request_id", id).Error("delete request failed")
		return err
	}
	m.refreshAfter(ctx, "delete")
	return nil
}

func (m *Manager) Approve(ctx context.Context, id string) (*api.PurchaseRequest, error) {
	return m.decide(ctx, "approve", id, m.gw.Approve)
}

func (m *Manager) Reject(ctx context.Context, id string) (*api.PurchaseRequest, error) {
	return m.decide(ctx, "reject", id, m.gw.Reject)
}

// ChangeStatus moves the request to any of the three states, back to
// pending included.
func (m *Manager) ChangeStatus(ctx context.Context, id, status string) (*api.PurchaseRequest, error) {
	if !api.ValidStatus(status) {
		return nil, errors.Wrapf(ErrInvalidStatus, "%q", status)
	}
	return m.decide(ctx, "change status", id, func(ctx context.Context, id string) (*api.PurchaseRequest, error) {
		return m.gw.ChangeStatus(ctx, id, status)
	})
}

func (m *Manager) decide(ctx context.Context, op, id string, call func(context.Context, string) (*api.PurchaseRequest, error)) (*api.PurchaseRequest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingIdentifier
	}
	res, err := call(ctx, id)
	if err != nil {
		log.WithError(err).WithField("request_id", id).Errorf("%s failed", op)
		return nil, err
	}
	m.refreshAfter(ctx, op)
	return res, nil
}

// refreshAfter refetches after a successful mutation. A failed refetch keeps
// the previous lists and does not undo the mutation.
func (m *Manager) refreshAfter(ctx context.Context, op string) {
	if err := m.Refresh(ctx); err != nil {
		log.WithError(err).WithField("op", op).Warn("lists left stale after mutation")
	}
}

func (m *Manager) input(d Draft) api.PurchaseRequestInput {
	return api.PurchaseRequestInput{
		CategoryID:    d.CategoryID,
		Quantity:      d.Quantity,
		Cost:          m.Preview(d),
		Justification: strings.TrimSpace(d.Justification),
	}
}

// CanModify reports whether identity gets the edit and delete affordances on
// r: only the owner, and only while r is pending.
func CanModify(identity *api.User, r api.PurchaseRequest) bool {
	return identity != nil && r.IsPending() && r.Owner.ID == identity.ID
}

// CanDelete extends CanModify with the manager's right to delete any request.
func CanDelete(identity *api.User, r api.PurchaseRequest) bool {
	return identity != nil && (identity.IsManager() || CanModify(identity, r))
}
