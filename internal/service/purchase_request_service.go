package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"procurement/internal/metrics"
	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/pkg/api"
	"procurement/pkg/cost"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseRequestService owns the request lifecycle:
//
//	create (owner) ──► In attesa ──approve/reject (manager)──► Approvata | Rifiutata
//	change status (manager): any ──► any, re-opening clears the decision
//
// Employees see and mutate only their own requests, and only while pending.
type PurchaseRequestService interface {
	List(ctx context.Context, actor Actor) ([]api.PurchaseRequest, error)
	ListPending(ctx context.Context, actor Actor) ([]api.PurchaseRequest, error)
	ListProcessed(ctx context.Context, actor Actor) ([]api.PurchaseRequest, error)
	Get(ctx context.Context, actor Actor, id string) (*api.PurchaseRequest, error)
	Create(ctx context.Context, actor Actor, input api.PurchaseRequestInput) (*api.PurchaseRequest, error)
	Update(ctx context.Context, actor Actor, id string, input api.PurchaseRequestInput) (*api.PurchaseRequest, error)
	Delete(ctx context.Context, actor Actor, id string) error
	Approve(ctx context.Context, actor Actor, id string) (*api.PurchaseRequest, error)
	Reject(ctx context.Context, actor Actor, id string) (*api.PurchaseRequest, error)
	ChangeStatus(ctx context.Context, actor Actor, id string, status string) (*api.PurchaseRequest, error)
}

type purchaseRequestService struct {
	tx         repository.TransactionManager
	requests   repository.PurchaseRequestRepository
	categories repository.CategoryRepository
	audit      repository.AuditRepository
	events     EventPublisher
	now        func() time.Time
}

func NewPurchaseRequestService(
	tx repository.TransactionManager,
	requests repository.PurchaseRequestRepository,
	categories repository.CategoryRepository,
	audit repository.AuditRepository,
	events EventPublisher,
) PurchaseRequestService {
	return &purchaseRequestService{
		tx:         tx,
		requests:   requests,
		categories: categories,
		audit:      audit,
		events:     publisherOrNop(events),
		now:        time.Now,
	}
}

func validateRequestInput(input api.PurchaseRequestInput) (api.PurchaseRequestInput, uuid.UUID, error) {
	input.Justification = strings.TrimSpace(input.Justification)
	if input.Quantity < 1 {
		return input, uuid.Nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	if utf8.RuneCountInString(input.Justification) < api.MinJustificationLength {
		return input, uuid.Nil, fmt.Errorf("%w: justification must be at least %d characters", ErrInvalidInput, api.MinJustificationLength)
	}
	categoryID, err := uuid.Parse(input.CategoryID)
	if err != nil {
		return input, uuid.Nil, fmt.Errorf("%w: unknown category", ErrInvalidInput)
	}
	return input, categoryID, nil
}

// --- Queries ---

func (s *purchaseRequestService) List(ctx context.Context, actor Actor) ([]api.PurchaseRequest, error) {
	filter := repository.RequestFilter{}
	if !actor.IsManager() {
		ownerID := actor.ID
		filter.OwnerID = &ownerID
	}
	return s.list(ctx, filter)
}

func (s *purchaseRequestService) ListPending(ctx context.Context, actor Actor) ([]api.PurchaseRequest, error) {
	if !actor.IsManager() {
		return nil, ErrForbidden
	}
	return s.list(ctx, repository.RequestFilter{Status: api.StatusPending})
}

func (s *purchaseRequestService) ListProcessed(ctx context.Context, actor Actor) ([]api.PurchaseRequest, error) {
	if !actor.IsManager() {
		return nil, ErrForbidden
	}
	return s.list(ctx, repository.RequestFilter{ExcludeStatus: api.StatusPending})
}

func (s *purchaseRequestService) list(ctx context.Context, filter repository.RequestFilter) ([]api.PurchaseRequest, error) {
	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch purchase requests: %w", err)
	}
	return toPurchaseRequests(requests), nil
}

// Get hides other users' requests from employees behind ErrNotFound.
func (s *purchaseRequestService) Get(ctx context.Context, actor Actor, id string) (*api.PurchaseRequest, error) {
	req, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && req.UserID != actor.ID {
		return nil, ErrNotFound
	}
	out := toPurchaseRequest(*req)
	return &out, nil
}

// --- Owner operations ---

func (s *purchaseRequestService) Create(ctx context.Context, actor Actor, input api.PurchaseRequestInput) (*api.PurchaseRequest, error) {
	input, categoryID, err := validateRequestInput(input)
	if err != nil {
		return nil, err
	}

	req := model.PurchaseRequest{
		UserID:        actor.ID,
		CategoryID:    categoryID,
		Quantity:      input.Quantity,
		Justification: input.Justification,
		Status:        api.StatusPending,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		category, err := s.category(txCtx, categoryID)
		if err != nil {
			return err
		}
		req.Cost = cost.Of(category.UnitCost, req.Quantity)

		if err := s.requests.Create(txCtx, &req); err != nil {
			return fmt.Errorf("failed to create purchase request: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionCreateRequest, req.ID.String(), map[string]interface{}{
			"category_id": req.CategoryID.String(),
			"quantity":    req.Quantity,
			"cost":        req.Cost,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.afterMutation(ctx, actor, req.ID, model.ActionCreateRequest, api.EventRequestCreated)
}

// Update lets the owner rewrite a request while it is still pending. Cost is
// re-derived from the (possibly new) category.
func (s *purchaseRequestService) Update(ctx context.Context, actor Actor, id string, input api.PurchaseRequestInput) (*api.PurchaseRequest, error) {
	input, categoryID, err := validateRequestInput(input)
	if err != nil {
		return nil, err
	}
	requestID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.requests.FindByID(txCtx, requestID)
		if err != nil {
			return notFound(err)
		}
		if req.UserID != actor.ID {
			if actor.IsManager() {
				return fmt.Errorf("%w: only the owner may edit a request", ErrForbidden)
			}
			return ErrNotFound
		}
		if req.Status != api.StatusPending {
			return ErrNotPending
		}

		category, err := s.category(txCtx, categoryID)
		if err != nil {
			return err
		}

		req.CategoryID = categoryID
		req.Quantity = input.Quantity
		req.Justification = input.Justification
		req.Cost = cost.Of(category.UnitCost, input.Quantity)

		if err := s.requests.Update(txCtx, req); err != nil {
			return fmt.Errorf("failed to update purchase request: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionUpdateRequest, req.ID.String(), map[string]interface{}{
			"category_id": req.CategoryID.String(),
			"quantity":    req.Quantity,
			"cost":        req.Cost,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.afterMutation(ctx, actor, requestID, model.ActionUpdateRequest, api.EventRequestUpdated)
}

// Delete: employees may delete their own pending requests, managers any request.
func (s *purchaseRequestService) Delete(ctx context.Context, actor Actor, id string) error {
	requestID, err := parseID(id)
	if err != nil {
		return err
	}

	var ownerID uuid.UUID
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.requests.FindByID(txCtx, requestID)
		if err != nil {
			return notFound(err)
		}
		if !actor.IsManager() {
			if req.UserID != actor.ID {
				return ErrNotFound
			}
			if req.Status != api.StatusPending {
				return ErrNotPending
			}
		}
		ownerID = req.UserID

		if err := s.requests.Delete(txCtx, requestID); err != nil {
			return fmt.Errorf("failed to delete purchase request: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionDeleteRequest, requestID.String(), map[string]interface{}{
			"owner_id": req.UserID.String(),
			"status":   req.Status,
		})
	})
	if err != nil {
		return err
	}

	metrics.RecordRequestAction(model.ActionDeleteRequest)
	s.events.Publish(api.Event{Type: api.EventRequestDeleted, ID: requestID.String(), OwnerID: ownerID.String()})
	logger(ctx, actor).WithField("request_id", requestID.String()).Info("purchase request deleted")
	return nil
}

// --- Manager decisions ---

func (s *purchaseRequestService) Approve(ctx context.Context, actor Actor, id string) (*api.PurchaseRequest, error) {
	return s.decide(ctx, actor, id, api.StatusApproved, model.ActionApproveRequest)
}

func (s *purchaseRequestService) Reject(ctx context.Context, actor Actor, id string) (*api.PurchaseRequest, error) {
	return s.decide(ctx, actor, id, api.StatusRejected, model.ActionRejectRequest)
}

// decide moves a pending request to status and records who decided and when.
func (s *purchaseRequestService) decide(ctx context.Context, actor Actor, id, status, action string) (*api.PurchaseRequest, error) {
	if !actor.IsManager() {
		return nil, ErrForbidden
	}
	requestID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.requests.FindByID(txCtx, requestID)
		if err != nil {
			return notFound(err)
		}
		if req.Status != api.StatusPending {
			return fmt.Errorf("%w: request is already %s", ErrNotPending, req.Status)
		}

		s.setStatus(req, actor, status)
		if err := s.requests.Update(txCtx, req); err != nil {
			return fmt.Errorf("failed to update purchase request: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, action, req.ID.String(), map[string]interface{}{
			"status": status,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordStatusTransition(status)
	return s.afterMutation(ctx, actor, requestID, action, api.EventRequestStatus)
}

// ChangeStatus sets any of the three states unconditionally. Moving a request
// back to pending clears its decision; any other target records the caller
// as the decider.
func (s *purchaseRequestService) ChangeStatus(ctx context.Context, actor Actor, id string, status string) (*api.PurchaseRequest, error) {
	if !actor.IsManager() {
		return nil, ErrForbidden
	}
	if !api.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	requestID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.requests.FindByID(txCtx, requestID)
		if err != nil {
			return notFound(err)
		}

		previous := req.Status
		s.setStatus(req, actor, status)
		if err := s.requests.Update(txCtx, req); err != nil {
			return fmt.Errorf("failed to update purchase request: %w", err)
		}
		return writeAudit(txCtx, s.audit, actor, model.ActionChangeStatus, req.ID.String(), map[string]interface{}{
			"from": previous,
			"to":   status,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordStatusTransition(status)
	return s.afterMutation(ctx, actor, requestID, model.ActionChangeStatus, api.EventRequestStatus)
}

func (s *purchaseRequestService) setStatus(req *model.PurchaseRequest, actor Actor, status string) {
	req.Status = status
	if status == api.StatusPending {
		req.DecidedBy = nil
		req.DecidedAt = nil
		req.Approver = nil
		return
	}
	now := s.now()
	deciderID := actor.ID
	req.DecidedBy = &deciderID
	req.DecidedAt = &now
	req.Approver = nil
}

// --- Helpers ---

func (s *purchaseRequestService) find(ctx context.Context, id string) (*model.PurchaseRequest, error) {
	requestID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, notFound(err)
	}
	return req, nil
}

func (s *purchaseRequestService) category(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown category", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return category, nil
}

// afterMutation reloads the request with its relations and emits metrics and events.
func (s *purchaseRequestService) afterMutation(ctx context.Context, actor Actor, id uuid.UUID, action, eventType string) (*api.PurchaseRequest, error) {
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload purchase request: %w", err)
	}
	out := toPurchaseRequest(*req)

	metrics.RecordRequestAction(action)
	s.events.Publish(api.Event{Type: eventType, Request: &out})
	logger(ctx, actor).
		WithField("request_id", out.ID).
		WithField("action", action).
		WithField("status", out.Status).
		Info("purchase request changed")
	return &out, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
