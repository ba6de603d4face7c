package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/pkg/api"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("operation not permitted")
	ErrNotPending         = errors.New("request is no longer pending")
	ErrCategoryInUse      = errors.New("category is in use")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid input")
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// CategoryInUseError reports how many requests still reference a category.
type CategoryInUseError struct {
	Count int64
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("category is used by %d purchase request(s)", e.Count)
}

func (e *CategoryInUseError) Is(target error) bool {
	return target == ErrCategoryInUse
}

func (a Actor) IsManager() bool {
	return a.Role == api.RoleManager
}

// EventPublisher receives request lifecycle events after commit.
type EventPublisher interface {
	Publish(event api.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(api.Event) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

func writeAudit(ctx context.Context, repo repository.AuditRepository, actor Actor, action, entityID string, details map[string]interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return err
	}
	userID := actor.ID
	return repo.Log(ctx, &model.AuditLog{
		UserID:   &userID,
		Action:   action,
		EntityID: entityID,
		Details:  string(payload),
	})
}

func logger(ctx context.Context, actor Actor) *log.Entry {
	return log.WithContext(ctx).
		WithField("user_id", actor.ID.String()).
		WithField("role", actor.Role)
}
