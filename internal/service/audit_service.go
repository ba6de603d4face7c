package service

import (
	"context"
	"fmt"

	"procurement/internal/repository"
	"procurement/pkg/api"
)

type AuditService interface {
	GetAuditLogs(ctx context.Context, actor Actor, offset, limit int) ([]api.AuditLog, int64, error)
}

type auditService struct {
	audit repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(audit repository.AuditRepository) AuditService {
	return &auditService{audit: audit}
}

// GetAuditLogs returns one page of audit entries, newest first, with the acting user's name.
func (s *auditService) GetAuditLogs(ctx context.Context, actor Actor, offset, limit int) ([]api.AuditLog, int64, error) {
	if !actor.IsManager() {
		return nil, 0, ErrForbidden
	}

	logs, total, err := s.audit.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	res := make([]api.AuditLog, 0, len(logs))
	for _, l := range logs {
		userName := "System"
		userID := ""
		if l.User != nil {
			userName = toUser(*l.User).FullName()
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}

		res = append(res, api.AuditLog{
			ID:        l.ID.String(),
			UserID:    userID,
			UserName:  userName,
			Action:    l.Action,
			EntityID:  l.EntityID,
			Details:   l.Details,
			CreatedAt: l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}
