package service

import (
	"context"
	"fmt"

	"procurement/internal/repository"
	"procurement/pkg/api"

	"github.com/shopspring/decimal"
)

type StatisticsService interface {
	RequestStats(ctx context.Context, actor Actor) (api.RequestStats, error)
}

type statisticsService struct {
	requests repository.PurchaseRequestRepository
}

func NewStatisticsService(requests repository.PurchaseRequestRepository) StatisticsService {
	return &statisticsService{requests: requests}
}

// RequestStats returns request count and cost total per status. Every status
// is present in the result, with zero values when no request is in it.
func (s *statisticsService) RequestStats(ctx context.Context, actor Actor) (api.RequestStats, error) {
	var stats api.RequestStats
	if !actor.IsManager() {
		return stats, ErrForbidden
	}

	rows, err := s.requests.TotalsByStatus(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate purchase requests: %w", err)
	}

	byStatus := make(map[string]repository.StatusTotal, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row
	}

	stats.ApprovedTotal = decimal.Zero
	for _, status := range []string{api.StatusPending, api.StatusApproved, api.StatusRejected} {
		row := byStatus[status]
		count := api.StatusCount{Status: status, Count: row.Count, Total: row.Total}
		stats.ByStatus = append(stats.ByStatus, count)
		if status == api.StatusApproved {
			stats.ApprovedTotal = row.Total
		}
	}
	return stats, nil
}
