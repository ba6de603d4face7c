package service

import (
	"bytes"
	"context"
	"testing"

	"procurement/internal/model"
	"procurement/pkg/api"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seedDecisions(t *testing.T) (*store, Actor, Actor) {
	t.Helper()
	f := newRequestFixture(t)
	ctx := context.Background()

	first := f.create(t, f.employee, 2)
	f.create(t, f.employee, 1)
	third := f.create(t, f.other, 3)

	_, err := f.svc.Approve(ctx, f.manager, first.ID)
	require.NoError(t, err)
	_, err = f.svc.Reject(ctx, f.manager, third.ID)
	require.NoError(t, err)
	return f.store, f.manager, f.employee
}

func TestRequestStats(t *testing.T) {
	s, manager, employee := seedDecisions(t)
	svc := NewStatisticsService(fakeRequestRepo{s})
	ctx := context.Background()

	stats, err := svc.RequestStats(ctx, manager)
	require.NoError(t, err)
	require.Len(t, stats.ByStatus, 3)

	got := map[string]api.StatusCount{}
	for _, c := range stats.ByStatus {
		got[c.Status] = c
	}
	assert.EqualValues(t, 1, got[api.StatusPending].Count)
	assert.EqualValues(t, 1, got[api.StatusApproved].Count)
	assert.EqualValues(t, 1, got[api.StatusRejected].Count)
	assert.True(t, stats.ApprovedTotal.Equal(decimal.NewFromInt(2000)))
	assert.True(t, got[api.StatusRejected].Total.Equal(decimal.NewFromInt(3000)))

	_, err = svc.RequestStats(ctx, employee)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRequestStatsOnEmptyStore(t *testing.T) {
	s := newStore()
	manager := s.actor(s.addUser("Marco", api.RoleManager))

	stats, err := NewStatisticsService(fakeRequestRepo{s}).RequestStats(context.Background(), manager)
	require.NoError(t, err)
	require.Len(t, stats.ByStatus, 3)
	for _, c := range stats.ByStatus {
		assert.Zero(t, c.Count)
	}
	assert.True(t, stats.ApprovedTotal.IsZero())
}

func TestAuditLogsArePagedNewestFirst(t *testing.T) {
	s, manager, employee := seedDecisions(t)
	svc := NewAuditService(fakeAuditRepo{s})
	ctx := context.Background()

	logs, total, err := svc.GetAuditLogs(ctx, manager, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, logs, 2)
	assert.Equal(t, model.ActionRejectRequest, logs[0].Action)
	assert.Equal(t, model.ActionApproveRequest, logs[1].Action)
	assert.Equal(t, "Marco Test", logs[0].UserName)

	_, _, err = svc.GetAuditLogs(ctx, employee, 0, 10)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestExportRequests(t *testing.T) {
	s, manager, employee := seedDecisions(t)
	svc := NewExportService(fakeRequestRepo{s}, fakeCategoryRepo{s})
	ctx := context.Background()

	buf, err := svc.ExportRequests(ctx, manager)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, exportHeaders, rows[0])
	for _, row := range rows[1:] {
		assert.Equal(t, "Laptop", row[2])
	}

	_, err = svc.ExportRequests(ctx, employee)
	assert.ErrorIs(t, err, ErrForbidden)
}
