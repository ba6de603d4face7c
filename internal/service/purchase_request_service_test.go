package service

import (
	"context"
	"testing"
	"time"

	"procurement/internal/model"
	"procurement/pkg/api"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestFixture struct {
	store    *store
	svc      PurchaseRequestService
	events   *recordingPublisher
	manager  Actor
	employee Actor
	other    Actor
	laptop   model.Category
	freebie  model.Category
	now      time.Time
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()
	s := newStore()
	events := &recordingPublisher{}
	svc := NewPurchaseRequestService(fakeTx{}, fakeRequestRepo{s}, fakeCategoryRepo{s}, fakeAuditRepo{s}, events)

	now := time.Date(2024, 5, 2, 15, 30, 0, 0, time.UTC)
	svc.(*purchaseRequestService).now = func() time.Time { return now }

	unit := decimal.NewFromInt(1000)
	return &requestFixture{
		store:    s,
		svc:      svc,
		events:   events,
		manager:  s.actor(s.addUser("Marco", api.RoleManager)),
		employee: s.actor(s.addUser("Anna", api.RoleEmployee)),
		other:    s.actor(s.addUser("Luca", api.RoleEmployee)),
		laptop:   s.addCategory("Laptop", &unit),
		freebie:  s.addCategory("Gadget", nil),
		now:      now,
	}
}

func (f *requestFixture) create(t *testing.T, actor Actor, quantity int) *api.PurchaseRequest {
	t.Helper()
	req, err := f.svc.Create(context.Background(), actor, api.PurchaseRequestInput{
		CategoryID:    f.laptop.ID.String(),
		Quantity:      quantity,
		Justification: "Need for new hire onboarding",
	})
	require.NoError(t, err)
	return req
}

func TestCreateDerivesCostAndStartsPending(t *testing.T) {
	f := newRequestFixture(t)

	req, err := f.svc.Create(context.Background(), f.employee, api.PurchaseRequestInput{
		CategoryID:    f.laptop.ID.String(),
		Quantity:      2,
		Cost:          decimal.NewFromInt(1),
		Justification: "Need for new hire onboarding",
	})
	require.NoError(t, err)

	assert.True(t, req.Cost.Equal(decimal.NewFromInt(2000)), "cost is %s", req.Cost)
	assert.Equal(t, api.StatusPending, req.Status)
	assert.Equal(t, f.employee.ID.String(), req.Owner.ID)
	require.NotNil(t, req.Owner.User)
	assert.Equal(t, "Anna", req.Owner.User.FirstName)
	assert.Nil(t, req.Approver)
	assert.Nil(t, req.DecidedAt)

	assert.Equal(t, []string{model.ActionCreateRequest}, f.store.actions())
	assert.Equal(t, []string{api.EventRequestCreated}, f.events.types())
}

func TestCreateWithoutUnitCostIsFree(t *testing.T) {
	f := newRequestFixture(t)

	req, err := f.svc.Create(context.Background(), f.manager, api.PurchaseRequestInput{
		CategoryID:    f.freebie.ID.String(),
		Quantity:      5,
		Justification: "Stickers for the booth",
	})
	require.NoError(t, err)
	assert.True(t, req.Cost.IsZero())
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := newRequestFixture(t)

	cases := map[string]api.PurchaseRequestInput{
		"short justification": {CategoryID: f.laptop.ID.String(), Quantity: 1, Justification: "too short"},
		"blank justification": {CategoryID: f.laptop.ID.String(), Quantity: 1, Justification: "          "},
		"zero quantity":       {CategoryID: f.laptop.ID.String(), Quantity: 0, Justification: "Need for new hire onboarding"},
		"unknown category":    {CategoryID: "c1", Quantity: 1, Justification: "Need for new hire onboarding"},
		"missing category":    {CategoryID: "00000000-0000-0000-0000-000000000001", Quantity: 1, Justification: "Need for new hire onboarding"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), f.employee, input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Empty(t, f.store.requests)
	assert.Empty(t, f.events.types())
}

func TestEmployeeSeesOnlyOwnRequests(t *testing.T) {
	f := newRequestFixture(t)
	mine := f.create(t, f.employee, 1)
	theirs := f.create(t, f.other, 1)

	list, err := f.svc.List(context.Background(), f.employee)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	_, err = f.svc.Get(context.Background(), f.employee, theirs.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := f.svc.List(context.Background(), f.manager)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := f.svc.Get(context.Background(), f.manager, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, theirs.ID, got.ID)
}

func TestUpdateRecomputesCost(t *testing.T) {
	f := newRequestFixture(t)
	req := f.create(t, f.employee, 1)

	updated, err := f.svc.Update(context.Background(), f.employee, req.ID, api.PurchaseRequestInput{
		CategoryID:    f.laptop.ID.String(),
		Quantity:      3,
		Justification: "Two more hires next month",
	})
	require.NoError(t, err)
	assert.True(t, updated.Cost.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, "Two more hires next month", updated.Justification)
	assert.Equal(t, api.StatusPending, updated.Status)
}

func TestUpdateGuards(t *testing.T) {
	f := newRequestFixture(t)
	req := f.create(t, f.employee, 1)
	input := api.PurchaseRequestInput{CategoryID: f.laptop.ID.String(), Quantity: 2, Justification: "Need for new hire onboarding"}

	_, err := f.svc.Update(context.Background(), f.other, req.ID, input)
	assert.ErrorIs(t, err, ErrNotFound, "other employees cannot see the request")

	_, err = f.svc.Update(context.Background(), f.manager, req.ID, input)
	assert.ErrorIs(t, err, ErrForbidden, "only the owner edits")

	_, err = f.svc.Approve(context.Background(), f.manager, req.ID)
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), f.employee, req.ID, input)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestDeleteRules(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes pending", func(t *testing.T) {
		f := newRequestFixture(t)
		req := f.create(t, f.employee, 1)
		require.NoError(t, f.svc.Delete(ctx, f.employee, req.ID))
		assert.Empty(t, f.store.requests)
		assert.Contains(t, f.events.types(), api.EventRequestDeleted)
	})

	t.Run("owner cannot delete decided", func(t *testing.T) {
		f := newRequestFixture(t)
		req := f.create(t, f.employee, 1)
		_, err := f.svc.Reject(ctx, f.manager, req.ID)
		require.NoError(t, err)
		assert.ErrorIs(t, f.svc.Delete(ctx, f.employee, req.ID), ErrNotPending)
	})

	t.Run("employee cannot delete others", func(t *testing.T) {
		f := newRequestFixture(t)
		req := f.create(t, f.employee, 1)
		assert.ErrorIs(t, f.svc.Delete(ctx, f.other, req.ID), ErrNotFound)
		assert.Len(t, f.store.requests, 1)
	})

	t.Run("manager deletes in any state", func(t *testing.T) {
		f := newRequestFixture(t)
		req := f.create(t, f.employee, 1)
		_, err := f.svc.Approve(ctx, f.manager, req.ID)
		require.NoError(t, err)
		require.NoError(t, f.svc.Delete(ctx, f.manager, req.ID))
		assert.Empty(t, f.store.requests)

		last := f.events.events[len(f.events.events)-1]
		assert.Equal(t, api.EventRequestDeleted, last.Type)
		assert.Equal(t, req.ID, last.ID)
		assert.Equal(t, f.employee.ID.String(), last.OwnerID, "delete event names the owner, not the actor")
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newRequestFixture(t)
		assert.ErrorIs(t, f.svc.Delete(ctx, f.manager, "r1"), ErrNotFound)
	})
}

func TestRejectMovesRequestToProcessed(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()
	req := f.create(t, f.employee, 2)

	pending, err := f.svc.ListPending(ctx, f.manager)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	rejected, err := f.svc.Reject(ctx, f.manager, req.ID)
	require.NoError(t, err)
	assert.Equal(t, api.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.DecidedAt)
	assert.True(t, f.now.Equal(*rejected.DecidedAt))
	require.NotNil(t, rejected.Approver)
	assert.Equal(t, f.manager.ID.String(), rejected.Approver.ID)
	assert.Equal(t, "Marco Test", rejected.Approver.Name())

	pending, err = f.svc.ListPending(ctx, f.manager)
	require.NoError(t, err)
	assert.Empty(t, pending)

	processed, err := f.svc.ListProcessed(ctx, f.manager)
	require.NoError(t, err)
	require.Len(t, processed, 1)
	assert.Equal(t, req.ID, processed[0].ID)
}

func TestApproveRequiresPending(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()
	req := f.create(t, f.employee, 1)

	approved, err := f.svc.Approve(ctx, f.manager, req.ID)
	require.NoError(t, err)
	assert.Equal(t, api.StatusApproved, approved.Status)

	_, err = f.svc.Approve(ctx, f.manager, req.ID)
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = f.svc.Reject(ctx, f.manager, req.ID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestDecisionsAreManagerOnly(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()
	req := f.create(t, f.employee, 1)

	_, err := f.svc.Approve(ctx, f.employee, req.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Reject(ctx, f.employee, req.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.ChangeStatus(ctx, f.employee, req.ID, api.StatusApproved)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.ListPending(ctx, f.employee)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.ListProcessed(ctx, f.employee)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.Get(ctx, f.employee, req.ID)
	require.NoError(t, err)
	assert.Equal(t, api.StatusPending, got.Status)
}

func TestChangeStatusBackToPendingClearsDecision(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()
	req := f.create(t, f.employee, 1)

	_, err := f.svc.Approve(ctx, f.manager, req.ID)
	require.NoError(t, err)

	reopened, err := f.svc.ChangeStatus(ctx, f.manager, req.ID, api.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, api.StatusPending, reopened.Status)
	assert.Nil(t, reopened.DecidedAt)
	assert.Nil(t, reopened.Approver)

	pending, err := f.svc.ListPending(ctx, f.manager)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, req.ID, pending[0].ID)

	processed, err := f.svc.ListProcessed(ctx, f.manager)
	require.NoError(t, err)
	assert.Empty(t, processed)

	// reopened requests are editable by their owner again
	_, err = f.svc.Update(ctx, f.employee, req.ID, api.PurchaseRequestInput{
		CategoryID: f.laptop.ID.String(), Quantity: 1, Justification: "Still needed after review",
	})
	assert.NoError(t, err)
}

func TestChangeStatusSetsDecisionFromAnyState(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()
	req := f.create(t, f.employee, 1)

	rejected, err := f.svc.ChangeStatus(ctx, f.manager, req.ID, api.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, api.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.Approver)

	approved, err := f.svc.ChangeStatus(ctx, f.manager, req.ID, api.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, api.StatusApproved, approved.Status)
	require.NotNil(t, approved.DecidedAt)
	assert.Equal(t, f.manager.ID.String(), approved.Approver.ID)

	_, err = f.svc.ChangeStatus(ctx, f.manager, req.ID, "Archived")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, []string{
		model.ActionCreateRequest,
		model.ActionChangeStatus,
		model.ActionChangeStatus,
	}, f.store.actions())
}
