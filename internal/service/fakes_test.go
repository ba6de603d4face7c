package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/pkg/api"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// store backs every fake repository so that preloads can resolve users.
type store struct {
	mu         sync.Mutex
	users      map[uuid.UUID]model.User
	categories map[uuid.UUID]model.Category
	requests   map[uuid.UUID]model.PurchaseRequest
	audit      []model.AuditLog
	clock      time.Time
}

func newStore() *store {
	return &store{
		users:      map[uuid.UUID]model.User{},
		categories: map[uuid.UUID]model.Category{},
		requests:   map[uuid.UUID]model.PurchaseRequest{},
		clock:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *store) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func (s *store) addUser(first, role string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{ID: uuid.New(), FirstName: first, LastName: "Test", Email: strings.ToLower(first) + "@example.com", Role: role}
	s.users[u.ID] = u
	return u
}

func (s *store) addCategory(description string, unitCost *decimal.Decimal) model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := model.Category{ID: uuid.New(), Description: description}
	if unitCost != nil {
		c.UnitCost = decimal.NewNullDecimal(*unitCost)
	}
	s.categories[c.ID] = c
	return c
}

func (s *store) actor(u model.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func (s *store) preload(r model.PurchaseRequest) model.PurchaseRequest {
	if u, ok := s.users[r.UserID]; ok {
		r.User = &u
	}
	if r.DecidedBy != nil {
		if u, ok := s.users[*r.DecidedBy]; ok {
			r.Approver = &u
		}
	}
	return r
}

type fakeTx struct{}

func (fakeTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- users ---

type fakeUserRepo struct{ s *store }

// Create enforces the unique email index the way a translated postgres error does.
func (r fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = uuid.New()
	r.s.users[user.ID] = *user
	return nil
}

func (r fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// staleUserRepo misses on lookup, as when a concurrent registration commits
// between the email check and the insert.
type staleUserRepo struct{ fakeUserRepo }

func (staleUserRepo) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

// --- categories ---

type fakeCategoryRepo struct{ s *store }

func (r fakeCategoryRepo) Create(_ context.Context, c *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = uuid.New()
	r.s.categories[c.ID] = *c
	return nil
}

func (r fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r fakeCategoryRepo) List(context.Context) ([]model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Description < out[j].Description })
	return out, nil
}

func (r fakeCategoryRepo) Update(_ context.Context, c *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.categories[c.ID] = *c
	return nil
}

func (r fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.categories, id)
	return nil
}

// --- purchase requests ---

type fakeRequestRepo struct{ s *store }

func (r fakeRequestRepo) Create(_ context.Context, req *model.PurchaseRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req.ID = uuid.New()
	req.CreatedAt = r.s.tick()
	req.UpdatedAt = req.CreatedAt
	r.s.requests[req.ID] = *req
	return nil
}

func (r fakeRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	req = r.s.preload(req)
	return &req, nil
}

func (r fakeRequestRepo) List(_ context.Context, filter repository.RequestFilter) ([]model.PurchaseRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.PurchaseRequest
	for _, req := range r.s.requests {
		if filter.OwnerID != nil && req.UserID != *filter.OwnerID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.ExcludeStatus != "" && req.Status == filter.ExcludeStatus {
			continue
		}
		out = append(out, r.s.preload(req))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r fakeRequestRepo) Update(_ context.Context, req *model.PurchaseRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *req
	stored.User = nil
	stored.Approver = nil
	stored.UpdatedAt = r.s.tick()
	r.s.requests[req.ID] = stored
	return nil
}

func (r fakeRequestRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.requests, id)
	return nil
}

func (r fakeRequestRepo) CountByCategory(_ context.Context, categoryID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, req := range r.s.requests {
		if req.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r fakeRequestRepo) TotalsByStatus(context.Context) ([]repository.StatusTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	totals := map[string]*repository.StatusTotal{}
	for _, req := range r.s.requests {
		t, ok := totals[req.Status]
		if !ok {
			t = &repository.StatusTotal{Status: req.Status, Total: decimal.Zero}
			totals[req.Status] = t
		}
		t.Count++
		t.Total = t.Total.Add(req.Cost)
	}
	out := make([]repository.StatusTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	return out, nil
}

// --- audit ---

type fakeAuditRepo struct{ s *store }

func (r fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = uuid.New()
	entry.CreatedAt = r.s.tick()
	r.s.audit = append(r.s.audit, *entry)
	return nil
}

func (r fakeAuditRepo) List(_ context.Context, offset, limit int) ([]model.AuditLog, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := int64(len(r.s.audit))
	var out []model.AuditLog
	for i := len(r.s.audit) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		entry := r.s.audit[i]
		if entry.UserID != nil {
			if u, ok := r.s.users[*entry.UserID]; ok {
				entry.User = &u
			}
		}
		out = append(out, entry)
	}
	return out, total, nil
}

func (s *store) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.audit))
	for _, a := range s.audit {
		out = append(out, a.Action)
	}
	return out
}

// --- events ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []api.Event
}

func (p *recordingPublisher) Publish(e api.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
