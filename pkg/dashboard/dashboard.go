// Package dashboard composes what each role sees on its home screen.
package dashboard

import (
	"context"
	"sync"
	"sync/atomic"

	"procurement/pkg/api"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrLoginRequired is returned instead of any data when nobody is signed in.
var ErrLoginRequired = errors.New("login required")

type Gateway interface {
	ListRequests(ctx context.Context) ([]api.PurchaseRequest, error)
	ListPending(ctx context.Context) ([]api.PurchaseRequest, error)
	ListProcessed(ctx context.Context) ([]api.PurchaseRequest, error)
	ListCategories(ctx context.Context) ([]api.Category, error)
}

type IdentitySource interface {
	Current() *api.User
}

// State is one consistent load. Pending and Processed are only filled for managers.
type State struct {
	Identity   api.User
	Requests   []api.PurchaseRequest
	Pending    []api.PurchaseRequest
	Processed  []api.PurchaseRequest
	Categories []api.Category
}

// CategoryName resolves a category id against the loaded catalog.
func (s State) CategoryName(id string) string {
	for _, c := range s.Categories {
		if c.ID == id {
			return c.Description
		}
	}
	return id
}

type Dashboard struct {
	gw       Gateway
	identity IdentitySource

	loading atomic.Int32

	mu    sync.RWMutex
	state *State
}

// Loading reports whether a Load is in flight.
func (d *Dashboard) Loading() bool {
	return d.loading.Load() > 0
}

func New(gw Gateway, identity IdentitySource) *Dashboard {
	return &Dashboard{gw: gw, identity: identity}
}

// Load fetches everything the current role needs in parallel. A single
// failed call fails the whole load and leaves the previous state in place.
func (d *Dashboard) Load(ctx context.Context) (*State, error) {
	user := d.identity.Current()
	if user == nil {
		d.reset()
		return nil, ErrLoginRequired
	}

	d.loading.Add(1)
	defer d.loading.Add(-1)

	next := State{Identity: *user}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		next.Requests, err = d.gw.ListRequests(gctx)
		return errors.Wrap(err, "list requests")
	})
	g.Go(func() (err error) {
		next.Categories, err = d.gw.ListCategories(gctx)
		return errors.Wrap(err, "list categories")
	})
	if user.IsManager() {
		g.Go(func() (err error) {
			next.Pending, err = d.gw.ListPending(gctx)
			return errors.Wrap(err, "list pending requests")
		})
		g.Go(func() (err error) {
			next.Processed, err = d.gw.ListProcessed(gctx)
			return errors.Wrap(err, "list processed requests")
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("dashboard load failed")
		return nil, err
	}

	d.mu.Lock()
	d.state = &next
	d.mu.Unlock()
	return d.State()
}

// State returns the last loaded state, or ErrLoginRequired once the session
// is gone.
func (d *Dashboard) State() (*State, error) {
	if d.identity.Current() == nil {
		d.reset()
		return nil, ErrLoginRequired
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.state == nil {
		return &State{}, nil
	}
	s := *d.state
	return &s, nil
}

func (d *Dashboard) reset() {
	d.mu.Lock()
	d.state = nil
	d.mu.Unlock()
}
