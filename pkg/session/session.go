// Package session holds the signed-in identity and its bearer token, and
// persists both across runs.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"procurement/pkg/api"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Gateway is the part of the API client the store needs.
type Gateway interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
}

type Event int

const (
	EventLogin Event = iota + 1
	EventLogout
)

func (e Event) String() string {
	switch e {
	case EventLogin:
		return "login"
	case EventLogout:
		return "logout"
	default:
		return "unknown"
	}
}

// Listener is told about logins (with the new identity) and logouts (with nil).
type Listener func(event Event, identity *api.User)

type Store struct {
	storage Storage

	mu        sync.RWMutex
	gateway   Gateway
	token     string
	user      *api.User
	listeners map[int]Listener
	nextID    int

	ready     chan struct{}
	readyOnce sync.Once
}

func NewStore(storage Storage) *Store {
	return &Store{
		storage:   storage,
		listeners: map[int]Listener{},
		ready:     make(chan struct{}),
	}
}

// Bind sets the gateway used by Login, Register and Logout. The gateway
// usually reads its token from the store, hence the separate step.
func (s *Store) Bind(gateway Gateway) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gateway = gateway
}

// Restore loads the persisted session. A corrupt identity drops the whole
// session. The store is ready afterwards, whatever the outcome.
func (s *Store) Restore() error {
	defer s.readyOnce.Do(func() { close(s.ready) })

	token, ok, err := s.storage.Get(KeyToken)
	if err != nil {
		return errors.Wrap(err, "restore token")
	}
	if !ok || token == "" {
		return nil
	}
	raw, ok, err := s.storage.Get(KeyUser)
	if err != nil {
		return errors.Wrap(err, "restore identity")
	}
	var user api.User
	if !ok || json.Unmarshal([]byte(raw), &user) != nil {
		log.Warn("persisted identity unreadable, discarding session")
		s.clear()
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	return nil
}

// Loading reports whether the initial Restore has not finished yet.
func (s *Store) Loading() bool {
	select {
	case <-s.ready:
		return false
	default:
		return true
	}
}

// Ready is closed once the initial Restore has finished.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Token implements client.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Current returns a copy of the signed-in identity, or nil.
func (s *Store) Current() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Login(ctx context.Context, identifier, secret string) (*api.User, error) {
	gw, err := s.boundGateway()
	if err != nil {
		return nil, err
	}
	res, err := gw.Login(ctx, api.LoginRequest{Username: identifier, Password: secret})
	if err != nil {
		log.WithError(err).WithField("username", identifier).Warn("login failed")
		return nil, err
	}
	return s.establish(res)
}

func (s *Store) Register(ctx context.Context, profile api.RegisterRequest) (*api.User, error) {
	gw, err := s.boundGateway()
	if err != nil {
		return nil, err
	}
	res, err := gw.Register(ctx, profile)
	if err != nil {
		log.WithError(err).WithField("username", profile.Username).Warn("registration failed")
		return nil, err
	}
	return s.establish(res)
}

// Logout asks the server to revoke the token, then forgets the session
// whether or not the server call succeeded.
func (s *Store) Logout(ctx context.Context) {
	s.mu.RLock()
	gw, token := s.gateway, s.token
	s.mu.RUnlock()

	if gw != nil && token != "" {
		if err := gw.Logout(ctx); err != nil {
			log.WithError(err).Debug("server logout failed, clearing session anyway")
		}
	}
	s.Purge()
}

// Purge forgets the session without contacting the server. It is what a
// 401 from any call triggers.
func (s *Store) Purge() {
	if s.clear() {
		s.notify(EventLogout, nil)
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) boundGateway() (Gateway, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.gateway == nil {
		return nil, errors.New("session store has no gateway")
	}
	return s.gateway, nil
}

func (s *Store) establish(res *api.AuthResponse) (*api.User, error) {
	raw, err := json.Marshal(res.User)
	if err != nil {
		return nil, errors.Wrap(err, "encode identity")
	}
	if err := s.storage.Set(KeyToken, res.Token); err != nil {
		return nil, errors.Wrap(err, "persist token")
	}
	if err := s.storage.Set(KeyUser, string(raw)); err != nil {
		return nil, errors.Wrap(err, "persist identity")
	}

	user := res.User
	s.mu.Lock()
	s.token = res.Token
	s.user = &user
	s.mu.Unlock()

	log.WithField("user_id", user.ID).WithField("role", user.Role).Info("signed in")
	s.notify(EventLogin, s.Current())
	return s.Current(), nil
}

// clear drops the in-memory and persisted session and reports whether there was one.
func (s *Store) clear() bool {
	s.mu.Lock()
	had := s.token != "" || s.user != nil
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	for _, key := range []string{KeyToken, KeyUser} {
		if err := s.storage.Delete(key); err != nil {
			log.WithError(err).WithField("key", key).Error("failed to clear persisted session")
		}
	}
	return had
}

func (s *Store) notify(event Event, identity *api.User) {
	s.mu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		l(event, identity)
	}
}
