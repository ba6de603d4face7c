package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"procurement/internal/cache"
	"procurement/internal/middleware"
	"procurement/internal/service"
	"procurement/internal/token"
	"procurement/pkg/api"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuth revokes through the real blacklist so that the middleware sees it.
type stubAuth struct {
	tokens    *token.Manager
	blacklist cache.TokenBlacklist
	user      api.User
}

func (s *stubAuth) Register(context.Context, api.RegisterRequest) (*api.AuthResponse, error) {
	return nil, service.ErrDuplicateEmail
}

func (s *stubAuth) Login(_ context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	if req.Password != "secret1" {
		return nil, service.ErrInvalidCredentials
	}
	id := uuid.MustParse(s.user.ID)
	tok, err := s.tokens.Issue(id, s.user.Role)
	if err != nil {
		return nil, err
	}
	return &api.AuthResponse{Token: tok, User: s.user}, nil
}

func (s *stubAuth) Logout(ctx context.Context, tok string) error {
	return s.blacklist.Revoke(ctx, tok, time.Hour)
}

func (s *stubAuth) Me(context.Context, uuid.UUID) (*api.User, error) {
	return &s.user, nil
}

func TestLoginMeLogout(t *testing.T) {
	tokens := token.NewManager("secret", time.Hour)
	blacklist := cache.NewMemoryBlacklist()
	auth := middleware.NewAuthMiddleware(tokens, blacklist)
	svc := &stubAuth{tokens: tokens, blacklist: blacklist, user: api.User{
		ID: uuid.NewString(), FirstName: "Anna", LastName: "Rossi", Email: "anna@example.com", Role: api.RoleEmployee,
	}}

	router := gin.New()
	NewAuthHandler(svc, auth).RegisterRoutes(router.Group("/api"))

	send := func(method, path, body, bearer string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodPost, "/api/login", `{"username":"anna@example.com","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(http.MethodPost, "/api/login", `{"username":"anna@example.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(http.MethodPost, "/api/login", `{"username":"anna@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	tok, err := tokens.Issue(uuid.MustParse(svc.user.ID), api.RoleEmployee)
	require.NoError(t, err)

	w = send(http.MethodGet, "/api/me", "", tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"firstName":"Anna"`)

	w = send(http.MethodPost, "/api/logout", "", tok)
	require.Equal(t, http.StatusOK, w.Code)

	w = send(http.MethodGet, "/api/me", "", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(http.MethodPost, "/api/register",
		`{"firstName":"Anna","lastName":"Rossi","username":"anna@example.com","password":"secret1","role":"Dipendente"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}
