package client

import (
	"context"
	"net/http"

	"procurement/pkg/api"

	"github.com/pkg/errors"
)

// Login exchanges credentials for a token. A 401 is reported as
// ErrInvalidCredentials and does not trigger the unauthorized hook.
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	var out api.AuthResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/login", body: req, anonymous: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. An already used email yields ErrDuplicateIdentifier.
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	var out api.AuthResponse
	err := c.do(ctx, call{method: http.MethodPost, path: "/register", body: req, anonymous: true}, &out)
	var verr *ValidationError
	if errors.As(err, &verr) && verr.Status == http.StatusConflict {
		return nil, errors.WithStack(ErrDuplicateIdentifier)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/logout"}, nil)
}

func (c *Client) Me(ctx context.Context) (*api.User, error) {
	var out api.User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
