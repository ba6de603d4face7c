// Package client is a typed gateway to the purchase request API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"procurement/pkg/response"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// TokenSource yields the bearer credential to attach, or "" for none.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithUnauthorizedHandler registers fn to run whenever a call is answered with 401.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func()
}

// New builds a client for the API rooted at baseURL, e.g. http://localhost:3000/api.
// Requests carry no deadline beyond ctx; use WithHTTPClient to set one.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		tokens:  StaticToken(""),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type call struct {
	method string
	path   string
	body   interface{}
	// login answers 401 for bad credentials; it must not purge the session
	anonymous bool
}

// do sends the call and decodes the envelope's data into out (when non-nil).
func (c *Client) do(ctx context.Context, cl call, out interface{}) error {
	raw, err := c.send(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return errors.Wrapf(response.Decode(raw, out), "decode %s %s response", cl.method, cl.path)
}

// send performs the request and returns the raw body of a 2xx answer.
func (c *Client) send(ctx context.Context, cl call) ([]byte, error) {
	op := cl.method + " " + cl.path
	logger := log.WithField("external_request", op)

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request body")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.WithError(err).Error("request failed")
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.WithError(err).Error("failed to read response")
		return nil, &NetworkError{Op: op, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	message := serverMessage(raw, resp.Status)
	logger = logger.WithField("status", resp.StatusCode).WithField("response_error", message)

	switch {
	case resp.StatusCode == http.StatusUnauthorized && cl.anonymous:
		logger.Warn("credentials rejected")
		return nil, errors.WithStack(ErrInvalidCredentials)
	case resp.StatusCode == http.StatusUnauthorized:
		logger.Warn("unauthorized, dropping session")
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, errors.WithStack(ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		logger.Warn("resource not found")
		return nil, errors.WithStack(ErrNotFound)
	case resp.StatusCode >= 500:
		logger.Error("server error")
		return nil, &NetworkError{Op: op, Status: resp.StatusCode, Err: errors.New(message)}
	default:
		logger.Warn("request rejected")
		return nil, &ValidationError{Status: resp.StatusCode, Message: message}
	}
}

// serverMessage reads the envelope's error, or a bare {"message"} body.
func serverMessage(raw []byte, fallback string) string {
	var env response.Envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Reason() != "" {
		return env.Reason()
	}
	return fallback
}
