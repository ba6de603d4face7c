package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"procurement/pkg/api"
)

const (
	requestsPath       = "/richieste"
	requestPath        = "/richieste/%s"
	pendingPath        = "/richieste/pending/approve"
	processedPath      = "/richieste/processed"
	approvePath        = "/richieste/%s/approve"
	rejectPath         = "/richieste/%s/reject"
	statusPath         = "/richieste/%s/status"
	requestStatsPath   = "/richieste/stats"
	requestsExportPath = "/richieste/export"
	auditLogsPath      = "/audit-logs?page=%d&limit=%d"
)

func idPath(pattern, id string) string {
	return fmt.Sprintf(pattern, url.PathEscape(id))
}

func (c *Client) list(ctx context.Context, path string) ([]api.PurchaseRequest, error) {
	var out []api.PurchaseRequest
	if err := c.do(ctx, call{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) one(ctx context.Context, method, path string, body interface{}) (*api.PurchaseRequest, error) {
	var out api.PurchaseRequest
	if err := c.do(ctx, call{method: method, path: path, body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRequests returns all requests for managers and the caller's own otherwise.
func (c *Client) ListRequests(ctx context.Context) ([]api.PurchaseRequest, error) {
	return c.list(ctx, requestsPath)
}

func (c *Client) ListPending(ctx context.Context) ([]api.PurchaseRequest, error) {
	return c.list(ctx, pendingPath)
}

func (c *Client) ListProcessed(ctx context.Context) ([]api.PurchaseRequest, error) {
	return c.list(ctx, processedPath)
}

func (c *Client) GetRequest(ctx context.Context, id string) (*api.PurchaseRequest, error) {
	return c.one(ctx, http.MethodGet, idPath(requestPath, id), nil)
}

func (c *Client) CreateRequest(ctx context.Context, in api.PurchaseRequestInput) (*api.PurchaseRequest, error) {
	return c.one(ctx, http.MethodPost, requestsPath, in)
}

func (c *Client) UpdateRequest(ctx context.Context, id string, in api.PurchaseRequestInput) (*api.PurchaseRequest, error) {
	return c.one(ctx, http.MethodPut, idPath(requestPath, id), in)
}

func (c *Client) DeleteRequest(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: idPath(requestPath, id)}, nil)
}

func (c *Client) Approve(ctx context.Context, id string) (*api.PurchaseRequest, error) {
	return c.one(ctx, http.MethodPut, idPath(approvePath, id), nil)
}

func (c *Client) Reject(ctx context.Context, id string) (*api.PurchaseRequest, error) {
	return c.one(ctx, http.MethodPut, idPath(rejectPath, id), nil)
}

func (c *Client) ChangeStatus(ctx context.Context, id, status string) (*api.PurchaseRequest, error) {
	return c.one(ctx, http.MethodPut, idPath(statusPath, id), api.ChangeStatusRequest{Status: status})
}

func (c *Client) RequestStats(ctx context.Context) (*api.RequestStats, error) {
	var out api.RequestStats
	if err := c.do(ctx, call{method: http.MethodGet, path: requestStatsPath}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportRequests downloads the XLSX workbook of all requests.
func (c *Client) ExportRequests(ctx context.Context) ([]byte, error) {
	return c.send(ctx, call{method: http.MethodGet, path: requestsExportPath})
}

// AuditLogPage is one page of the audit trail.
type AuditLogPage struct {
	Items []api.AuditLog `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func (c *Client) AuditLogs(ctx context.Context, page, limit int) (*AuditLogPage, error) {
	var out AuditLogPage
	if err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf(auditLogsPath, page, limit)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
