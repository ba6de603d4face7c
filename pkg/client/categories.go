package client

import (
	"context"
	"net/http"

	"procurement/pkg/api"
)

const (
	categoriesPath = "/categorie"
	categoryPath   = "/categorie/%s"
)

func (c *Client) ListCategories(ctx context.Context) ([]api.Category, error) {
	var out []api.Category
	if err := c.do(ctx, call{method: http.MethodGet, path: categoriesPath}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, in api.CategoryInput) (*api.Category, error) {
	var out api.Category
	if err := c.do(ctx, call{method: http.MethodPost, path: categoriesPath, body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in api.CategoryInput) (*api.Category, error) {
	var out api.Category
	if err := c.do(ctx, call{method: http.MethodPut, path: idPath(categoryPath, id), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory fails with a *ValidationError carrying the server's reason
// when the category is still referenced.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: idPath(categoryPath, id)}, nil)
}
