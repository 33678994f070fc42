package client

import (
	"context"
	"net/http"
	"net/url"
)

// Resource is a CRUD collection at a list endpoint and its /:id item
// endpoint
type Resource[T any] struct {
	c    *Client
	list string
	item string
}

// NewResource binds a Resource to c
func NewResource[T any](c *Client, listPath, itemPath string) *Resource[T] {
	return &Resource[T]{c: c, list: listPath, item: itemPath}
}

// List fetches one page. query carries filters, sort and page params.
func (r *Resource[T]) List(ctx context.Context, query url.Values) (*PaginatedResponse[T], error) {
	out := &PaginatedResponse[T]{}
	if err := r.c.Do(ctx, http.MethodGet, r.list, query, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one item
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	out := new(T)
	if err := r.c.Do(ctx, http.MethodGet, Path(r.item, id), nil, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts body to the list endpoint
func (r *Resource[T]) Create(ctx context.Context, body interface{}) (*T, error) {
	out := new(T)
	if err := r.c.Do(ctx, http.MethodPost, r.list, nil, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update puts body to the item endpoint
func (r *Resource[T]) Update(ctx context.Context, id string, body interface{}) (*T, error) {
	out := new(T)
	if err := r.c.Do(ctx, http.MethodPut, Path(r.item, id), nil, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one item
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.c.Do(ctx, http.MethodDelete, Path(r.item, id), nil, nil, nil)
}
