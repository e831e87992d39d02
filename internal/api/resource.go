package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Resource is CRUD access to one backend collection
type Resource[T any] struct {
	client      *Client
	path        string
	invalidates []string
}

// newResource binds a collection path. A successful mutation drops the
// cached lists under path and under every dependent prefix.
func newResource[T any](c *Client, path string, dependents ...string) *Resource[T] {
	return &Resource[T]{
		client:      c,
		path:        path,
		invalidates: append([]string{path}, dependents...),
	}
}

// Path returns the collection path
func (r *Resource[T]) Path() string {
	return r.path
}

func (r *Resource[T]) itemPath(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

// List returns the collection, optionally filtered by query
func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	items, err := fetchList[T](ctx, r.client, r.path, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.path, err)
	}
	return items, nil
}

// Get returns one item
func (r *Resource[T]) Get(ctx context.Context, id int64) (*T, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid id %d", id)
	}
	item, err := fetchOne[T](ctx, r.client, r.itemPath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.itemPath(id), err)
	}
	return item, nil
}

// Create posts input and returns the created item. The item is nil when the
// backend acknowledges the write without a body.
func (r *Resource[T]) Create(ctx context.Context, input interface{}) (*T, error) {
	item, err := r.mutate(ctx, http.MethodPost, r.path, input)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", r.path, err)
	}
	return item, nil
}

// Update replaces item id with input and returns the stored item, or nil when
// the backend answers without a body
func (r *Resource[T]) Update(ctx context.Context, id int64, input interface{}) (*T, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid id %d", id)
	}
	item, err := r.mutate(ctx, http.MethodPut, r.itemPath(id), input)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", r.itemPath(id), err)
	}
	return item, nil
}

// Delete removes item id
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid id %d", id)
	}
	if _, err := r.client.doRequest(ctx, http.MethodDelete, r.itemPath(id), nil, nil, true); err != nil {
		return fmt.Errorf("delete %s: %w", r.itemPath(id), err)
	}
	r.client.invalidate(r.invalidates)
	return nil
}

// Invalidate drops every cached list this resource depends on
func (r *Resource[T]) Invalidate() {
	r.client.invalidate(r.invalidates)
}

func (r *Resource[T]) mutate(ctx context.Context, method, path string, input interface{}) (*T, error) {
	if input == nil {
		return nil, errors.New("missing request body")
	}
	body, err := r.client.doRequest(ctx, method, path, nil, input, true)
	if err != nil {
		return nil, err
	}

	// the write went through even if the echo cannot be decoded
	r.client.invalidate(r.invalidates)

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var item T
	if err := decodeData(body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
