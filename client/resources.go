package client

import (
	"context"
	"fmt"
	"net/http"
)

// Resource is the uniform CRUD surface every HAP entity collection exposes.
// Screens fetch a list, submit a form, and refresh; nothing here is smarter
// than that.
type Resource[T any] struct {
	client *Client
	base   string
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	req, err := r.client.newJSONRequest(ctx, http.MethodGet, r.base, nil)
	if err != nil {
		return nil, err
	}

	var out []T
	if err := r.client.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int) (T, error) {
	var out T
	req, err := r.client.newJSONRequest(ctx, http.MethodGet, r.itemPath(id), nil)
	if err != nil {
		return out, err
	}
	if err := r.client.do(req, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (r *Resource[T]) Create(ctx context.Context, in T) (T, error) {
	out := in
	req, err := r.client.newJSONRequest(ctx, http.MethodPost, r.base, in)
	if err != nil {
		return out, err
	}
	if err := r.client.do(req, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (r *Resource[T]) Update(ctx context.Context, id int, in T) (T, error) {
	out := in
	req, err := r.client.newJSONRequest(ctx, http.MethodPut, r.itemPath(id), in)
	if err != nil {
		return out, err
	}
	if err := r.client.do(req, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	req, err := r.client.newJSONRequest(ctx, http.MethodDelete, r.itemPath(id), nil)
	if err != nil {
		return err
	}
	return r.client.do(req, nil)
}

func (r *Resource[T]) itemPath(id int) string {
	return fmt.Sprintf("%s/%d", r.base, id)
}
