package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"clientadmin/internal/app/ds"
)

// Record is any backend entity with a backend-assigned identifier.
type Record interface {
	ID() int64
}

// Resource is the CRUD endpoint of one entity. T is the record, C the create
// request and U the update request.
type Resource[T Record, C any, U any] struct {
	client  *Client
	path    string
	idField string
}

func NewResource[T Record, C any, U any](c *Client, path, idField string) *Resource[T, C, U] {
	return &Resource[T, C, U]{client: c, path: path, idField: idField}
}

func (r *Resource[T, C, U]) Path() string {
	return r.path
}

// List fetches every active record, in backend order.
func (r *Resource[T, C, U]) List(ctx context.Context) ([]T, error) {
	query := url.Values{"is_active": {"true"}}
	env, err := call[T](ctx, r.client, "list", http.MethodGet, r.path, query, nil)
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []T{}, nil
	}
	return env.Data, nil
}

// Get fetches one active record. The id filter is advisory, so the result is scanned.
func (r *Resource[T, C, U]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	query := url.Values{
		"is_active": {"true"},
		r.idField:   {strconv.FormatInt(id, 10)},
	}
	env, err := call[T](ctx, r.client, "get", http.MethodGet, r.path, query, nil)
	if err != nil {
		return zero, err
	}
	for _, item := range env.Data {
		if item.ID() == id {
			return item, nil
		}
	}
	return zero, &Error{Op: "get", Method: http.MethodGet, Path: r.path, Err: ErrNotFound}
}

// Create posts a new record and returns the stored one from data[0].
func (r *Resource[T, C, U]) Create(ctx context.Context, req C) (T, error) {
	env, err := call[T](ctx, r.client, "create", http.MethodPost, r.path, nil, req)
	if err != nil {
		var zero T
		return zero, err
	}
	created, ok := env.First()
	if !ok {
		return created, &Error{Op: "create", Method: http.MethodPost, Path: r.path, Msg: env.Msg, Err: ErrEmptyData}
	}
	return created, nil
}

// Update puts the request and returns the echoed record, or nil when the backend sent none
// or sent something other than a record list.
func (r *Resource[T, C, U]) Update(ctx context.Context, req U) (*T, error) {
	return mutate[T](ctx, r.client, "update", http.MethodPut, r.path, req)
}

// Deactivate soft-deletes a record by putting is_active=false.
func (r *Resource[T, C, U]) Deactivate(ctx context.Context, id int64) error {
	body := map[string]any{
		r.idField:   id,
		"is_active": false,
	}
	_, err := mutate[T](ctx, r.client, "delete", http.MethodPut, r.path, body)
	return err
}

// UpdatePlan moves a license onto another plan. The echoed license is returned when present.
func (c *Client) UpdatePlan(ctx context.Context, req ds.UpdatePlanRequest) (*ds.License, error) {
	return mutate[ds.License](ctx, c, "update plan", http.MethodPut, UpdatePlanPath, req)
}

func (c *Client) Clients() *Resource[ds.Client, ds.CreateClientRequest, ds.UpdateClientRequest] {
	return NewResource[ds.Client, ds.CreateClientRequest, ds.UpdateClientRequest](c, ClientPath, "client_comp_id")
}

func (c *Client) Products() *Resource[ds.Product, ds.CreateProductRequest, ds.UpdateProductRequest] {
	return NewResource[ds.Product, ds.CreateProductRequest, ds.UpdateProductRequest](c, ProductPath, "main_app_id")
}

func (c *Client) Subscriptions() *Resource[ds.Subscription, ds.CreateSubscriptionRequest, ds.UpdateSubscriptionRequest] {
	return NewResource[ds.Subscription, ds.CreateSubscriptionRequest, ds.UpdateSubscriptionRequest](c, SubscriptionPath, "subscription_id")
}

func (c *Client) Licenses() *Resource[ds.License, ds.CreateLicenseRequest, ds.UpdateLicenseRequest] {
	return NewResource[ds.License, ds.CreateLicenseRequest, ds.UpdateLicenseRequest](c, LicensePath, "client_subscription_id")
}
