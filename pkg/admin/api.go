// Package admin is the typed facade over the Shario backend's admin endpoints.
// Each operation is one request through the shared HTTP client; responses are
// normalized so callers never deal with envelope nesting.
package admin

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/facuhernandez99/shario-admin/pkg/errors"
	httpclient "github.com/facuhernandez99/shario-admin/pkg/http"
	"github.com/facuhernandez99/shario-admin/pkg/logging"
)

// Doer sends one request to the backend. *httpclient.Client implements it.
type Doer interface {
	Do(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error)
}

// API is the admin facade
type API struct {
	client    Doer
	endpoints Endpoints
	logger    *logging.ContextLogger

	// reportSupport caches what the backend told us about /admin/reports
	reportSupport atomic.Int32
}

const (
	capabilityUnknown int32 = iota
	capabilitySupported
	capabilityUnsupported
)

// Option configures an API
type Option func(*API)

// WithLogger sets the logger used for degraded-path warnings
func WithLogger(logger *logging.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger.Component("admin")
		}
	}
}

// New creates the facade over client
func New(client Doer, endpoints Endpoints, opts ...Option) *API {
	if endpoints.Prefix == "" && endpoints.PublicPrefix == "" {
		endpoints = DefaultEndpoints()
	}
	a := &API{
		client:    client,
		endpoints: endpoints,
		logger:    logging.GetDefault().Component("admin"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Endpoints returns the configured backend paths
func (a *API) Endpoints() Endpoints {
	return a.endpoints
}

func (a *API) get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	return a.send(ctx, &httpclient.Request{Method: http.MethodGet, Path: path, Query: query})
}

func (a *API) post(ctx context.Context, path string, body interface{}) ([]byte, error) {
	return a.send(ctx, &httpclient.Request{Method: http.MethodPost, Path: path, Body: body})
}

func (a *API) put(ctx context.Context, path string, body interface{}) ([]byte, error) {
	return a.send(ctx, &httpclient.Request{Method: http.MethodPut, Path: path, Body: body})
}

func (a *API) delete(ctx context.Context, path string) error {
	_, err := a.send(ctx, &httpclient.Request{Method: http.MethodDelete, Path: path})
	return err
}

func (a *API) send(ctx context.Context, req *httpclient.Request) ([]byte, error) {
	resp, err := a.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func requireID(id, what string) error {
	if id == "" {
		return errors.Newf(errors.ErrCodeValidation, "%s id is required", what)
	}
	return nil
}

// orNotFound turns an empty payload into a not-found error
func orNotFound[T any](value *T, err error, what string) (*T, error) {
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, errors.Newf(errors.ErrCodeNotFound, "%s not found", what)
	}
	return value, nil
}
