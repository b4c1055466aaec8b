package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/facuhernandez99/shario-admin/pkg/errors"
	"github.com/facuhernandez99/shario-admin/pkg/logging"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/facuhernandez99/shario-admin/pkg/session"
	"github.com/google/uuid"
)

// DefaultLoginPath is where a 401 sends the admin
const DefaultLoginPath = "/login"

// Client is the request/response pipeline shared by every backend call. It
// attaches the stored bearer token to each request and, on a 401, clears the
// stored tokens and navigates to the login page before returning the error.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    http.Header
	logger     *logging.ContextLogger
	storage    session.Storage
	navigator  Navigator
	loginPath  string
}

// ClientConfig configures a Client. Storage defaults to memory and Navigator
// to a no-op.
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	Headers   map[string]string
	LoginPath string
	Logger    *logging.Logger
	Storage   session.Storage
	Navigator Navigator
}

func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{LoginPath: DefaultLoginPath, Logger: logging.GetDefault()}
}

// NewClient builds the pipeline. A zero Timeout leaves the transport default
// in place; an empty BaseURL means paths are sent relative to the same origin.
func NewClient(config *ClientConfig) *Client {
	cfg := DefaultClientConfig()
	if config != nil {
		cfg = config
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetDefault()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		headers:    http.Header{},
		logger:     logger.Component("http"),
		storage:    cfg.Storage,
		navigator:  cfg.Navigator,
		loginPath:  cfg.LoginPath,
	}
	if c.storage == nil {
		c.storage = session.NewMemoryStorage()
	}
	if c.navigator == nil {
		c.navigator = NavigatorFunc(func(context.Context, string) {})
	}
	if c.loginPath == "" {
		c.loginPath = DefaultLoginPath
	}

	c.headers.Set("Content-Type", "application/json")
	c.headers.Set("Accept", "application/json")
	c.headers.Set("User-Agent", "shario-admin/1.0")
	for key, value := range cfg.Headers {
		c.headers.Set(key, value)
	}
	return c
}

// BaseURL returns the resolved backend URL; empty means same origin
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request is one backend call. Body is sent as JSON.
type Request struct {
	Method  string
	Path    string
	Body    interface{}
	Headers map[string]string
	Query   map[string]string
}

func (r *Request) target(base string) string {
	if len(r.Query) == 0 {
		return base + r.Path
	}
	q := url.Values{}
	for key, value := range r.Query {
		q.Set(key, value)
	}
	return base + r.Path + "?" + q.Encode()
}

// Response is a 2xx or 3xx answer from the backend
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Decode unmarshals the response body into target
func (r *Response) Decode(target interface{}) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return errors.New(errors.ErrCodeDecode, "Empty response body")
	}
	if err := json.Unmarshal(r.Body, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeDecode, "Failed to decode response body")
	}
	return nil
}

// Do executes one request. Any status >= 400 is returned as an *errors.AppError
// carrying the backend's message. There is no retry.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}
	c.authorize(ctx, httpReq)

	resp, err := c.send(ctx, req, httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}
	return nil, c.reject(ctx, req, resp)
}

func (c *Client) build(ctx context.Context, req *Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "Failed to marshal request body")
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.target(c.baseURL), body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "Failed to create HTTP request")
	}
	httpReq.Header = c.headers.Clone()
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	id := logging.RequestIDFromContext(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-ID", id)
	return httpReq, nil
}

// authorize attaches the stored access token. It is read from storage on
// every request, never cached.
func (c *Client) authorize(ctx context.Context, httpReq *http.Request) {
	token, ok, err := c.storage.Get(ctx, session.AccessTokenKey)
	switch {
	case err != nil:
		c.logger.WithField("path", httpReq.URL.Path).WarnErr(ctx, "Could not read access token, sending request without it", err)
	case ok && token != "":
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) send(ctx context.Context, req *Request, httpReq *http.Request) (*Response, error) {
	start := time.Now()
	log := c.logger.WithFields(map[string]interface{}{"method": req.Method, "path": req.Path})

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.WithField("duration_ms", millis(time.Since(start))).Error(ctx, "Backend unreachable", err)
		return nil, errors.Wrap(err, errors.ErrCodeNetwork, "Could not reach the server")
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNetwork, "Failed to read response body")
	}

	log.WithFields(map[string]interface{}{
		"status_code":   httpResp.StatusCode,
		"duration_ms":   millis(time.Since(start)),
		"response_size": len(body),
	}).Debug(ctx, "Backend call completed")

	return &Response{StatusCode: httpResp.StatusCode, Headers: httpResp.Header, Body: body}, nil
}

// reject turns an error response into an AppError. A 401 first drops both
// stored tokens and forces navigation to login, working on storage directly,
// independent of any session store in memory.
func (c *Client) reject(ctx context.Context, req *Request, resp *Response) error {
	appErr := errors.FromStatus(resp.StatusCode, backendMessage(resp.Body))
	log := c.logger.WithFields(map[string]interface{}{
		"method":      req.Method,
		"path":        req.Path,
		"status_code": resp.StatusCode,
	})

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.storage.Remove(ctx, session.AccessTokenKey, session.RefreshTokenKey); err != nil {
			log.Error(ctx, "Failed to clear session after 401", err)
		}
		log.WithField("redirect", c.loginPath).Warn(ctx, "Session rejected by backend, redirecting to login")
		c.navigator.Navigate(ctx, c.loginPath)
		return appErr
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		log.Error(ctx, "Backend request failed", appErr)
	} else {
		log.WarnErr(ctx, "Backend rejected request", appErr)
	}
	return appErr
}

// backendMessage pulls the message out of an error body: "message", then
// "error", else empty.
func backendMessage(body []byte) string {
	var env models.Envelope
	if json.Unmarshal(body, &env) != nil {
		return ""
	}
	if msg := strings.TrimSpace(env.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(env.Error)
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path})
}

// GetWithQuery sends a GET with query parameters, encoded in key order
func (c *Client) GetWithQuery(ctx context.Context, path string, query map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}
