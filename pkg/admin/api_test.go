package admin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/facuhernandez99/shario-admin/pkg/errors"
	httpclient "github.com/facuhernandez99/shario-admin/pkg/http"
	"github.com/facuhernandez99/shario-admin/pkg/logging"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/facuhernandez99/shario-admin/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type route struct {
	status int
	body   string
}

type seenRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Auth   string
	Body   map[string]interface{}
}

// fakeBackend answers "METHOD /path" with a scripted route. Unknown routes
// get fallback.
type fakeBackend struct {
	mu       sync.Mutex
	routes   map[string]route
	fallback route
	seen     []seenRequest
	server   *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		routes:   make(map[string]route),
		fallback: route{status: http.StatusOK, body: `{"data":null}`},
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) on(method, path string, status int, body string) *fakeBackend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = route{status: status, body: body}
	return b
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	seen := seenRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  map[string]string{},
		Auth:   r.Header.Get("Authorization"),
	}
	for key := range r.URL.Query() {
		seen.Query[key] = r.URL.Query().Get(key)
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &seen.Body)
	}

	b.mu.Lock()
	b.seen = append(b.seen, seen)
	rt, ok := b.routes[r.Method+" "+r.URL.Path]
	if !ok {
		rt = b.fallback
	}
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rt.status)
	_, _ = w.Write([]byte(rt.body))
}

func (b *fakeBackend) requests() []seenRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]seenRequest(nil), b.seen...)
}

func (b *fakeBackend) last(t *testing.T) seenRequest {
	t.Helper()
	all := b.requests()
	require.NotEmpty(t, all, "backend saw no request")
	return all[len(all)-1]
}

type harness struct {
	api       *API
	backend   *fakeBackend
	storage   *session.MemoryStorage
	navigator *httpclient.RecordingNavigator
}

func quietLogger() *logging.Logger {
	return logging.NewLogger(&logging.Config{Level: logging.LevelDebug, Output: io.Discard})
}

func newHarness(t *testing.T, endpoints Endpoints) *harness {
	t.Helper()
	backend := newFakeBackend(t)
	storage := session.NewMemoryStorage()
	navigator := &httpclient.RecordingNavigator{}
	client := httpclient.NewClient(&httpclient.ClientConfig{
		BaseURL:   backend.server.URL,
		Logger:    quietLogger(),
		Storage:   storage,
		Navigator: navigator,
	})
	return &harness{
		api:       New(client, endpoints, WithLogger(quietLogger())),
		backend:   backend,
		storage:   storage,
		navigator: navigator,
	}
}

func (h *harness) signedIn(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.storage.Set(ctx, session.AccessTokenKey, "access-1"))
	require.NoError(t, h.storage.Set(ctx, session.RefreshTokenKey, "refresh-1"))
}

func TestNew_DefaultsEndpoints(t *testing.T) {
	api := New(httpclient.NewClient(nil), Endpoints{})
	assert.Equal(t, DefaultEndpoints(), api.Endpoints())

	custom := Endpoints{Prefix: "/api/v3", PublicPrefix: "/api/public/v3", PageBase: 0}
	assert.Equal(t, custom, New(httpclient.NewClient(nil), custom).Endpoints())
}

func TestAPI_SendsStoredBearer(t *testing.T) {
	h := newHarness(t, DefaultEndpoints())
	h.signedIn(t)
	h.backend.on(http.MethodGet, "/api/v2/categories", http.StatusOK, `{"data":[]}`)

	_, err := h.api.GetAllCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer access-1", h.backend.last(t).Auth)
}

// Every operation that reaches the backend shares the 401 behavior: both
// stored tokens are gone, navigation to /login happened, and the call errors.
func TestAPI_UnauthorizedClearsSessionEverywhere(t *testing.T) {
	ctx := context.Background()
	operations := map[string]func(*API) error{
		"GetAllUsers": func(a *API) error { _, err := a.GetAllUsers(ctx, 1, 20); return err },
		"DeleteUser":  func(a *API) error { return a.DeleteUser(ctx, "5") },
		"AddPoints": func(a *API) error {
			return a.AddPoints(ctx, models.PointGrant{UserID: "5", Points: 10})
		},
		"SendNotification": func(a *API) error { return a.SendNotification(ctx, "5", "t", "b") },
		"GetAllCategories": func(a *API) error { _, err := a.GetAllCategories(ctx); return err },
		"CreateCategory": func(a *API) error {
			_, err := a.CreateCategory(ctx, models.CategoryInput{Name: "x", Color: "#000000"})
			return err
		},
		"DeleteCategory":      func(a *API) error { return a.DeleteCategory(ctx, "1") },
		"GetAllBadges":        func(a *API) error { _, err := a.GetAllBadges(ctx); return err },
		"DeleteBadge":         func(a *API) error { return a.DeleteBadge(ctx, "1") },
		"GetTransactionStats": func(a *API) error { _, err := a.GetTransactionStats(ctx); return err },
		"GetTransactionsAsSharer": func(a *API) error {
			_, err := a.GetTransactionsAsSharer(ctx, 1, 0)
			return err
		},
		"GetTransactionByID": func(a *API) error { _, err := a.GetTransactionByID(ctx, "9"); return err },
		"ListReports":        func(a *API) error { _, err := a.ListReports(ctx); return err },
		"GetAllReports":      func(a *API) error { _, err := a.GetAllReports(ctx); return err },
	}

	for name, op := range operations {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, DefaultEndpoints())
			h.signedIn(t)
			h.backend.fallback = route{status: http.StatusUnauthorized, body: `{"message":"Token expired"}`}

			err := op(h.api)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeUnauthorized))

			_, hasAccess, _ := h.storage.Get(ctx, session.AccessTokenKey)
			_, hasRefresh, _ := h.storage.Get(ctx, session.RefreshTokenKey)
			assert.False(t, hasAccess)
			assert.False(t, hasRefresh)

			path, navigated := h.navigator.Last()
			assert.True(t, navigated)
			assert.Equal(t, httpclient.DefaultLoginPath, path)
		})
	}
}

func TestAPI_ErrorsCarryBackendMessage(t *testing.T) {
	h := newHarness(t, DefaultEndpoints())
	h.backend.on(http.MethodDelete, "/api/v2/categories/3", http.StatusConflict, `{"message":"Category has items"}`)

	err := h.api.DeleteCategory(context.Background(), "3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConflict))
	assert.Equal(t, "Category has items", errors.UserMessage(err, "fallback"))
	assert.Equal(t, 0, h.navigator.Count())
}

func TestAPI_RequiresIDs(t *testing.T) {
	h := newHarness(t, DefaultEndpoints())
	ctx := context.Background()

	assert.True(t, errors.Is(h.api.DeleteUser(ctx, ""), errors.ErrCodeValidation))
	assert.True(t, errors.Is(h.api.DeleteBadge(ctx, ""), errors.ErrCodeValidation))
	_, err := h.api.GetCategoryByID(ctx, "")
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
	_, err = h.api.GetTransactionByID(ctx, "")
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
	assert.True(t, errors.Is(h.api.ApproveReport(ctx, ""), errors.ErrCodeValidation))

	assert.Empty(t, h.backend.requests())
}

func TestEndpoints_PageBase(t *testing.T) {
	tests := []struct {
		name     string
		base     int
		page     int
		expected string
	}{
		{name: "one_based_first", base: 1, page: 1, expected: "1"},
		{name: "one_based_third", base: 1, page: 3, expected: "3"},
		{name: "zero_based_first", base: 0, page: 1, expected: "0"},
		{name: "zero_based_third", base: 0, page: 3, expected: "2"},
		{name: "clamps_below_one", base: 0, page: -4, expected: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := DefaultEndpoints()
			e.PageBase = tt.base
			q := e.pageQuery(tt.page, 20)
			assert.Equal(t, tt.expected, q["page"])
			assert.Equal(t, "20", q["size"])
		})
	}
}

func TestEndpoints_Paths(t *testing.T) {
	e := Endpoints{PublicPrefix: "/api/public/v2/", Prefix: "/api/v2/"}
	assert.Equal(t, "/api/public/v2/auth/login", e.public("/auth/login"))
	assert.Equal(t, "/api/v2/users", e.api("/users"))
}
