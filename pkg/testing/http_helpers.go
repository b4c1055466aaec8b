package testing

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	acceptJSON = "application/json"
	acceptHTML = "text/html,application/xhtml+xml"
)

// HTTPTestHelper drives a gin router the way the dashboard front end does.
// Like a browser it keeps the cookies the router sets and sends them back.
type HTTPTestHelper struct {
	Router *gin.Engine
	t      *testing.T
	accept string
	jar    *cookiejar.Jar
}

// NewHTTPTestHelper wraps an empty router for handler tests
func NewHTTPTestHelper(t *testing.T) *HTTPTestHelper {
	gin.SetMode(gin.TestMode)
	return NewRouterTestHelper(t, gin.New())
}

// NewRouterTestHelper wraps a configured router, such as dashboard.Server.Handler(),
// with an empty cookie jar
func NewRouterTestHelper(t *testing.T, router *gin.Engine) *HTTPTestHelper {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &HTTPTestHelper{Router: router, t: t, accept: acceptJSON, jar: jar}
}

// WithRouter returns a helper for another router that keeps this helper's
// cookies, as a browser does when the server behind it restarts.
func (h *HTTPTestHelper) WithRouter(router *gin.Engine) *HTTPTestHelper {
	next := *h
	next.Router = router
	return &next
}

// AsBrowser returns a helper whose requests accept HTML, as page loads do.
// Unauthenticated page loads are redirected rather than answered with 401.
func (h *HTTPTestHelper) AsBrowser() *HTTPTestHelper {
	browser := *h
	browser.accept = acceptHTML
	return &browser
}

// TestRequest is one request against the router
type TestRequest struct {
	Method  string
	Path    string
	Body    interface{}
	Headers map[string]string
	Query   map[string]string
}

func (h *HTTPTestHelper) encode(body interface{}) io.Reader {
	switch b := body.(type) {
	case nil:
		return nil
	case string:
		return strings.NewReader(b)
	case []byte:
		return bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err, "request body must encode")
		return bytes.NewReader(raw)
	}
}

// MakeRequest serves req and decodes a JSON envelope when one comes back
func (h *HTTPTestHelper) MakeRequest(req TestRequest) *TestResponse {
	httpReq := httptest.NewRequest(req.Method, req.Path, h.encode(req.Body))
	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for key, value := range req.Query {
			q.Set(key, value)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	httpReq.Header.Set("Accept", h.accept)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	site := &url.URL{Scheme: "http", Host: httpReq.Host, Path: "/"}
	for _, cookie := range h.jar.Cookies(site) {
		httpReq.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	h.Router.ServeHTTP(w, httpReq)
	h.jar.SetCookies(site, w.Result().Cookies())

	resp := &TestResponse{ResponseRecorder: w}
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp.Body); err != nil {
			resp.Body = map[string]interface{}{"raw": w.Body.String()}
		}
	}
	return resp
}

// GET sends a GET; query, when given, is encoded onto the path
func (h *HTTPTestHelper) GET(path string, query ...map[string]string) *TestResponse {
	req := TestRequest{Method: http.MethodGet, Path: path}
	if len(query) > 0 {
		req.Query = query[0]
	}
	return h.MakeRequest(req)
}

func (h *HTTPTestHelper) POST(path string, body interface{}) *TestResponse {
	return h.MakeRequest(TestRequest{Method: http.MethodPost, Path: path, Body: body})
}

func (h *HTTPTestHelper) PUT(path string, body interface{}) *TestResponse {
	return h.MakeRequest(TestRequest{Method: http.MethodPut, Path: path, Body: body})
}

func (h *HTTPTestHelper) DELETE(path string) *TestResponse {
	return h.MakeRequest(TestRequest{Method: http.MethodDelete, Path: path})
}

// TestResponse is a recorded response plus its decoded JSON envelope
type TestResponse struct {
	*httptest.ResponseRecorder
	Body map[string]interface{}
}

func (r *TestResponse) AssertStatusCode(t *testing.T, expectedCode int) {
	t.Helper()
	assert.Equal(t, expectedCode, r.Code, "unexpected status, body: %s", r.ResponseRecorder.Body.String())
}

func (r *TestResponse) AssertSuccess(t *testing.T) {
	t.Helper()
	assert.Equal(t, true, r.Body["success"], "expected success=true")
	assert.Empty(t, r.Body["error"])
}

// AssertError checks a failed envelope; an empty message only requires one to be present
func (r *TestResponse) AssertError(t *testing.T, expectedMessage string) {
	t.Helper()
	assert.Equal(t, false, r.Body["success"], "expected success=false")
	if expectedMessage == "" {
		assert.NotEmpty(t, r.Body["error"])
		return
	}
	assert.Equal(t, expectedMessage, r.Body["error"])
}

func (r *TestResponse) AssertDataField(t *testing.T, field string, expectedValue interface{}) {
	t.Helper()
	data := r.GetDataAsMap()
	require.NotNil(t, data, "data should be an object")
	assert.Equal(t, expectedValue, data[field], "data.%s", field)
}

// AssertPagination checks page, totalPages and totalItems of a paged payload
func (r *TestResponse) AssertPagination(t *testing.T, expectedPage, expectedTotalPages, expectedTotal int) {
	t.Helper()
	page := r.GetDataAsMap()
	require.NotNil(t, page, "data should be a page")
	assert.Equal(t, float64(expectedPage), page["page"], "page")
	assert.Equal(t, float64(expectedTotalPages), page["totalPages"], "totalPages")
	assert.Equal(t, float64(expectedTotal), page["totalItems"], "totalItems")
}

func (r *TestResponse) AssertRedirect(t *testing.T, location string) {
	t.Helper()
	assert.True(t, r.Code >= 300 && r.Code < 400, "expected a redirect, got %d", r.Code)
	assert.Equal(t, location, r.Header().Get("Location"))
}

func (r *TestResponse) AssertHeaderValue(t *testing.T, headerName, expectedValue string) {
	t.Helper()
	assert.Equal(t, expectedValue, r.Header().Get(headerName), "header %s", headerName)
}

func (r *TestResponse) AssertContentType(t *testing.T, expectedType string) {
	t.Helper()
	assert.Equal(t, expectedType, r.Header().Get("Content-Type"))
}

func (r *TestResponse) GetData() interface{} {
	return r.Body["data"]
}

func (r *TestResponse) GetDataAsMap() map[string]interface{} {
	data, _ := r.Body["data"].(map[string]interface{})
	return data
}

// PageItems returns data.items of a paged payload
func (r *TestResponse) PageItems() []interface{} {
	items, _ := r.GetDataAsMap()["items"].([]interface{})
	return items
}

// BindDataTo decodes the data field into v
func (r *TestResponse) BindDataTo(v interface{}) error {
	if r.Body["data"] == nil {
		return nil
	}
	raw, err := json.Marshal(r.Body["data"])
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
