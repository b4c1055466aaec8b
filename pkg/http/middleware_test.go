package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)
	defer rl.Stop()

	assert.True(t, rl.Allow("k"))
	assert.False(t, rl.Allow("k"))
	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Allow("k"))
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	router := gin.New()
	router.POST("/login", rl.RateLimitMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-Rate-Limit-Limit"))

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "Too many attempts")

	rl.Stop()
	rl.Stop()
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("default admits only the server's own origin", func(t *testing.T) {
		router := gin.New()
		router.Use(CORSMiddleware(nil))
		router.DELETE("/users/2", func(c *gin.Context) { c.Status(http.StatusOK) })

		foreign := httptest.NewRequest(http.MethodDelete, "/users/2", nil)
		foreign.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, foreign)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

		own := httptest.NewRequest(http.MethodDelete, "http://admin.local:8080/users/2", nil)
		own.Header.Set("Origin", "http://admin.local:8080")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, own)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://admin.local:8080", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("explicit wildcard drops credentials", func(t *testing.T) {
		config := DefaultCORSConfig()
		config.AllowOrigins = []string{"*"}
		router := gin.New()
		router.Use(CORSMiddleware(config))
		router.GET("/users", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("Origin", "https://admin.shareo.studio")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight", func(t *testing.T) {
		router := gin.New()
		router.Use(CORSMiddleware(nil))
		router.OPTIONS("/users", func(c *gin.Context) { c.Status(http.StatusTeapot) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/users", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("restricted origins", func(t *testing.T) {
		router := gin.New()
		router.Use(CORSMiddleware(&CORSConfig{
			AllowOrigins: []string{"*.shareo.studio"},
			AllowMethods: []string{"GET"},
		}))
		router.GET("/users", func(c *gin.Context) { c.Status(http.StatusOK) })

		allowed := httptest.NewRequest(http.MethodGet, "/users", nil)
		allowed.Header.Set("Origin", "https://admin.shareo.studio")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, allowed)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://admin.shareo.studio", w.Header().Get("Access-Control-Allow-Origin"))

		denied := httptest.NewRequest(http.MethodGet, "/users", nil)
		denied.Header.Set("Origin", "https://evil.example.com")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, denied)
		assert.Equal(t, http.StatusForbidden, w.Code)

		// Same-origin requests carry no Origin header.
		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSameOrigin(t *testing.T) {
	assert.True(t, sameOrigin("http://127.0.0.1:8080", "127.0.0.1:8080"))
	assert.True(t, sameOrigin("https://Admin.Shareo.Studio", "admin.shareo.studio"))
	assert.False(t, sameOrigin("http://127.0.0.1:9090", "127.0.0.1:8080"))
	assert.False(t, sameOrigin("null", "127.0.0.1:8080"))
	assert.False(t, sameOrigin("http://127.0.0.1:8080", ""))
}

func TestCORSPolicyAllows(t *testing.T) {
	tests := []struct {
		origin   string
		allowed  []string
		expected bool
	}{
		{"https://a.com", []string{"https://a.com"}, true},
		{"https://b.com", []string{"https://a.com"}, false},
		{"https://x.shareo.studio", []string{"*.shareo.studio"}, true},
		{"https://shareo.studio", []string{"*.shareo.studio"}, true},
		{"https://shareo.studio.evil.com", []string{"*.shareo.studio"}, false},
		{"https://anything", []string{"*"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.expected, (&corsPolicy{origins: tt.allowed}).allows(tt.origin))
		})
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/session", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RecoveryMiddleware(quietLogger()))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetRequestID(t *testing.T) {
	router := gin.New()
	router.Use(StructuredLoggingMiddleware(nil))
	var got string
	router.GET("/x", func(c *gin.Context) {
		got = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc")
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc", got)
}
