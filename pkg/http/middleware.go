package http

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/facuhernandez99/shario-admin/pkg/logging"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// GetRequestID extracts the request ID from the Gin context
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(logging.RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// RateLimiter hands each client a token bucket of limit requests refilled
// over window. The dashboard puts it in front of the login route so a form
// cannot hammer the backend.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*bucket
	limit    int
	window   time.Duration
	keyFunc  func(*gin.Context) string
	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows limit requests per window per client IP. Call Stop
// to end its cleanup goroutine.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*bucket),
		limit:   limit,
		window:  window,
		keyFunc: func(c *gin.Context) string { return c.ClientIP() },
		stop:    make(chan struct{}),
	}
	go rl.evictIdle(2 * window)
	return rl
}

// RateLimitMiddleware answers 429 once the caller's bucket is empty
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Rate-Limit-Limit", strconv.Itoa(rl.limit))
		if rl.Allow(rl.keyFunc(c)) {
			c.Next()
			return
		}
		c.Header("X-Rate-Limit-Window", rl.window.String())
		RespondWithError(c, http.StatusTooManyRequests, "Too many attempts, try again later")
		c.Abort()
	}
}

// Allow takes one token from key's bucket
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.clients[key]
	if !ok {
		every := rl.window / time.Duration(max(rl.limit, 1))
		entry = &bucket{limiter: rate.NewLimiter(rate.Every(every), rl.limit)}
		rl.clients[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) evictIdle(idle time.Duration) {
	ticker := time.NewTicker(idle)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, entry := range rl.clients {
				if now.Sub(entry.lastSeen) > idle {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig admits same-origin callers only; cross-origin front ends
// must be listed in AllowOrigins. Credentials are allowed so the session
// cookie travels with listed origins.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Request-ID",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"X-Rate-Limit-Limit",
			"Content-Disposition",
		},
		MaxAge: 12 * time.Hour,
	}
}

// corsPolicy is a CORSConfig with its header values joined once
type corsPolicy struct {
	origins     []string
	wildcard    bool
	methods     string
	headers     string
	expose      string
	credentials bool
	maxAge      string
}

func newCORSPolicy(config *CORSConfig) *corsPolicy {
	p := &corsPolicy{
		origins:     config.AllowOrigins,
		wildcard:    slices.Equal(config.AllowOrigins, []string{"*"}),
		methods:     strings.Join(config.AllowMethods, ", "),
		headers:     strings.Join(config.AllowHeaders, ", "),
		expose:      strings.Join(config.ExposeHeaders, ", "),
		credentials: config.AllowCredentials,
	}
	// Browsers refuse credentials alongside a wildcard origin.
	if p.wildcard {
		p.credentials = false
	}
	if config.MaxAge > 0 {
		p.maxAge = strconv.Itoa(int(config.MaxAge.Seconds()))
	}
	return p
}

// allows matches exact origins and "*.domain" wildcards
func (p *corsPolicy) allows(origin string) bool {
	host := origin
	if _, rest, found := strings.Cut(origin, "://"); found {
		host = rest
	}
	for _, allowed := range p.origins {
		if allowed == "*" || allowed == origin {
			return true
		}
		if domain, ok := strings.CutPrefix(allowed, "*."); ok {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return true
			}
		}
	}
	return false
}

// sameOrigin reports whether origin names the host the request was sent to
func sameOrigin(origin, host string) bool {
	_, rest, found := strings.Cut(origin, "://")
	return found && host != "" && strings.EqualFold(rest, host)
}

func (p *corsPolicy) apply(c *gin.Context, origin string) {
	h := c.Writer.Header()
	switch {
	case p.wildcard:
		h.Set("Access-Control-Allow-Origin", "*")
	case origin != "":
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	}
	h.Set("Access-Control-Allow-Methods", p.methods)
	h.Set("Access-Control-Allow-Headers", p.headers)
	if p.expose != "" {
		h.Set("Access-Control-Expose-Headers", p.expose)
	}
	if p.credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if p.maxAge != "" {
		h.Set("Access-Control-Max-Age", p.maxAge)
	}
}

// CORSMiddleware lets a separately hosted dashboard front end call this API.
// Requests from origins outside the policy, other than the server's own, get
// 403; preflights end with 204.
func CORSMiddleware(config *CORSConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultCORSConfig()
	}
	policy := newCORSPolicy(config)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && !policy.wildcard && !policy.allows(origin) && !sameOrigin(origin, c.Request.Host) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		policy.apply(c, origin)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware adds common security headers. Dashboard responses
// carry session state, so they are never cached.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		AddNoCacheHeaders(c)
		c.Next()
	}
}

// StructuredLoggingMiddleware writes the access log; see logging.HTTPLoggingMiddleware
func StructuredLoggingMiddleware(config *logging.HTTPLoggingConfig) gin.HandlerFunc {
	return logging.HTTPLoggingMiddleware(config)
}

// RecoveryMiddleware turns handler panics into a logged 500
func RecoveryMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return logging.RecoveryLoggingMiddleware(logger)
}
