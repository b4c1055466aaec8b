package logging

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminIDKey is the gin context key the dashboard stores the signed-in admin under.
const AdminIDKey = "admin_id"

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "request_id"

// HTTPLoggingConfig configures the access log
type HTTPLoggingConfig struct {
	Logger *Logger
	// SkipPaths are path prefixes that are served without a log line
	SkipPaths        []string
	SanitizeHeaders  bool
	RequestIDHeader  string
	AdminIDExtractor func(*gin.Context) string
}

// DefaultHTTPLoggingConfig skips /health and redacts credential headers
func DefaultHTTPLoggingConfig() *HTTPLoggingConfig {
	return &HTTPLoggingConfig{
		Logger:           GetDefault(),
		SkipPaths:        []string{"/health"},
		SanitizeHeaders:  true,
		RequestIDHeader:  "X-Request-ID",
		AdminIDExtractor: DefaultAdminIDExtractor,
	}
}

// DefaultAdminIDExtractor reads the admin id set by the session guard
func DefaultAdminIDExtractor(c *gin.Context) string {
	return c.GetString(AdminIDKey)
}

var credentialHeaders = []string{
	"authorization",
	"cookie",
	"x-api-key",
	"x-auth-token",
	"x-access-token",
	"x-csrf-token",
}

// sanitizeHeaderValue hides credentials carried in headers
func sanitizeHeaderValue(key, value string) string {
	lower := strings.ToLower(key)
	for _, name := range credentialHeaders {
		if strings.Contains(lower, name) {
			return redacted
		}
	}
	return value
}

type accessLog struct {
	*HTTPLoggingConfig
	component *ContextLogger
}

func (a *accessLog) skipped(path string) bool {
	for _, prefix := range a.SkipPaths {
		if path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

// assignRequestID reuses the caller's request id or mints one, echoes it back
// and puts it on the request context so backend calls forward it.
func (a *accessLog) assignRequestID(c *gin.Context) {
	id := c.GetHeader(a.RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(a.RequestIDHeader, id)
	c.Set(RequestIDKey, id)
	c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), id))
}

func (a *accessLog) fields(c *gin.Context, latency time.Duration) map[string]interface{} {
	target := c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		target += "?" + c.Request.URL.RawQuery
	}

	fields := map[string]interface{}{
		"method":      c.Request.Method,
		"path":        target,
		"status_code": c.Writer.Status(),
		"latency_ms":  float64(latency.Microseconds()) / 1000,
		"client_ip":   c.ClientIP(),
	}

	if location := c.Writer.Header().Get("Location"); location != "" {
		fields["location"] = location
	}

	if a.SanitizeHeaders {
		headers := make(map[string]interface{}, len(c.Request.Header))
		for key, values := range c.Request.Header {
			if len(values) > 0 {
				headers[key] = sanitizeHeaderValue(key, values[0])
			}
		}
		fields["request_headers"] = headers
	}

	if len(c.Errors) > 0 {
		messages := make([]string, len(c.Errors))
		for i, ginErr := range c.Errors {
			messages[i] = a.Logger.Sanitizer().Sanitize(ginErr.Err).Error()
		}
		fields["errors"] = messages
	}
	return fields
}

func (a *accessLog) handle(c *gin.Context) {
	if a.skipped(c.Request.URL.Path) {
		c.Next()
		return
	}

	start := time.Now()
	a.assignRequestID(c)
	c.Next()
	latency := time.Since(start)

	// The admin id is only known once the guard has run.
	ctx := c.Request.Context()
	if adminID := a.AdminIDExtractor(c); adminID != "" {
		ctx = WithAdminID(ctx, adminID)
	}

	status := c.Writer.Status()
	line := a.component.WithFields(a.fields(c, latency))
	message := fmt.Sprintf("%s %s - %d (%v)", c.Request.Method, c.Request.URL.Path, status, latency)

	switch {
	case status >= http.StatusInternalServerError:
		var err error
		if last := c.Errors.Last(); last != nil {
			err = last.Err
		}
		line.Error(ctx, message, err)
	case status >= http.StatusBadRequest:
		line.Warn(ctx, message)
	default:
		line.Info(ctx, message)
	}
}

// HTTPLoggingMiddleware assigns request ids and writes one access log line per
// request, at a level chosen from the status code.
func HTTPLoggingMiddleware(config *HTTPLoggingConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultHTTPLoggingConfig()
	}
	cfg := *config
	if cfg.Logger == nil {
		cfg.Logger = GetDefault()
	}
	if cfg.RequestIDHeader == "" {
		cfg.RequestIDHeader = "X-Request-ID"
	}
	if cfg.AdminIDExtractor == nil {
		cfg.AdminIDExtractor = DefaultAdminIDExtractor
	}

	a := &accessLog{HTTPLoggingConfig: &cfg, component: cfg.Logger.Component("access")}
	return a.handle
}

// RecoveryLoggingMiddleware turns a handler panic into a logged 500
func RecoveryLoggingMiddleware(logger *Logger) gin.HandlerFunc {
	if logger == nil {
		logger = GetDefault()
	}
	recovery := logger.Component("recovery")

	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			recovery.WithFields(map[string]interface{}{
				"method":    c.Request.Method,
				"path":      c.Request.URL.Path,
				"client_ip": c.ClientIP(),
				"panic":     fmt.Sprint(recovered),
			}).Error(c.Request.Context(), "Panic recovered", nil)

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Internal server error",
			})
		}()
		c.Next()
	}
}
