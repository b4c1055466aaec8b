// Package dashboard serves the admin page controllers as a gin JSON API. Every
// handler is a fetch, render or mutate step over the admin facade. The backend
// session lives in the shared session store; a caller proves it is the
// signed-in admin with the credential login handed out.
package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/facuhernandez99/shario-admin/pkg/admin"
	"github.com/facuhernandez99/shario-admin/pkg/auth"
	"github.com/facuhernandez99/shario-admin/pkg/errors"
	httpclient "github.com/facuhernandez99/shario-admin/pkg/http"
	"github.com/facuhernandez99/shario-admin/pkg/logging"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/facuhernandez99/shario-admin/pkg/session"
	"github.com/gin-gonic/gin"
)

// Config holds dashboard settings
type Config struct {
	LoginPath    string
	UserPageSize int
	ListPageSize int

	// LoginAttempts is the number of sign-in attempts allowed per client per LoginWindow
	LoginAttempts int
	LoginWindow   time.Duration

	CORS *httpclient.CORSConfig

	// Secret signs dashboard credentials. When empty a random one is used and
	// credentials do not survive a restart.
	Secret     string
	SessionTTL time.Duration
	// SecureCookie marks the session cookie HTTPS-only
	SecureCookie bool
}

// DefaultConfig returns the dashboard defaults
func DefaultConfig() Config {
	return Config{
		LoginPath:     httpclient.DefaultLoginPath,
		UserPageSize:  models.DefaultUserPageSize,
		ListPageSize:  models.DefaultListPageSize,
		LoginAttempts: 10,
		LoginWindow:   time.Minute,
		CORS:          httpclient.DefaultCORSConfig(),
		SessionTTL:    auth.DefaultTTL,
	}
}

// Server holds the page controllers
type Server struct {
	api       *admin.API
	store     *session.Store
	navigator *httpclient.RecordingNavigator
	logger    *logging.Logger
	log       *logging.ContextLogger
	config    Config
	secret    []byte
	limiter   *httpclient.RateLimiter
	engine    *gin.Engine

	// users is the users page as last fetched
	mu    sync.Mutex
	users *models.Page[models.User]
}

// New builds the server. navigator may be nil; when set, redirects after a
// rejected session go wherever the HTTP client last navigated.
func New(api *admin.API, store *session.Store, navigator *httpclient.RecordingNavigator, logger *logging.Logger, config Config) *Server {
	defaults := DefaultConfig()
	if config.LoginPath == "" {
		config.LoginPath = defaults.LoginPath
	}
	if config.UserPageSize <= 0 {
		config.UserPageSize = defaults.UserPageSize
	}
	if config.ListPageSize <= 0 {
		config.ListPageSize = defaults.ListPageSize
	}
	if config.LoginAttempts <= 0 {
		config.LoginAttempts = defaults.LoginAttempts
	}
	if config.LoginWindow <= 0 {
		config.LoginWindow = defaults.LoginWindow
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = defaults.SessionTTL
	}
	if logger == nil {
		logger = logging.GetDefault()
	}

	secret := []byte(config.Secret)
	if len(secret) == 0 {
		secret = auth.GenerateSecret()
	}

	s := &Server{
		api:       api,
		store:     store,
		navigator: navigator,
		logger:    logger,
		log:       logger.Component("dashboard"),
		config:    config,
		secret:    secret,
		limiter:   httpclient.NewRateLimiter(config.LoginAttempts, config.LoginWindow),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the gin engine
func (s *Server) Handler() *gin.Engine {
	return s.engine
}

// Close stops background work
func (s *Server) Close() {
	s.limiter.Stop()
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()

	loggingConfig := logging.DefaultHTTPLoggingConfig()
	loggingConfig.Logger = s.logger

	router.Use(
		httpclient.RecoveryMiddleware(s.logger),
		httpclient.StructuredLoggingMiddleware(loggingConfig),
		httpclient.SecurityHeadersMiddleware(),
		httpclient.CORSMiddleware(s.config.CORS),
	)

	router.GET("/health", s.health)

	router.POST("/login", s.limiter.RateLimitMiddleware(), s.login)
	router.GET("/session", s.currentSession)

	guarded := router.Group("/", s.requireSession())
	{
		guarded.POST("/logout", s.logout)

		guarded.GET("/dashboard", s.summary)

		guarded.GET("/users", s.listUsers)
		guarded.GET("/users/export", s.exportUsers)
		guarded.DELETE("/users/:id", s.deleteUser)
		guarded.POST("/users/:id/points", s.addPoints)
		guarded.POST("/users/:id/notifications", s.notifyUser)

		guarded.GET("/categories", s.listCategories)
		guarded.GET("/categories/:id", s.getCategory)
		guarded.POST("/categories", s.createCategory)
		guarded.PUT("/categories/:id", s.updateCategory)
		guarded.DELETE("/categories/:id", s.deleteCategory)

		guarded.GET("/badges", s.listBadges)
		guarded.GET("/badges/:id", s.getBadge)
		guarded.POST("/badges", s.createBadge)
		guarded.PUT("/badges/:id", s.updateBadge)
		guarded.DELETE("/badges/:id", s.deleteBadge)

		guarded.GET("/reports", s.listReports)
		guarded.PUT("/reports/:id/approve", s.approveReport)
		guarded.PUT("/reports/:id/reject", s.rejectReport)

		guarded.GET("/statistics", s.statistics)
		guarded.GET("/transactions", s.listTransactions)
		guarded.GET("/transactions/:id", s.getTransaction)
	}

	return router
}

// health reports liveness plus what the session storage can say about itself.
// A storage that cannot be reached turns the answer into a 503.
func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	body := gin.H{"status": "ok"}
	status := http.StatusOK

	storage := s.store.Storage()
	if reporter, ok := storage.(session.StatsReporter); ok {
		body["storage"] = reporter.GetStats()
	}
	if pinger, ok := storage.(session.Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			s.log.Error(ctx, "Session storage unreachable", err)
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, body)
}

// authenticate accepts a request carrying a credential issued by login for the
// dashboard session still current in storage, while storage also holds a
// backend access token.
func (s *Server) authenticate(c *gin.Context) (*auth.Claims, error) {
	token, err := auth.ExtractToken(c)
	if err != nil {
		return nil, err
	}
	claims, err := auth.ValidateToken(token, s.secret)
	if err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	current, ok, err := s.store.Storage().Get(ctx, session.DashboardSessionKey)
	if err != nil {
		return nil, err
	}
	if !ok || current != claims.SessionID || !s.store.IsAuthenticated(ctx) {
		return nil, auth.ErrSessionEnded
	}
	return claims, nil
}

// requireSession lets a request through only with a valid dashboard
// credential. Browsers are redirected to the login page; API clients get a
// 401 naming the redirect.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		claims, err := s.authenticate(c)
		if err != nil {
			s.log.WithFields(map[string]interface{}{
				"path":        c.Request.URL.Path,
				"method":      c.Request.Method,
				"remote_addr": c.ClientIP(),
				"reason":      err.Error(),
			}).Warn(ctx, "Rejected request without a session")
			s.sendToLogin(c, s.config.LoginPath, "Sign in to continue")
			return
		}

		adminID := claims.AdminLabel()
		c.Set(auth.ClaimsKey, claims)
		c.Set(logging.AdminIDKey, adminID)
		c.Request = c.Request.WithContext(logging.WithAdminID(ctx, adminID))

		c.Next()
	}
}

func (s *Server) sendToLogin(c *gin.Context, redirect, message string) {
	if httpclient.WantsJSON(c) {
		httpclient.RespondWithUnauthorized(c, message, redirect)
	} else {
		c.Redirect(http.StatusFound, redirect)
	}
	c.Abort()
}

// fail answers with err. A rejected session has already been cleared from
// storage by the HTTP client; the in-memory session is dropped to match and
// the caller is sent to wherever the client navigated.
func (s *Server) fail(c *gin.Context, err error, fallback string) {
	if !isUnauthorized(err) {
		httpclient.RespondWithAppError(c, err, fallback)
		return
	}

	ctx := c.Request.Context()
	if logoutErr := s.store.Logout(ctx); logoutErr != nil {
		s.log.Error(ctx, "Failed to drop rejected session", logoutErr)
	}
	auth.ClearCookie(c, s.config.SecureCookie)

	redirect := s.config.LoginPath
	if s.navigator != nil {
		if path, ok := s.navigator.Last(); ok {
			redirect = path
		}
	}
	s.sendToLogin(c, redirect, "Your session has expired, sign in again")
}

func isUnauthorized(err error) bool {
	return errors.Is(err, errors.ErrCodeUnauthorized)
}

// validationFailed answers 400 with the per-field messages
func validationFailed(c *gin.Context, verrs *httpclient.ValidationErrors) {
	httpclient.RespondWithValidationErrors(c, verrs.Fields())
}
