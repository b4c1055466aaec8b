package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/facuhernandez99/shario-admin/pkg/admin"
	"github.com/facuhernandez99/shario-admin/pkg/config"
	"github.com/facuhernandez99/shario-admin/pkg/dashboard"
	httpclient "github.com/facuhernandez99/shario-admin/pkg/http"
	"github.com/facuhernandez99/shario-admin/pkg/logging"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/facuhernandez99/shario-admin/pkg/session"
	"github.com/gin-gonic/gin"
)

const version = "0.4.0"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.NewLogger(&logging.Config{
		Level:      logging.ParseLevel(cfg.LogLevel),
		Output:     os.Stdout,
		Service:    "shario-admin",
		Version:    version,
		Production: cfg.IsProduction(),
	})
	logging.SetDefault(logger)

	if cfg.APIBaseURL == "" {
		logger.Fatal(ctx, "ADMIN_API_URL must be set when the dashboard is not served from the backend origin", nil)
	}

	storage, err := openStorage(cfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to open session storage", err)
	}
	defer storage.Close()

	store := session.NewStore(storage)
	store.Subscribe(func(s models.Session) {
		logger.WithField("authenticated", s.Authenticated()).Info(ctx, "Admin session changed")
	})
	if err := store.Hydrate(ctx); err != nil {
		logger.Error(ctx, "Failed to restore session", err)
	}

	navigator := &httpclient.RecordingNavigator{}
	client := httpclient.NewClient(&httpclient.ClientConfig{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.RequestTimeout,
		LoginPath: cfg.LoginPath,
		Logger:    logger,
		Storage:   storage,
		Navigator: navigator,
	})

	api := admin.New(client, admin.Endpoints{
		PublicPrefix: cfg.PublicAPIPrefix,
		Prefix:       cfg.APIPrefix,
		PageBase:     cfg.PageBase,
	}, admin.WithLogger(logger))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	dashboardConfig := dashboard.DefaultConfig()
	dashboardConfig.LoginPath = cfg.LoginPath
	dashboardConfig.UserPageSize = cfg.UserPageSize
	dashboardConfig.ListPageSize = cfg.ListPageSize
	dashboardConfig.CORS.AllowOrigins = cfg.CORSOrigins
	dashboardConfig.Secret = cfg.DashboardSecret
	dashboardConfig.SessionTTL = cfg.SessionTTL
	dashboardConfig.SecureCookie = cfg.IsProduction()
	if cfg.DashboardSecret == "" {
		logger.Warn(ctx, "DASHBOARD_SECRET is not set, dashboard sign-ins will not survive a restart")
	}

	server := dashboard.New(api, store, navigator, logger, dashboardConfig)
	defer server.Close()

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindHost, strconv.Itoa(cfg.Port)),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(map[string]interface{}{
			"addr":        srv.Addr,
			"backend":     cfg.APIBaseURL,
			"storage":     cfg.SessionStorage,
			"environment": cfg.Environment,
		}).Info(ctx, "Starting admin dashboard")

		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "Server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Forced shutdown", err)
	}
}

func openStorage(cfg *config.Config) (session.Storage, error) {
	switch cfg.SessionStorage {
	case config.StorageMemory:
		return session.NewMemoryStorage(), nil
	case config.StorageRedis:
		return session.NewRedisStorageFromURL(cfg.RedisURL)
	default:
		return session.NewSQLiteStorage(cfg.SQLiteDSN)
	}
}
