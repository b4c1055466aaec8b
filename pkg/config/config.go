package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ProductionAPIURL is the backend used when no override is configured outside development.
const ProductionAPIURL = "https://api.shareo.studio"

// Session storage backends
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	// BindHost is the interface the dashboard listens on
	BindHost    string `json:"bind_host"`
	Port        int    `json:"port"`
	Environment string `json:"environment"`
	LogLevel    string `json:"log_level"`

	// APIBaseURL is resolved by Load; empty means same-origin.
	APIBaseURL      string        `json:"api_base_url"`
	APIPrefix       string        `json:"api_prefix"`
	PublicAPIPrefix string        `json:"public_api_prefix"`
	PageBase        int           `json:"page_base"`
	UserPageSize    int           `json:"user_page_size"`
	ListPageSize    int           `json:"list_page_size"`
	RequestTimeout  time.Duration `json:"request_timeout"`
	LoginPath       string        `json:"login_path"`

	SessionStorage string `json:"session_storage"`
	SQLiteDSN      string `json:"sqlite_dsn"`
	RedisURL       string `json:"redis_url"`

	// CORSOrigins lists the cross-origin front ends allowed to call the dashboard
	CORSOrigins     []string      `json:"cors_origins"`
	DashboardSecret string        `json:"-"`
	SessionTTL      time.Duration `json:"session_ttl"`
}

// Load reads configuration from the environment, after merging any .env file
// in the working directory. Variables already set win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		BindHost:        getEnv("BIND_HOST", "127.0.0.1"),
		Port:            getEnvAsInt("PORT", 8080),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		APIPrefix:       getEnv("ADMIN_API_PREFIX", "/api/v2"),
		PublicAPIPrefix: getEnv("ADMIN_PUBLIC_API_PREFIX", "/api/public/v2"),
		PageBase:        getEnvAsInt("ADMIN_PAGE_BASE", 1),
		UserPageSize:    getEnvAsInt("ADMIN_USER_PAGE_SIZE", 20),
		ListPageSize:    getEnvAsInt("ADMIN_LIST_PAGE_SIZE", 9),
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 0),
		LoginPath:       getEnv("LOGIN_PATH", "/login"),
		SessionStorage:  getEnv("SESSION_STORAGE", StorageSQLite),
		SQLiteDSN:       getEnv("SESSION_SQLITE_DSN", "file:shario-admin.db?_pragma=busy_timeout(5000)"),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
		CORSOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS"),
		DashboardSecret: os.Getenv("DASHBOARD_SECRET"),
		SessionTTL:      getEnvAsDuration("DASHBOARD_SESSION_TTL", 12*time.Hour),
	}
	config.APIBaseURL = ResolveBaseURL(os.Getenv("ADMIN_API_URL"), config.Environment)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// ResolveBaseURL picks the backend URL: an explicit override, else same-origin
// in development, else the production backend.
func ResolveBaseURL(override, environment string) string {
	if override != "" {
		return strings.TrimSuffix(override, "/")
	}
	if environment == "development" {
		return ""
	}
	return ProductionAPIURL
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.BindHost) == "" {
		errors = append(errors, "BIND_HOST must not be empty")
	}

	if c.Port <= 0 || c.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}

	validEnvs := []string{"development", "staging", "production"}
	if !contains(validEnvs, c.Environment) {
		errors = append(errors, fmt.Sprintf("ENVIRONMENT must be one of: %s", strings.Join(validEnvs, ", ")))
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	if c.PageBase != 0 && c.PageBase != 1 {
		errors = append(errors, "ADMIN_PAGE_BASE must be 0 or 1")
	}

	if c.UserPageSize <= 0 {
		errors = append(errors, "ADMIN_USER_PAGE_SIZE must be positive")
	}
	if c.ListPageSize <= 0 {
		errors = append(errors, "ADMIN_LIST_PAGE_SIZE must be positive")
	}

	if c.RequestTimeout < 0 {
		errors = append(errors, "REQUEST_TIMEOUT must not be negative")
	}

	if !strings.HasPrefix(c.LoginPath, "/") {
		errors = append(errors, "LOGIN_PATH must start with /")
	}

	validStorages := []string{StorageMemory, StorageSQLite, StorageRedis}
	if !contains(validStorages, c.SessionStorage) {
		errors = append(errors, fmt.Sprintf("SESSION_STORAGE must be one of: %s", strings.Join(validStorages, ", ")))
	}
	if c.SessionStorage == StorageSQLite && c.SQLiteDSN == "" {
		errors = append(errors, "SESSION_SQLITE_DSN is required for sqlite session storage")
	}
	if c.SessionStorage == StorageRedis && c.RedisURL == "" {
		errors = append(errors, "REDIS_URL is required for redis session storage")
	}

	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			errors = append(errors, "CORS_ALLOWED_ORIGINS must list origins, not *")
		}
	}
	if c.SessionTTL <= 0 {
		errors = append(errors, "DASHBOARD_SESSION_TTL must be positive")
	}
	if c.IsProduction() && len(c.DashboardSecret) < 32 {
		errors = append(errors, "DASHBOARD_SECRET of at least 32 characters is required in production")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("30s") or plain seconds ("30").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks
func getEnvAsList(key string) []string {
	var values []string
	for _, value := range strings.Split(os.Getenv(key), ",") {
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}
	return values
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
