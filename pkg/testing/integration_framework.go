package testing

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/facuhernandez99/shario-admin/pkg/admin"
	httpclient "github.com/facuhernandez99/shario-admin/pkg/http"
	"github.com/facuhernandez99/shario-admin/pkg/logging"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/facuhernandez99/shario-admin/pkg/session"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// IntegrationTestConfig holds configuration for an admin test environment
type IntegrationTestConfig struct {
	// SQLiteStorage persists the session in a temp-dir sqlite file instead of memory
	SQLiteStorage  bool
	Endpoints      admin.Endpoints
	TestTimeout    time.Duration
	VerboseLogging bool
}

// DefaultIntegrationTestConfig returns default configuration for integration tests
func DefaultIntegrationTestConfig() *IntegrationTestConfig {
	return &IntegrationTestConfig{
		Endpoints:   admin.DefaultEndpoints(),
		TestTimeout: 30 * time.Second,
	}
}

// AdminEnv is a fully wired client stack against a StubBackend: storage,
// session store, HTTP client with a recording navigator, and the admin API.
type AdminEnv struct {
	Context   context.Context
	Backend   *StubBackend
	Storage   session.Storage
	Store     *session.Store
	Navigator *httpclient.RecordingNavigator
	Client    *httpclient.Client
	API       *admin.API
	Logger    *logging.Logger

	t      *testing.T
	config *IntegrationTestConfig
}

// NewAdminEnv builds an environment torn down with the test
func NewAdminEnv(t *testing.T, config *IntegrationTestConfig) *AdminEnv {
	t.Helper()
	if config == nil {
		config = DefaultIntegrationTestConfig()
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.TestTimeout)
	t.Cleanup(cancel)

	var output io.Writer = io.Discard
	if config.VerboseLogging {
		output = os.Stderr
	}
	logger := logging.NewLogger(&logging.Config{Level: logging.LevelDebug, Output: output, Service: "shario-admin-test"})

	var storage session.Storage = session.NewMemoryStorage()
	if config.SQLiteStorage {
		sqlite, err := session.NewSQLiteStorage("file:" + filepath.Join(t.TempDir(), "session.db"))
		require.NoError(t, err, "Failed to open sqlite session storage")
		storage = sqlite
	}
	t.Cleanup(func() { _ = storage.Close() })

	backend := NewStubBackend(t)
	navigator := &httpclient.RecordingNavigator{}
	client := httpclient.NewClient(&httpclient.ClientConfig{
		BaseURL:   backend.URL(),
		Logger:    logger,
		Storage:   storage,
		Navigator: navigator,
	})

	return &AdminEnv{
		Context:   ctx,
		Backend:   backend,
		Storage:   storage,
		Store:     session.NewStore(storage),
		Navigator: navigator,
		Client:    client,
		API:       admin.New(client, config.Endpoints, admin.WithLogger(logger)),
		Logger:    logger,
		t:         t,
		config:    config,
	}
}

// SignIn logs in with the stub credentials and fails the test on error
func (env *AdminEnv) SignIn() *models.CurrentUser {
	env.t.Helper()
	user, err := env.API.SignIn(env.Context, env.Store, StubIdentifier, StubPassword)
	require.NoError(env.t, err, "Stub sign in failed")
	return user
}

// Log logs a message if verbose logging is enabled
func (env *AdminEnv) Log(format string, args ...interface{}) {
	if env.config.VerboseLogging {
		env.t.Logf(format, args...)
	}
}

// Test Orchestration Utilities

// TestScenario represents a test scenario with setup, execution, and verification
type TestScenario struct {
	Name    string
	Setup   func(*AdminEnv) error
	Execute func(*AdminEnv) error
	Verify  func(*AdminEnv) error
}

// RunScenario runs scenario against a fresh environment
func RunScenario(t *testing.T, config *IntegrationTestConfig, scenario TestScenario) {
	t.Run(scenario.Name, func(t *testing.T) {
		env := NewAdminEnv(t, config)

		if scenario.Setup != nil {
			env.Log("Running setup for scenario: %s", scenario.Name)
			require.NoError(t, scenario.Setup(env), "Setup failed for scenario: %s", scenario.Name)
		}
		if scenario.Execute != nil {
			env.Log("Executing scenario: %s", scenario.Name)
			require.NoError(t, scenario.Execute(env), "Execution failed for scenario: %s", scenario.Name)
		}
		if scenario.Verify != nil {
			env.Log("Verifying scenario: %s", scenario.Name)
			require.NoError(t, scenario.Verify(env), "Verification failed for scenario: %s", scenario.Name)
		}
	})
}

// WaitForCondition polls condition until it holds or timeout passes
func (env *AdminEnv) WaitForCondition(condition func() bool, timeout time.Duration, message string) {
	env.t.Helper()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(timeout)

	for {
		if condition() {
			return
		}
		select {
		case <-deadline:
			env.t.Fatalf("Timeout waiting for condition: %s", message)
		case <-env.Context.Done():
			env.t.Fatalf("Context cancelled while waiting for condition: %s", message)
		case <-ticker.C:
		}
	}
}

// IntegrationTestSuite gives every test a fresh AdminEnv
type IntegrationTestSuite struct {
	suite.Suite
	Config *IntegrationTestConfig
	Env    *AdminEnv
}

// SetupTest runs before each test
func (s *IntegrationTestSuite) SetupTest() {
	s.Env = NewAdminEnv(s.T(), s.Config)
}

// SkipIntegrationTest skips integration tests if integration testing is disabled
func SkipIntegrationTest(t *testing.T, reason string) {
	if os.Getenv("SKIP_INTEGRATION_TESTS") == "true" {
		t.Skipf("Skipping integration test: %s", reason)
	}
}
