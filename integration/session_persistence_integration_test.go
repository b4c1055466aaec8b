package integration

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/facuhernandez99/shario-admin/pkg/admin"
	"github.com/facuhernandez99/shario-admin/pkg/dashboard"
	httpclient "github.com/facuhernandez99/shario-admin/pkg/http"
	"github.com/facuhernandez99/shario-admin/pkg/logging"
	"github.com/facuhernandez99/shario-admin/pkg/session"
	testutil "github.com/facuhernandez99/shario-admin/pkg/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const restartSecret = "restart-test-secret"

// process is one run of the dashboard over a sqlite session file
type process struct {
	storage   *session.SQLiteStorage
	store     *session.Store
	navigator *httpclient.RecordingNavigator
	web       *testutil.HTTPTestHelper
	server    *dashboard.Server
}

func start(t *testing.T, backendURL, dsn string) *process {
	t.Helper()
	storage, err := session.NewSQLiteStorage(dsn)
	require.NoError(t, err)

	logger := logging.NewLogger(&logging.Config{Output: io.Discard})
	store := session.NewStore(storage)
	require.NoError(t, store.Hydrate(context.Background()))

	navigator := &httpclient.RecordingNavigator{}
	client := httpclient.NewClient(&httpclient.ClientConfig{
		BaseURL:   backendURL,
		Logger:    logger,
		Storage:   storage,
		Navigator: navigator,
	})
	api := admin.New(client, admin.DefaultEndpoints(), admin.WithLogger(logger))
	config := dashboard.DefaultConfig()
	config.Secret = restartSecret
	server := dashboard.New(api, store, navigator, logger, config)

	return &process{
		storage:   storage,
		store:     store,
		navigator: navigator,
		web:       testutil.NewRouterTestHelper(t, server.Handler()),
		server:    server,
	}
}

func (p *process) stop() {
	p.server.Close()
	_ = p.storage.Close()
}

func TestSessionSurvivesRestart(t *testing.T) {
	backend := testutil.NewStubBackend(t)
	backend.SeedUsers(testutil.Users(2)...)
	dsn := "file:" + filepath.Join(t.TempDir(), "session.db")

	first := start(t, backend.URL(), dsn)
	first.web.POST("/login", dashboard.LoginForm{UsernameOrEmail: testutil.StubIdentifier, Password: testutil.StubPassword}).
		AssertStatusCode(t, http.StatusOK)
	first.stop()

	second := start(t, backend.URL(), dsn)
	defer second.stop()

	// Same browser, restarted server.
	web := first.web.WithRouter(second.server.Handler())
	web.GET("/session").AssertDataField(t, "authenticated", true)
	web.GET("/users").AssertStatusCode(t, http.StatusOK)
	assert.Equal(t, testutil.StubAccessToken, second.store.Token())

	// Anyone else still has to sign in.
	second.web.GET("/session").AssertDataField(t, "authenticated", false)
	second.web.GET("/users").AssertStatusCode(t, http.StatusUnauthorized)
}

func TestRejectedTokenIsGoneAfterRestart(t *testing.T) {
	backend := testutil.NewStubBackend(t)
	dsn := "file:" + filepath.Join(t.TempDir(), "session.db")

	first := start(t, backend.URL(), dsn)
	first.web.POST("/login", dashboard.LoginForm{UsernameOrEmail: testutil.StubIdentifier, Password: testutil.StubPassword})
	backend.RevokeTokens()

	resp := first.web.GET("/statistics")
	resp.AssertStatusCode(t, http.StatusUnauthorized)
	path, ok := first.navigator.Last()
	require.True(t, ok)
	assert.Equal(t, "/login", path)
	first.stop()

	second := start(t, backend.URL(), dsn)
	defer second.stop()
	web := first.web.WithRouter(second.server.Handler())
	web.GET("/session").AssertDataField(t, "authenticated", false)
	web.AsBrowser().GET("/statistics").AssertRedirect(t, "/login")
	assert.Empty(t, second.store.Token())
}
