package integration

import (
	"net/http"
	"testing"

	"github.com/facuhernandez99/shario-admin/pkg/dashboard"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	testutil "github.com/facuhernandez99/shario-admin/pkg/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboard(t *testing.T, env *testutil.AdminEnv) *testutil.HTTPTestHelper {
	t.Helper()
	server := dashboard.New(env.API, env.Store, env.Navigator, env.Logger, dashboard.DefaultConfig())
	t.Cleanup(server.Close)
	return testutil.NewRouterTestHelper(t, server.Handler())
}

// TestAdminWorkday walks an administrator through a full session
func TestAdminWorkday(t *testing.T) {
	testutil.SkipIntegrationTest(t, "admin workday")

	env := testutil.NewAdminEnv(t, nil)
	env.Backend.
		SeedUsers(testutil.Users(30)...).
		SeedCategories(models.Category{ID: "1", Name: "Tools", Color: "#112233"}).
		SeedTransactions(models.TransactionStats{TotalTransactions: 10, CompletedTransactions: 9}).
		EnableReports(models.Report{ID: "7", Type: "item", Reason: "Spam", Status: models.ReportPending})
	web := newDashboard(t, env)

	// Signed out: every page bounces to login.
	web.AsBrowser().GET("/users").AssertRedirect(t, "/login")

	resp := web.POST("/login", dashboard.LoginForm{UsernameOrEmail: testutil.StubIdentifier, Password: testutil.StubPassword})
	resp.AssertStatusCode(t, http.StatusOK)

	var summary dashboard.Summary
	require.NoError(t, web.GET("/dashboard").BindDataTo(&summary))
	require.NotNil(t, summary.TotalUsers)
	assert.Equal(t, 30, *summary.TotalUsers)
	require.NotNil(t, summary.PendingReports)
	assert.Equal(t, 1, *summary.PendingReports)

	resp = web.GET("/users", map[string]string{"page": "2"})
	resp.AssertPagination(t, 2, 2, 30)

	resp = web.POST("/users/25/points", dashboard.PointsForm{Points: 15, Reason: "Helpful lender"})
	resp.AssertStatusCode(t, http.StatusOK)
	require.Len(t, env.Backend.Notifications(), 1)
	assert.Equal(t, "You received 15 points for: Helpful lender", env.Backend.Notifications()[0].Body)

	// The re-fetch stays on page 2.
	var refreshed struct {
		Users models.Page[models.User] `json:"users"`
	}
	require.NoError(t, resp.BindDataTo(&refreshed))
	assert.Equal(t, 2, refreshed.Users.Page)

	web.DELETE("/users/25").AssertStatusCode(t, http.StatusOK)
	assert.Len(t, env.Backend.Users(), 29)

	web.POST("/categories", models.CategoryInput{Name: "Books", Color: "#abcdef"}).AssertStatusCode(t, http.StatusCreated)
	web.GET("/categories").AssertPagination(t, 1, 1, 2)

	web.PUT("/reports/7/approve", nil).AssertStatusCode(t, http.StatusOK)
	web.GET("/reports").AssertDataField(t, "pending", float64(0))

	web.POST("/logout", nil).AssertStatusCode(t, http.StatusOK)
	web.GET("/users").AssertStatusCode(t, http.StatusUnauthorized)
	assert.Equal(t, 0, env.Navigator.Count())
}

func TestEveryBackendCallCarriesTheBearer(t *testing.T) {
	env := testutil.NewAdminEnv(t, nil)
	env.Backend.SeedUsers(testutil.Users(3)...)
	web := newDashboard(t, env)
	web.POST("/login", dashboard.LoginForm{UsernameOrEmail: testutil.StubIdentifier, Password: testutil.StubPassword}).
		AssertStatusCode(t, http.StatusOK)

	web.GET("/dashboard").AssertStatusCode(t, http.StatusOK)
	web.GET("/users")
	web.GET("/badges")

	for _, req := range env.Backend.Requests() {
		if req.Path == "/api/public/v2/auth/login" {
			assert.Empty(t, req.Auth)
			continue
		}
		assert.Equal(t, "Bearer "+testutil.StubAccessToken, req.Auth, "%s %s", req.Method, req.Path)
	}
}
