package testing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/gin-gonic/gin"
)

// Default stub credentials
const (
	StubIdentifier   = "admin@shario.io"
	StubPassword     = "correct-horse"
	StubAccessToken  = "stub-access-token"
	StubRefreshToken = "stub-refresh-token"
)

// RecordedRequest is one request the stub backend served
type RecordedRequest struct {
	Method    string
	Path      string
	Query     string
	Auth      string
	RequestID string
	Body      []byte
}

type stubFailure struct {
	status  int
	message string
}

// StubBackend is an in-memory Shario backend on an httptest server. It
// speaks the v2 wire format: 1-based pages, bearer auth on /api/v2 and the
// same envelope nesting the real endpoints use.
type StubBackend struct {
	Server *httptest.Server

	mu             sync.Mutex
	users          []models.User
	categories     []models.Category
	badges         []models.Badge
	transactions   []models.Transaction
	stats          models.TransactionStats
	reports        []models.Report
	reportsEnabled bool
	grants         []models.PointGrant
	notifications  []models.Notification
	failures       map[string]stubFailure
	requests       []RecordedRequest
	nextID         int
	accessToken    string
}

// NewStubBackend starts a stub backend that is closed with the test
func NewStubBackend(t *testing.T) *StubBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &StubBackend{
		failures:    make(map[string]stubFailure),
		nextID:      100,
		accessToken: StubAccessToken,
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the backend base URL
func (b *StubBackend) URL() string {
	return b.Server.URL
}

func (b *StubBackend) routes() *gin.Engine {
	router := gin.New()
	router.Use(b.record(), b.scriptedFailures())

	router.POST("/api/public/v2/auth/login", b.login)

	api := router.Group("/api/v2", b.requireBearer())
	api.GET("/users", b.listUsers)
	api.DELETE("/users/:id", b.deleteUser)
	api.POST("/gamification/points/add", b.addPoints)
	api.POST("/notifications/send", b.sendNotification)

	api.GET("/categories", b.listCategories)
	api.GET("/categories/:id", b.getCategory)
	api.POST("/categories", b.createCategory)
	api.PUT("/categories/:id", b.updateCategory)
	api.DELETE("/categories/:id", b.deleteCategory)

	api.GET("/admin/gamification/badges", b.listBadges)
	api.GET("/admin/gamification/badges/:id", b.getBadge)
	api.POST("/admin/gamification/badges", b.createBadge)
	api.PUT("/admin/gamification/badges/:id", b.updateBadge)
	api.DELETE("/admin/gamification/badges/:id", b.deleteBadge)

	api.GET("/transactions/stats", b.transactionStats)
	api.GET("/transactions/as-sharer", b.transactionPage)
	api.GET("/transactions/as-receiver", b.transactionPage)
	api.GET("/transactions/:id", b.getTransaction)

	api.GET("/admin/reports", b.listReports)
	api.PUT("/admin/reports/:id/:action", b.moderateReport)

	return router
}

// Seeding

// SeedUsers replaces the users list
func (b *StubBackend) SeedUsers(users ...models.User) *StubBackend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = append([]models.User(nil), users...)
	return b
}

// SeedCategories replaces the categories list
func (b *StubBackend) SeedCategories(categories ...models.Category) *StubBackend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.categories = append([]models.Category(nil), categories...)
	return b
}

// SeedBadges replaces the badges list
func (b *StubBackend) SeedBadges(badges ...models.Badge) *StubBackend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.badges = append([]models.Badge(nil), badges...)
	return b
}

// SeedTransactions sets the aggregate and the transaction list
func (b *StubBackend) SeedTransactions(stats models.TransactionStats, transactions ...models.Transaction) *StubBackend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats = stats
	b.transactions = append([]models.Transaction(nil), transactions...)
	return b
}

// EnableReports turns the optional reports endpoints on. Without it they 404.
func (b *StubBackend) EnableReports(reports ...models.Report) *StubBackend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reportsEnabled = true
	b.reports = append([]models.Report(nil), reports...)
	return b
}

// Fail makes every "method path" request answer status with message until
// Recover is called.
func (b *StubBackend) Fail(method, path string, status int, message string) *StubBackend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = stubFailure{status: status, message: message}
	return b
}

// Recover drops every scripted failure
func (b *StubBackend) Recover() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = make(map[string]stubFailure)
}

// RevokeTokens makes the current access token invalid, as an expiry would
func (b *StubBackend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accessToken = "revoked-" + b.accessToken
}

// Inspection

// Users returns the current users
func (b *StubBackend) Users() []models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.User(nil), b.users...)
}

// Categories returns the current categories
func (b *StubBackend) Categories() []models.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Category(nil), b.categories...)
}

// Badges returns the current badges
func (b *StubBackend) Badges() []models.Badge {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Badge(nil), b.badges...)
}

// Reports returns the current reports
func (b *StubBackend) Reports() []models.Report {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Report(nil), b.reports...)
}

// Grants returns every point grant received
func (b *StubBackend) Grants() []models.PointGrant {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.PointGrant(nil), b.grants...)
}

// Notifications returns every notification received
func (b *StubBackend) Notifications() []models.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Notification(nil), b.notifications...)
}

// Requests returns every request served, in order
func (b *StubBackend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// RequestCount counts served requests for method and path
func (b *StubBackend) RequestCount(method, path string) int {
	count := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			count++
		}
	}
	return count
}

// Middleware

func (b *StubBackend) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(strings.NewReader(string(body)))
		}
		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Query:     c.Request.URL.RawQuery,
			Auth:      c.GetHeader("Authorization"),
			RequestID: c.GetHeader("X-Request-ID"),
			Body:      body,
		})
		b.mu.Unlock()
		c.Next()
	}
}

func (b *StubBackend) scriptedFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		failure, ok := b.failures[c.Request.Method+" "+c.Request.URL.Path]
		b.mu.Unlock()
		if ok {
			c.AbortWithStatusJSON(failure.status, gin.H{"message": failure.message})
			return
		}
		c.Next()
	}
}

func (b *StubBackend) requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		expected := "Bearer " + b.accessToken
		b.mu.Unlock()
		if c.GetHeader("Authorization") != expected {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Full authentication is required"})
			return
		}
		c.Next()
	}
}

// Handlers

func (b *StubBackend) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Malformed request"})
		return
	}
	if req.UsernameOrEmail != StubIdentifier || req.Password != StubPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Bad credentials"})
		return
	}

	b.mu.Lock()
	b.accessToken = StubAccessToken
	b.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"data": models.LoginResult{
		AccessToken:  StubAccessToken,
		RefreshToken: StubRefreshToken,
		User:         &models.CurrentUser{ID: "1", Email: StubIdentifier, Username: "admin"},
	}})
}

func (b *StubBackend) listUsers(c *gin.Context) {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", models.DefaultUserPageSize)

	b.mu.Lock()
	total := len(b.users)
	start, end := bounds(page, size, total)
	items := append([]models.User{}, b.users[start:end]...)
	b.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"data":       items,
		"totalPages": (total + size - 1) / size,
		"totalItems": total,
	}})
}

func (b *StubBackend) deleteUser(c *gin.Context) {
	id := c.Param("id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, u := range b.users {
		if u.UserID.String() == id {
			b.users = append(b.users[:i], b.users[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
}

// addPoints credits the grant to the user's trust score so a re-fetch shows it
func (b *StubBackend) addPoints(c *gin.Context) {
	var grant models.PointGrant
	if err := c.ShouldBindJSON(&grant); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Malformed request"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.users {
		if b.users[i].UserID == grant.UserID {
			b.users[i].TrustScore += grant.Points
			b.grants = append(b.grants, grant)
			c.JSON(http.StatusOK, gin.H{"data": gin.H{"userId": grant.UserID, "points": grant.Points}})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
}

func (b *StubBackend) sendNotification(c *gin.Context) {
	var n models.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Malformed request"})
		return
	}
	b.mu.Lock()
	b.notifications = append(b.notifications, n)
	b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"sent": true}})
}

func (b *StubBackend) listCategories(c *gin.Context) {
	b.mu.Lock()
	items := append([]models.Category{}, b.categories...)
	b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (b *StubBackend) getCategory(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.categoryIndex(c.Param("id")); i >= 0 {
		c.JSON(http.StatusOK, gin.H{"data": b.categories[i]})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
}

func (b *StubBackend) createCategory(c *gin.Context) {
	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Malformed request"})
		return
	}
	b.mu.Lock()
	category.ID = b.newID()
	b.categories = append(b.categories, category)
	b.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"data": category})
}

func (b *StubBackend) updateCategory(c *gin.Context) {
	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Malformed request"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.categoryIndex(c.Param("id"))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
		return
	}
	category.ID = b.categories[i].ID
	b.categories[i] = category
	c.JSON(http.StatusOK, gin.H{"data": category})
}

func (b *StubBackend) deleteCategory(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.categoryIndex(c.Param("id"))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
		return
	}
	b.categories = append(b.categories[:i], b.categories[i+1:]...)
	c.Status(http.StatusNoContent)
}

func (b *StubBackend) categoryIndex(id string) int {
	for i, category := range b.categories {
		if category.ID.String() == id {
			return i
		}
	}
	return -1
}

// Badges come back double wrapped, like the real gamification service

func (b *StubBackend) listBadges(c *gin.Context) {
	b.mu.Lock()
	items := append([]models.Badge{}, b.badges...)
	b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"data": items}})
}

func (b *StubBackend) getBadge(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.badgeIndex(c.Param("id")); i >= 0 {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"data": b.badges[i]}})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Badge not found"})
}

func (b *StubBackend) createBadge(c *gin.Context) {
	var badge models.Badge
	if err := c.ShouldBindJSON(&badge); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Malformed request"})
		return
	}
	b.mu.Lock()
	badge.ID = b.newID()
	b.badges = append(b.badges, badge)
	b.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"data": badge}})
}

func (b *StubBackend) updateBadge(c *gin.Context) {
	var badge models.Badge
	if err := c.ShouldBindJSON(&badge); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Malformed request"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.badgeIndex(c.Param("id"))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Badge not found"})
		return
	}
	badge.ID = b.badges[i].ID
	b.badges[i] = badge
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"data": badge}})
}

func (b *StubBackend) deleteBadge(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.badgeIndex(c.Param("id"))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Badge not found"})
		return
	}
	b.badges = append(b.badges[:i], b.badges[i+1:]...)
	c.Status(http.StatusNoContent)
}

func (b *StubBackend) badgeIndex(id string) int {
	for i, badge := range b.badges {
		if badge.ID.String() == id {
			return i
		}
	}
	return -1
}

func (b *StubBackend) transactionStats(c *gin.Context) {
	b.mu.Lock()
	stats := b.stats
	b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (b *StubBackend) transactionPage(c *gin.Context) {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", models.DefaultTransactionPageSize)

	b.mu.Lock()
	total := len(b.transactions)
	start, end := bounds(page, size, total)
	items := append([]models.Transaction{}, b.transactions[start:end]...)
	b.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"content": items, "totalElements": total}})
}

func (b *StubBackend) getTransaction(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, tx := range b.transactions {
		if tx.ID.String() == c.Param("id") {
			c.JSON(http.StatusOK, gin.H{"data": tx})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Transaction not found"})
}

func (b *StubBackend) listReports(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.reportsEnabled {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": append([]models.Report{}, b.reports...)})
}

func (b *StubBackend) moderateReport(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	action := c.Param("action")
	if !b.reportsEnabled || (action != "approve" && action != "reject") {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
		return
	}
	for i := range b.reports {
		if b.reports[i].ID.String() == c.Param("id") {
			b.reports[i].Status = models.ReportResolved
			c.JSON(http.StatusOK, gin.H{"data": b.reports[i]})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Report not found"})
}

func (b *StubBackend) newID() models.ID {
	b.nextID++
	return models.ID(strconv.Itoa(b.nextID))
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if n, err := strconv.Atoi(c.Query(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func bounds(page, size, total int) (int, int) {
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end
}

// DecodeBody unmarshals a recorded request body
func (r RecordedRequest) DecodeBody(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}
