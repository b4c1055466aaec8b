package dashboard

import (
	"strings"
	"sync"

	"github.com/facuhernandez99/shario-admin/pkg/errors"
	httpclient "github.com/facuhernandez99/shario-admin/pkg/http"
	"github.com/facuhernandez99/shario-admin/pkg/models"
	"github.com/gin-gonic/gin"
)

// Transaction listing roles
const (
	RoleSharer   = "sharer"
	RoleReceiver = "receiver"
)

// Summary is the landing page. A nil field failed to load; its message is in
// Errors under the field's JSON name.
type Summary struct {
	TotalUsers     *int                     `json:"totalUsers"`
	Transactions   *models.TransactionStats `json:"transactions"`
	Categories     *int                     `json:"categories"`
	PendingReports *int                     `json:"pendingReports"`
	Errors         map[string]string        `json:"errors,omitempty"`
}

// summary runs the four landing-page fetches concurrently. Each goroutine
// writes only its own field and error slot.
func (s *Server) summary(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		result Summary
		errs   [4]error
		wg     sync.WaitGroup
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		page, err := s.api.GetAllUsers(ctx, 1, 1)
		if err != nil {
			errs[0] = err
			return
		}
		result.TotalUsers = &page.TotalItems
	}()
	go func() {
		defer wg.Done()
		result.Transactions, errs[1] = s.api.GetTransactionStats(ctx)
	}()
	go func() {
		defer wg.Done()
		categories, err := s.api.GetAllCategories(ctx)
		if err != nil {
			errs[2] = err
			return
		}
		count := len(categories)
		result.Categories = &count
	}()
	go func() {
		defer wg.Done()
		reports, err := s.api.ListReports(ctx)
		if err != nil {
			errs[3] = err
			return
		}
		if reports.Supported {
			pending := countPending(reports.Value)
			result.PendingReports = &pending
		}
	}()
	wg.Wait()

	names := [4]string{"totalUsers", "transactions", "categories", "pendingReports"}
	for i, err := range errs {
		if err == nil {
			continue
		}
		if isUnauthorized(err) {
			s.fail(c, err, "")
			return
		}
		s.log.WithField("section", names[i]).WarnErr(ctx, "Dashboard section failed", err)
		if result.Errors == nil {
			result.Errors = make(map[string]string)
		}
		result.Errors[names[i]] = errors.UserMessage(err, "Failed to load")
	}

	httpclient.AddNoCacheHeaders(c)
	httpclient.RespondWithSuccess(c, result)
}

func (s *Server) statistics(c *gin.Context) {
	stats, err := s.api.GetTransactionStats(c.Request.Context())
	if err != nil {
		s.fail(c, err, "Failed to load statistics")
		return
	}

	httpclient.RespondWithSuccess(c, gin.H{
		"stats":       stats,
		"failed":      stats.Failed(),
		"successRate": stats.SuccessRate(),
	})
}

// listTransactions pages the caller's transactions by role, sharer by default
func (s *Server) listTransactions(c *gin.Context) {
	ctx := c.Request.Context()
	page := httpclient.GetPageFromQuery(c)
	size := httpclient.GetSizeFromQuery(c, models.DefaultTransactionPageSize)

	var (
		result *models.Page[models.Transaction]
		err    error
	)
	switch role := strings.ToLower(c.DefaultQuery("role", RoleSharer)); role {
	case RoleSharer:
		result, err = s.api.GetTransactionsAsSharer(ctx, page, size)
	case RoleReceiver:
		result, err = s.api.GetTransactionsAsReceiver(ctx, page, size)
	default:
		httpclient.RespondWithValidationErrors(c, map[string]string{"role": "role must be one of: sharer receiver"})
		return
	}
	if err != nil {
		s.fail(c, err, "Failed to load transactions")
		return
	}
	httpclient.RespondWithSuccess(c, result)
}

func (s *Server) getTransaction(c *gin.Context) {
	transaction, err := s.api.GetTransactionByID(c.Request.Context(), models.ID(c.Param("id")))
	if err != nil {
		s.fail(c, err, "Failed to load transaction")
		return
	}
	httpclient.RespondWithSuccess(c, transaction)
}
