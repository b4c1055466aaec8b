package admin

import (
	"context"
	"net/url"

	"github.com/facuhernandez99/shario-admin/pkg/models"
)

// GetTransactionStats returns the platform-wide transaction aggregate
func (a *API) GetTransactionStats(ctx context.Context) (*models.TransactionStats, error) {
	body, err := a.get(ctx, a.endpoints.api("/transactions/stats"), nil)
	if err != nil {
		return nil, err
	}
	stats, err := normalizeObject[models.TransactionStats](body)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &models.TransactionStats{}
	}
	return stats, nil
}

// GetTransactionsAsSharer lists transactions where the caller lent an item
func (a *API) GetTransactionsAsSharer(ctx context.Context, page, size int) (*models.Page[models.Transaction], error) {
	return a.transactionPage(ctx, "/transactions/as-sharer", page, size)
}

// GetTransactionsAsReceiver lists transactions where the caller borrowed an item
func (a *API) GetTransactionsAsReceiver(ctx context.Context, page, size int) (*models.Page[models.Transaction], error) {
	return a.transactionPage(ctx, "/transactions/as-receiver", page, size)
}

func (a *API) transactionPage(ctx context.Context, path string, page, size int) (*models.Page[models.Transaction], error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = models.DefaultTransactionPageSize
	}

	body, err := a.get(ctx, a.endpoints.api(path), a.endpoints.pageQuery(page, size))
	if err != nil {
		return nil, err
	}
	return normalizePage[models.Transaction](body, page, size)
}

// GetTransactionByID fetches one transaction
func (a *API) GetTransactionByID(ctx context.Context, id models.ID) (*models.Transaction, error) {
	if err := requireID(id.String(), "transaction"); err != nil {
		return nil, err
	}
	body, err := a.get(ctx, a.endpoints.api("/transactions/"+url.PathEscape(id.String())), nil)
	if err != nil {
		return nil, err
	}
	transaction, err := normalizeObject[models.Transaction](body)
	return orNotFound(transaction, err, "Transaction")
}
