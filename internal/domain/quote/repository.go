package quote

import (
	"context"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
)

type Repository interface {
	// Create inserts the quote together with its items.
	Create(ctx context.Context, q *Quote) error

	// Get and GetForUpdate resolve quote -> estimator -> tenant under the filter.
	Get(ctx context.Context, f tenancy.QuoteFilter, id uint64) (*Quote, error)
	GetForUpdate(ctx context.Context, f tenancy.QuoteFilter, id uint64) (*Quote, error)
	List(ctx context.Context, f tenancy.QuoteFilter, status Status, limit int) ([]Quote, error)

	// Owner is an unscoped probe used only to classify a failed scoped lookup.
	Owner(ctx context.Context, id uint64) (*Ownership, error)

	ListItems(ctx context.Context, quoteID uint64) ([]Item, error)
	AddItem(ctx context.Context, it *Item) error

	// UpdateStatus and UpdateTotals are conditional on q.Version and bump it.
	UpdateStatus(ctx context.Context, q *Quote) error
	UpdateTotals(ctx context.Context, q *Quote) error
}
