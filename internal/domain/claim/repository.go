package claim

import (
	"context"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
)

type Repository interface {
	Create(ctx context.Context, c *Claim) error

	// GetByQuoteID resolves claim -> quote -> estimator -> tenant under the filter.
	GetByQuoteID(ctx context.Context, f tenancy.QuoteFilter, quoteID uint64) (*Claim, error)
	GetByQuoteIDForUpdate(ctx context.Context, f tenancy.QuoteFilter, quoteID uint64) (*Claim, error)

	// SaveAgreement writes status, agreed price and date; conditional on c.Version.
	SaveAgreement(ctx context.Context, c *Claim) error

	AppendNote(ctx context.Context, n *Note) error
	ListNotes(ctx context.Context, claimID uint64) ([]Note, error)
}
