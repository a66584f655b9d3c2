package uow

import (
	"context"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/audit"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/claim"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/quote"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/user"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
)

// Repos are bound to one transaction. The audit repository is part of it so that an
// audit failure rolls the business write back.
type Repos struct {
	Quotes quote.Repository
	Claims claim.Repository
	Users  user.Repository
	Audit  audit.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the quote under the filter first, then pass it in
	WithinQuoteTx(ctx context.Context, f tenancy.QuoteFilter, quoteID uint64, fn func(r Repos, q *quote.Quote) error) error
}
