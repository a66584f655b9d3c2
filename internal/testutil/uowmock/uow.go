package uowmock

import (
	"context"
	"errors"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/quote"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/uow"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn      func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinQuoteTxFn func(ctx context.Context, f tenancy.QuoteFilter, quoteID uint64, fn func(r uow.Repos, q *quote.Quote) error) error
}

// Passthrough runs every callback directly against repos, without a transaction.
// WithinQuoteTx loads the quote through repos.Quotes.GetForUpdate.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(repos) },
		WithinQuoteTxFn: func(ctx context.Context, f tenancy.QuoteFilter, id uint64, fn func(uow.Repos, *quote.Quote) error) error {
			q, err := repos.Quotes.GetForUpdate(ctx, f, id)
			if err != nil {
				return err
			}
			return fn(repos, q)
		},
	}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinQuoteTx(ctx context.Context, f tenancy.QuoteFilter, quoteID uint64, fn func(r uow.Repos, q *quote.Quote) error) error {
	if m.WithinQuoteTxFn != nil {
		return m.WithinQuoteTxFn(ctx, f, quoteID, fn)
	}
	return errUnimplemented
}
