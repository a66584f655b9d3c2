package quotemock

import (
	"context"

	domain "github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/quote"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled, unset writes are no-ops.
type Repo struct {
	CreateFn       func(ctx context.Context, q *domain.Quote) error
	GetFn          func(ctx context.Context, f tenancy.QuoteFilter, id uint64) (*domain.Quote, error)
	GetForUpdateFn func(ctx context.Context, f tenancy.QuoteFilter, id uint64) (*domain.Quote, error)
	ListFn         func(ctx context.Context, f tenancy.QuoteFilter, status domain.Status, limit int) ([]domain.Quote, error)
	OwnerFn        func(ctx context.Context, id uint64) (*domain.Ownership, error)
	ListItemsFn    func(ctx context.Context, quoteID uint64) ([]domain.Item, error)
	AddItemFn      func(ctx context.Context, it *domain.Item) error
	UpdateStatusFn func(ctx context.Context, q *domain.Quote) error
	UpdateTotalsFn func(ctx context.Context, q *domain.Quote) error
}

func (m *Repo) Create(ctx context.Context, q *domain.Quote) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, q)
	}
	return nil
}

func (m *Repo) Get(ctx context.Context, f tenancy.QuoteFilter, id uint64) (*domain.Quote, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, f, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetForUpdate(ctx context.Context, f tenancy.QuoteFilter, id uint64) (*domain.Quote, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, f, id)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f tenancy.QuoteFilter, status domain.Status, limit int) ([]domain.Quote, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f, status, limit)
	}
	return nil, context.Canceled
}

func (m *Repo) Owner(ctx context.Context, id uint64) (*domain.Ownership, error) {
	if m.OwnerFn != nil {
		return m.OwnerFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) ListItems(ctx context.Context, quoteID uint64) ([]domain.Item, error) {
	if m.ListItemsFn != nil {
		return m.ListItemsFn(ctx, quoteID)
	}
	return nil, context.Canceled
}

func (m *Repo) AddItem(ctx context.Context, it *domain.Item) error {
	if m.AddItemFn != nil {
		return m.AddItemFn(ctx, it)
	}
	return nil
}

func (m *Repo) UpdateStatus(ctx context.Context, q *domain.Quote) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, q)
	}
	return nil
}

func (m *Repo) UpdateTotals(ctx context.Context, q *domain.Quote) error {
	if m.UpdateTotalsFn != nil {
		return m.UpdateTotalsFn(ctx, q)
	}
	return nil
}
