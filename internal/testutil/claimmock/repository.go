package claimmock

import (
	"context"

	domain "github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/claim"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                func(ctx context.Context, c *domain.Claim) error
	GetByQuoteIDFn          func(ctx context.Context, f tenancy.QuoteFilter, quoteID uint64) (*domain.Claim, error)
	GetByQuoteIDForUpdateFn func(ctx context.Context, f tenancy.QuoteFilter, quoteID uint64) (*domain.Claim, error)
	SaveAgreementFn         func(ctx context.Context, c *domain.Claim) error
	AppendNoteFn            func(ctx context.Context, n *domain.Note) error
	ListNotesFn             func(ctx context.Context, claimID uint64) ([]domain.Note, error)
}

func (m *Repo) Create(ctx context.Context, c *domain.Claim) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}

func (m *Repo) GetByQuoteID(ctx context.Context, f tenancy.QuoteFilter, quoteID uint64) (*domain.Claim, error) {
	if m.GetByQuoteIDFn != nil {
		return m.GetByQuoteIDFn(ctx, f, quoteID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByQuoteIDForUpdate(ctx context.Context, f tenancy.QuoteFilter, quoteID uint64) (*domain.Claim, error) {
	if m.GetByQuoteIDForUpdateFn != nil {
		return m.GetByQuoteIDForUpdateFn(ctx, f, quoteID)
	}
	return nil, context.Canceled
}

func (m *Repo) SaveAgreement(ctx context.Context, c *domain.Claim) error {
	if m.SaveAgreementFn != nil {
		return m.SaveAgreementFn(ctx, c)
	}
	return nil
}

func (m *Repo) AppendNote(ctx context.Context, n *domain.Note) error {
	if m.AppendNoteFn != nil {
		return m.AppendNoteFn(ctx, n)
	}
	return nil
}

func (m *Repo) ListNotes(ctx context.Context, claimID uint64) ([]domain.Note, error) {
	if m.ListNotesFn != nil {
		return m.ListNotesFn(ctx, claimID)
	}
	return nil, context.Canceled
}
