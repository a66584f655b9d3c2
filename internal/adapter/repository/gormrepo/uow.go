package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/quote"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/uow"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Quotes: &QuoteRepository{db: tx},
		Claims: &ClaimRepository{db: tx},
		Users:  &UserRepository{db: tx},
		Audit:  &AuditRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinQuoteTx(ctx context.Context, f tenancy.QuoteFilter, quoteID uint64, fn func(r uow.Repos, q *quote.Quote) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the quote row up-front; a miss aborts before fn runs
		q, err := r.Quotes.GetForUpdate(ctx, f, quoteID)
		if err != nil {
			return err
		}
		return fn(r, q)
	})
}
