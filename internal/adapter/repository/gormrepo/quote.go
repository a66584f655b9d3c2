package gormrepo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
	quoteDomain "github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/quote"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
)

type QuoteRepository struct{ db *gorm.DB }

func NewQuoteRepository(db *gorm.DB) *QuoteRepository { return &QuoteRepository{db: db} }

// scopedQuotes walks quote -> estimator -> tenant. Quotes carry no tenant column.
func scopedQuotes(db *gorm.DB, f tenancy.QuoteFilter) *gorm.DB {
	q := db.Joins("JOIN users ON users.id = quotes.estimator_id").
		Where("users.tenant_id = ?", f.TenantID)
	if f.OwnOnly() {
		q = q.Where("quotes.estimator_id = ?", f.EstimatorID)
	}
	return q
}

func (r *QuoteRepository) Create(ctx context.Context, q *quoteDomain.Quote) error {
	return translate(r.db.WithContext(ctx).Create(q).Error)
}

func (r *QuoteRepository) Get(ctx context.Context, f tenancy.QuoteFilter, id uint64) (*quoteDomain.Quote, error) {
	var out quoteDomain.Quote
	res := scopedQuotes(r.db.WithContext(ctx), f).
		Select("quotes.*").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("quote_items.id") }).
		Where("quotes.id = ?", id).
		First(&out)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &out, nil
}

// GetForUpdate locks the quote row for the rest of the transaction. Items are not
// loaded.
func (r *QuoteRepository) GetForUpdate(ctx context.Context, f tenancy.QuoteFilter, id uint64) (*quoteDomain.Quote, error) {
	var out quoteDomain.Quote
	res := scopedQuotes(r.db.WithContext(ctx), f).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "quotes"}}).
		Select("quotes.*").
		Where("quotes.id = ?", id).
		First(&out)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &out, nil
}

func (r *QuoteRepository) List(ctx context.Context, f tenancy.QuoteFilter, status quoteDomain.Status, limit int) ([]quoteDomain.Quote, error) {
	q := scopedQuotes(r.db.WithContext(ctx), f).Select("quotes.*")
	if status != "" {
		q = q.Where("quotes.status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []quoteDomain.Quote
	if err := q.Order("quotes.created_at DESC, quotes.id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *QuoteRepository) Owner(ctx context.Context, id uint64) (*quoteDomain.Ownership, error) {
	var out quoteDomain.Ownership
	res := r.db.WithContext(ctx).
		Table("quotes").
		Select("users.tenant_id AS tenant_id, quotes.estimator_id AS estimator_id").
		Joins("JOIN users ON users.id = quotes.estimator_id").
		Where("quotes.id = ?", id).
		Scan(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errs.ErrNotFound
	}
	return &out, nil
}

func (r *QuoteRepository) ListItems(ctx context.Context, quoteID uint64) ([]quoteDomain.Item, error) {
	var out []quoteDomain.Item
	err := r.db.WithContext(ctx).Where("quote_id = ?", quoteID).Order("id").Find(&out).Error
	return out, err
}

func (r *QuoteRepository) AddItem(ctx context.Context, it *quoteDomain.Item) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *QuoteRepository) UpdateStatus(ctx context.Context, q *quoteDomain.Quote) error {
	return r.conditionalUpdate(ctx, q, map[string]any{
		"status":      q.Status,
		"lost_reason": q.LostReason,
		"lost_at":     q.LostAt,
		"lost_notes":  q.LostNotes,
	})
}

func (r *QuoteRepository) UpdateTotals(ctx context.Context, q *quoteDomain.Quote) error {
	return r.conditionalUpdate(ctx, q, map[string]any{
		"subtotal":  q.Subtotal,
		"tax_tps":   q.TaxTPS,
		"tax_tvq":   q.TaxTVQ,
		"total_ttc": q.TotalTTC,
	})
}

// conditionalUpdate applies cols only if nobody moved the row since q was read.
func (r *QuoteRepository) conditionalUpdate(ctx context.Context, q *quoteDomain.Quote, cols map[string]any) error {
	now := time.Now().UTC()
	cols["version"] = gorm.Expr("version + 1")
	cols["updated_at"] = now
	res := r.db.WithContext(ctx).
		Model(&quoteDomain.Quote{}).
		Where("id = ? AND version = ?", q.ID, q.Version).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrConflict
	}
	q.Version++
	q.UpdatedAt = now
	return nil
}
