package gormrepo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	claimDomain "github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/claim"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
)

type ClaimRepository struct{ db *gorm.DB }

func NewClaimRepository(db *gorm.DB) *ClaimRepository { return &ClaimRepository{db: db} }

// scopedClaims walks claim -> quote -> estimator -> tenant.
func scopedClaims(db *gorm.DB, f tenancy.QuoteFilter) *gorm.DB {
	q := db.Joins("JOIN quotes ON quotes.id = claims.quote_id").
		Joins("JOIN users ON users.id = quotes.estimator_id").
		Where("users.tenant_id = ?", f.TenantID)
	if f.OwnOnly() {
		q = q.Where("quotes.estimator_id = ?", f.EstimatorID)
	}
	return q
}

func (r *ClaimRepository) Create(ctx context.Context, c *claimDomain.Claim) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *ClaimRepository) GetByQuoteID(ctx context.Context, f tenancy.QuoteFilter, quoteID uint64) (*claimDomain.Claim, error) {
	var out claimDomain.Claim
	res := scopedClaims(r.db.WithContext(ctx), f).
		Select("claims.*").
		Where("claims.quote_id = ?", quoteID).
		First(&out)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &out, nil
}

func (r *ClaimRepository) GetByQuoteIDForUpdate(ctx context.Context, f tenancy.QuoteFilter, quoteID uint64) (*claimDomain.Claim, error) {
	var out claimDomain.Claim
	res := scopedClaims(r.db.WithContext(ctx), f).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "claims"}}).
		Select("claims.*").
		Where("claims.quote_id = ?", quoteID).
		First(&out)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &out, nil
}

func (r *ClaimRepository) SaveAgreement(ctx context.Context, c *claimDomain.Claim) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&claimDomain.Claim{}).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Updates(map[string]any{
			"status":       c.Status,
			"agreed_price": c.AgreedPrice,
			"agreed_at":    c.AgreedAt,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrConflict
	}
	c.Version++
	c.UpdatedAt = now
	return nil
}

func (r *ClaimRepository) AppendNote(ctx context.Context, n *claimDomain.Note) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *ClaimRepository) ListNotes(ctx context.Context, claimID uint64) ([]claimDomain.Note, error) {
	var out []claimDomain.Note
	err := r.db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("created_at, id").
		Find(&out).Error
	return out, err
}
