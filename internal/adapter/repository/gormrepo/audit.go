package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/audit"
)

type AuditRepository struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) *AuditRepository { return &AuditRepository{db: db} }

func (r *AuditRepository) Append(ctx context.Context, e *audit.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *AuditRepository) ListByEntity(ctx context.Context, tenantID uint64, entityType, entityID string) ([]audit.Entry, error) {
	var out []audit.Entry
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ?", tenantID, entityType, entityID).
		Order("created_at, id").
		Find(&out).Error
	return out, err
}
