package gormrepo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/tenant"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/user"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) GetByID(ctx context.Context, tenantID, userID uint64) (*user.User, error) {
	var out user.User
	res := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, userID).First(&out)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &out, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, tenantID uint64, email string) (*user.User, error) {
	var out user.User
	res := r.db.WithContext(ctx).Where("tenant_id = ? AND email = ?", tenantID, email).First(&out)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &out, nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, userID uint64, at time.Time) error {
	return r.updateOne(ctx, userID, "last_login_at", at)
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID uint64, hash string) error {
	return r.updateOne(ctx, userID, "password_hash", hash)
}

func (r *UserRepository) updateOne(ctx context.Context, userID uint64, col string, v any) error {
	res := r.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", userID).Update(col, v)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

type TenantRepository struct{ db *gorm.DB }

func NewTenantRepository(db *gorm.DB) *TenantRepository { return &TenantRepository{db: db} }

func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	var out tenant.Tenant
	res := r.db.WithContext(ctx).Where("slug = ?", slug).First(&out)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &out, nil
}
