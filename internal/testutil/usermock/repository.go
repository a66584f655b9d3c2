package usermock

import (
	"context"
	"time"

	domain "github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/user"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	GetByIDFn            func(ctx context.Context, tenantID, userID uint64) (*domain.User, error)
	GetByEmailFn         func(ctx context.Context, tenantID uint64, email string) (*domain.User, error)
	TouchLastLoginFn     func(ctx context.Context, userID uint64, at time.Time) error
	UpdatePasswordHashFn func(ctx context.Context, userID uint64, hash string) error
}

func (m *Repo) GetByID(ctx context.Context, tenantID, userID uint64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, tenantID, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByEmail(ctx context.Context, tenantID uint64, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, tenantID, email)
	}
	return nil, context.Canceled
}

func (m *Repo) TouchLastLogin(ctx context.Context, userID uint64, at time.Time) error {
	if m.TouchLastLoginFn != nil {
		return m.TouchLastLoginFn(ctx, userID, at)
	}
	return nil
}

func (m *Repo) UpdatePasswordHash(ctx context.Context, userID uint64, hash string) error {
	if m.UpdatePasswordHashFn != nil {
		return m.UpdatePasswordHashFn(ctx, userID, hash)
	}
	return nil
}
