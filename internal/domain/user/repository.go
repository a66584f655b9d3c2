package user

import (
	"context"
	"time"
)

type Repository interface {
	// GetByID only matches a user of the given tenant.
	GetByID(ctx context.Context, tenantID, userID uint64) (*User, error)
	GetByEmail(ctx context.Context, tenantID uint64, email string) (*User, error)
	TouchLastLogin(ctx context.Context, userID uint64, at time.Time) error
	UpdatePasswordHash(ctx context.Context, userID uint64, hash string) error
}
