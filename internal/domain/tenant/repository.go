package tenant

import "context"

type Repository interface {
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
}
