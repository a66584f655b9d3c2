package audit

import "context"

// Repository only appends. There is no update or delete path.
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	ListByEntity(ctx context.Context, tenantID uint64, entityType, entityID string) ([]Entry, error)
}
