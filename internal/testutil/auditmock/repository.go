package auditmock

import (
	"context"
	"sync"

	domain "github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/audit"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// With AppendFn unset it keeps the entries in memory.
type Repo struct {
	AppendFn       func(ctx context.Context, e *domain.Entry) error
	ListByEntityFn func(ctx context.Context, tenantID uint64, entityType, entityID string) ([]domain.Entry, error)

	mu      sync.Mutex
	Entries []domain.Entry
}

func (m *Repo) Append(ctx context.Context, e *domain.Entry) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = uint64(len(m.Entries) + 1)
	m.Entries = append(m.Entries, *e)
	return nil
}

func (m *Repo) ListByEntity(ctx context.Context, tenantID uint64, entityType, entityID string) ([]domain.Entry, error) {
	if m.ListByEntityFn != nil {
		return m.ListByEntityFn(ctx, tenantID, entityType, entityID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Entry
	for _, e := range m.Entries {
		if e.TenantID == tenantID && e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Actions lists the recorded actions in order.
func (m *Repo) Actions() []domain.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Action, 0, len(m.Entries))
	for _, e := range m.Entries {
		out = append(out, e.Action)
	}
	return out
}
