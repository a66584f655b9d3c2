// Package audittrail writes the append-only audit log.
package audittrail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/audit"
)

type Record struct {
	TenantID    uint64
	ActorUserID *uint64
	Action      audit.Action
	EntityType  string
	EntityID    string
	Detail      map[string]any
}

// Writer appends through whatever repository it is given: the transaction-bound one
// for business events, the root one for security events that must outlive a failed
// operation.
type Writer struct {
	repo audit.Repository
	now  func() time.Time
}

func New(repo audit.Repository) *Writer {
	return &Writer{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock is used by tests to pin CreatedAt.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// Record appends one entry. Any error must abort the caller's transaction.
func (w *Writer) Record(ctx context.Context, rec Record) (*audit.Entry, error) {
	if rec.TenantID == 0 {
		return nil, errors.New("audit: tenant is required")
	}
	if rec.Action == "" || rec.EntityType == "" || rec.EntityID == "" {
		return nil, errors.New("audit: action and entity are required")
	}
	e := &audit.Entry{
		EventID:     uuid.NewString(),
		TenantID:    rec.TenantID,
		ActorUserID: rec.ActorUserID,
		Action:      rec.Action,
		EntityType:  rec.EntityType,
		EntityID:    rec.EntityID,
		Detail:      rec.Detail,
		CreatedAt:   w.now(),
	}
	if e.Detail == nil {
		e.Detail = map[string]any{}
	}
	if err := w.repo.Append(ctx, e); err != nil {
		return nil, fmt.Errorf("audit: append %s: %w", rec.Action, err)
	}
	return e, nil
}

// Actor is a small helper for the nullable actor column.
func Actor(id uint64) *uint64 {
	if id == 0 {
		return nil
	}
	return &id
}
