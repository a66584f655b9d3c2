package audittrail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/audit"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/testutil/auditmock"
)

func TestRecord(t *testing.T) {
	repo := &auditmock.Repo{}
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	w := New(repo).WithClock(func() time.Time { return at })

	e, err := w.Record(context.Background(), Record{
		TenantID:    4,
		ActorUserID: Actor(12),
		Action:      audit.ActionStatusChange,
		EntityType:  "quote",
		EntityID:    "31",
		Detail:      map[string]any{"from": "BROUILLON", "to": "ENVOYE"},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := uuid.Parse(e.EventID); err != nil {
		t.Errorf("EventID %q is not a uuid", e.EventID)
	}
	if !e.CreatedAt.Equal(at) || *e.ActorUserID != 12 || e.Detail["to"] != "ENVOYE" {
		t.Errorf("entry = %+v", e)
	}
	if len(repo.Entries) != 1 {
		t.Fatalf("entries = %d", len(repo.Entries))
	}
}

func TestRecord_Rejects(t *testing.T) {
	w := New(&auditmock.Repo{})
	tests := []struct {
		name string
		rec  Record
	}{
		{"no tenant", Record{Action: audit.ActionCreate, EntityType: "quote", EntityID: "1"}},
		{"no action", Record{TenantID: 1, EntityType: "quote", EntityID: "1"}},
		{"no entity", Record{TenantID: 1, Action: audit.ActionCreate}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := w.Record(context.Background(), tt.rec); err == nil {
				t.Fatal("want error")
			}
		})
	}
}

func TestRecord_PropagatesStoreError(t *testing.T) {
	boom := errors.New("disk full")
	w := New(&auditmock.Repo{AppendFn: func(context.Context, *audit.Entry) error { return boom }})
	_, err := w.Record(context.Background(), Record{TenantID: 1, Action: audit.ActionCreate, EntityType: "quote", EntityID: "1"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestActor(t *testing.T) {
	if Actor(0) != nil {
		t.Fatal("zero id must map to nil")
	}
}
