package quote

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/audittrail"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/authz"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/audit"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
	domain "github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/quote"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/uow"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/user"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/testutil/auditmock"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/testutil/quotemock"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/testutil/uowmock"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/usecase/guard"
)

func mockScope(t *testing.T, role authz.Role) *tenancy.Scope {
	t.Helper()
	r := tenancy.NewResolver(nil, nil, authz.NewEvaluator(authz.DefaultTable()))
	s, err := r.ScopeFor(&user.User{ID: 5, TenantID: 1, Role: role, Active: true})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestTransition_ValidatesBeforeAnyWrite(t *testing.T) {
	tx := &uowmock.UoW{
		WithinQuoteTxFn: func(context.Context, tenancy.QuoteFilter, uint64, func(uow.Repos, *domain.Quote) error) error {
			t.Fatalf("no transaction may start for invalid input")
			return nil
		},
	}
	uc := NewUsecase(&quotemock.Repo{}, nil, tx, guard.New(&quotemock.Repo{}, nil, nil, nil), nil, nil)

	tests := []struct {
		name      string
		in        TransitionInput
		wantField string
	}{
		{"unknown target", TransitionInput{Target: "ARCHIVE"}, "target"},
		{"lowercase target", TransitionInput{Target: "envoye"}, "target"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Transition(context.Background(), mockScope(t, authz.RoleAdmin), 1, tt.in)
			var ve *errs.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Fatalf("field = %s, want %s", ve.Field, tt.wantField)
			}
		})
	}
}

func TestTransition_RefuseChecksLegalityBeforeReason(t *testing.T) {
	tests := []struct {
		name      string
		from      domain.Status
		in        TransitionInput
		wantField string // empty means a TransitionError is expected
	}{
		{"terminal quote without reason", domain.StatusEnReparation, TransitionInput{Target: "REFUSE"}, ""},
		{"refused quote with reason", domain.StatusRefuse, TransitionInput{Target: "REFUSE", LostReason: "PRICE"}, ""},
		{"open quote without reason", domain.StatusEnvoye, TransitionInput{Target: "REFUSE"}, "lost_reason"},
		{"open quote with unknown reason", domain.StatusBrouillon, TransitionInput{Target: "REFUSE", LostReason: "TOO_EXPENSIVE"}, "lost_reason"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audits := &auditmock.Repo{}
			quotes := &quotemock.Repo{
				GetForUpdateFn: func(_ context.Context, _ tenancy.QuoteFilter, id uint64) (*domain.Quote, error) {
					return &domain.Quote{ID: id, Status: tt.from, Version: 1}, nil
				},
				ListItemsFn: func(context.Context, uint64) ([]domain.Item, error) { return nil, nil },
				UpdateStatusFn: func(context.Context, *domain.Quote) error {
					t.Fatal("status must not be written")
					return nil
				},
			}
			tx := uowmock.Passthrough(uow.Repos{Quotes: quotes, Audit: audits})
			uc := NewUsecase(quotes, nil, tx, guard.New(quotes, nil, nil, nil), nil, nil)

			_, err := uc.Transition(context.Background(), mockScope(t, authz.RoleManager), 8, tt.in)
			if tt.wantField == "" {
				var te *errs.TransitionError
				if !errors.As(err, &te) || te.From != string(tt.from) || te.To != "REFUSE" {
					t.Fatalf("err = %v, want TransitionError from %s", err, tt.from)
				}
			} else {
				var ve *errs.ValidationError
				if !errors.As(err, &ve) || ve.Field != tt.wantField {
					t.Fatalf("err = %v, want ValidationError on %s", err, tt.wantField)
				}
			}
			if len(audits.Entries) != 0 {
				t.Fatalf("audit = %v", audits.Actions())
			}
		})
	}
}

func TestTransition_VersionConflict(t *testing.T) {
	audits := &auditmock.Repo{}
	quotes := &quotemock.Repo{
		GetForUpdateFn: func(_ context.Context, f tenancy.QuoteFilter, id uint64) (*domain.Quote, error) {
			if f.TenantID != 1 || f.OwnOnly() {
				t.Fatalf("manager filter = %+v", f)
			}
			return &domain.Quote{ID: id, Status: domain.StatusEnNegociation, Version: 3}, nil
		},
		ListItemsFn: func(context.Context, uint64) ([]domain.Item, error) {
			return []domain.Item{{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}}, nil
		},
		UpdateStatusFn: func(_ context.Context, q *domain.Quote) error {
			if q.Version != 3 || q.Status != domain.StatusAccepte {
				t.Fatalf("update = %+v", q)
			}
			return errs.ErrConflict
		},
	}
	tx := uowmock.Passthrough(uow.Repos{Quotes: quotes, Audit: audits})
	uc := NewUsecase(quotes, nil, tx, guard.New(quotes, audittrail.New(audits), nil, nil), nil, nil)

	_, err := uc.Transition(context.Background(), mockScope(t, authz.RoleManager), 42, TransitionInput{Target: "ACCEPTE"})
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if len(audits.Entries) != 0 {
		t.Fatalf("no audit entry may be written on conflict, got %v", audits.Actions())
	}
}

func TestTransition_AuditFailureAborts(t *testing.T) {
	boom := errors.New("audit store down")
	audits := &auditmock.Repo{AppendFn: func(context.Context, *audit.Entry) error { return boom }}
	quotes := &quotemock.Repo{
		GetForUpdateFn: func(_ context.Context, _ tenancy.QuoteFilter, id uint64) (*domain.Quote, error) {
			return &domain.Quote{ID: id, Status: domain.StatusBrouillon, Version: 1}, nil
		},
		ListItemsFn: func(context.Context, uint64) ([]domain.Item, error) { return nil, nil },
	}
	tx := uowmock.Passthrough(uow.Repos{Quotes: quotes, Audit: audits})
	uc := NewUsecase(quotes, nil, tx, guard.New(quotes, nil, nil, nil), nil, nil)

	_, err := uc.Transition(context.Background(), mockScope(t, authz.RoleAdmin), 8, TransitionInput{Target: "REFUSE", LostReason: "DELAY"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestNewItem(t *testing.T) {
	tests := []struct {
		name      string
		in        ItemInput
		wantField string
	}{
		{"ok", ItemInput{Kind: "LABOR", Description: "Débosselage", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(95)}, ""},
		{"bad kind", ItemInput{Kind: "TIRE", Description: "x", Quantity: decimal.NewFromInt(1)}, "item.kind"},
		{"blank description", ItemInput{Kind: "PART", Description: "  ", Quantity: decimal.NewFromInt(1)}, "item.description"},
		{"zero quantity", ItemInput{Kind: "PART", Description: "x"}, "item.quantity"},
		{"negative price", ItemInput{Kind: "PART", Description: "x", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(-1)}, "item.unit_price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newItem("item", tt.in)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			var ve *errs.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.wantField {
				t.Fatalf("err = %v, want field %s", err, tt.wantField)
			}
		})
	}
}
