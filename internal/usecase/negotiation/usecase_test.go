package negotiation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/authz"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/audit"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/claim"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/quote"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/uow"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/user"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/testutil/auditmock"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/testutil/claimmock"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/testutil/quotemock"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/testutil/uowmock"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/usecase/guard"
)

func mockScope(t *testing.T) *tenancy.Scope {
	t.Helper()
	r := tenancy.NewResolver(nil, nil, authz.NewEvaluator(authz.DefaultTable()))
	s, err := r.ScopeFor(&user.User{ID: 5, TenantID: 1, Role: authz.RoleManager, Active: true})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

type fixture struct {
	uc     *Usecase
	claims *claimmock.Repo
	audits *auditmock.Repo
	notes  []claim.Note
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{audits: &auditmock.Repo{}}
	quotes := &quotemock.Repo{
		GetForUpdateFn: func(_ context.Context, _ tenancy.QuoteFilter, id uint64) (*quote.Quote, error) {
			return &quote.Quote{ID: id, Status: quote.StatusEnNegociation, TotalTTC: decimal.RequireFromString("1149.75"), Version: 3}, nil
		},
	}
	fx.claims = &claimmock.Repo{
		GetByQuoteIDForUpdateFn: func(_ context.Context, _ tenancy.QuoteFilter, quoteID uint64) (*claim.Claim, error) {
			return &claim.Claim{ID: 9, QuoteID: quoteID, Status: claim.StatusEnAttente, Version: 1}, nil
		},
		AppendNoteFn: func(_ context.Context, n *claim.Note) error {
			fx.notes = append(fx.notes, *n)
			return nil
		},
		ListNotesFn: func(context.Context, uint64) ([]claim.Note, error) { return fx.notes, nil },
	}
	tx := uowmock.Passthrough(uow.Repos{Quotes: quotes, Claims: fx.claims, Audit: fx.audits})
	fx.uc = NewUsecase(quotes, fx.claims, tx, guard.New(quotes, nil, nil, nil), nil, nil)
	return fx
}

func TestRecordAgreedPrice_VersionConflictWritesNothing(t *testing.T) {
	fx := newFixture(t)
	fx.claims.SaveAgreementFn = func(context.Context, *claim.Claim) error { return errs.ErrConflict }

	_, err := fx.uc.RecordAgreedPrice(context.Background(), mockScope(t), 4, AgreedPriceInput{AgreedPrice: decimal.NewFromInt(950)})
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if len(fx.notes) != 0 || len(fx.audits.Entries) != 0 {
		t.Fatalf("notes = %d, audit = %d after a lost race", len(fx.notes), len(fx.audits.Entries))
	}
}

func TestRecordAgreedPrice_AuditFailureFails(t *testing.T) {
	fx := newFixture(t)
	boom := errors.New("audit down")
	fx.audits.AppendFn = func(context.Context, *audit.Entry) error { return boom }

	if _, err := fx.uc.RecordAgreedPrice(context.Background(), mockScope(t), 4, AgreedPriceInput{AgreedPrice: decimal.NewFromInt(950)}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestRecordAgreedPrice_WritesInOrder(t *testing.T) {
	fx := newFixture(t)
	var saved *claim.Claim
	fx.claims.SaveAgreementFn = func(_ context.Context, c *claim.Claim) error {
		if len(fx.notes) != 0 {
			t.Fatal("note written before the claim")
		}
		saved = c
		return nil
	}

	got, err := fx.uc.RecordAgreedPrice(context.Background(), mockScope(t), 4, AgreedPriceInput{AgreedPrice: decimal.RequireFromString("950.004")})
	if err != nil {
		t.Fatal(err)
	}
	if saved.Status != claim.StatusApprouvee || !saved.AgreedPrice.Decimal.Equal(decimal.NewFromInt(950)) || saved.AgreedAt == nil {
		t.Fatalf("saved = %+v", saved)
	}
	if len(fx.notes) != 1 || fx.notes[0].AuthorID != 5 || fx.notes[0].ClaimID != 9 {
		t.Fatalf("notes = %+v", fx.notes)
	}
	if len(fx.audits.Entries) != 1 || fx.audits.Entries[0].Action != audit.ActionSetAgreedPrice || fx.audits.Entries[0].EntityID != "9" {
		t.Fatalf("audit = %+v", fx.audits.Entries)
	}
	if d := fx.audits.Entries[0].Detail; d["difference"] != json.Number("-199.75") || d["agreed_price"] != json.Number("950.00") || d["previous_price"] != nil {
		t.Fatalf("detail = %v", d)
	}
	if !got.Difference.Equal(decimal.RequireFromString("-199.75")) {
		t.Fatalf("difference = %s", got.Difference)
	}
}

func TestOpenClaim_BlankInsurerNeverStartsATransaction(t *testing.T) {
	tx := &uowmock.UoW{}
	uc := NewUsecase(&quotemock.Repo{}, &claimmock.Repo{}, tx, guard.New(&quotemock.Repo{}, nil, nil, nil), nil, nil)
	_, err := uc.OpenClaim(context.Background(), mockScope(t), 1, OpenClaimInput{InsurerName: " "})
	var ve *errs.ValidationError
	if !errors.As(err, &ve) || ve.Field != "insurer_name" {
		t.Fatalf("err = %v", err)
	}
}
