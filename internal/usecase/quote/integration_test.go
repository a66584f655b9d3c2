package quote

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/adapter/repository/gormrepo"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/audittrail"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/audit"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
	domain "github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/quote"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/testutil/sqlitedb"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/usecase/guard"
)

type env struct {
	uc  *Usecase
	db  *gorm.DB
	fx  *sqlitedb.Fixture
	log *gormrepo.AuditRepository
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := sqlitedb.Open(t)
	fx := sqlitedb.Seed(t, db)
	quotes := gormrepo.NewQuoteRepository(db)
	audits := gormrepo.NewAuditRepository(db)
	g := guard.New(quotes, audittrail.New(audits), nil, nil)
	uc := NewUsecase(quotes, gormrepo.NewClientRepository(db), gormrepo.NewGormUoW(db), g, nil, nil)
	return &env{uc: uc, db: db, fx: fx, log: audits}
}

func (e *env) newQuote(t *testing.T, s *tenancy.Scope, shop sqlitedb.Shop, withItem bool) *QuoteDTO {
	t.Helper()
	in := CreateQuoteInput{ClientID: shop.Client.ID, VehicleID: shop.Vehicle.ID}
	if withItem {
		in.Items = []ItemInput{{Kind: "PART", Description: "Pare-chocs arrière", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("1000")}}
	}
	dto, err := e.uc.Create(context.Background(), s, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return dto
}

// forceStatus puts a quote in any status without going through the lifecycle.
func (e *env) forceStatus(t *testing.T, id uint64, st domain.Status) {
	t.Helper()
	if err := e.db.Model(&domain.Quote{}).Where("id = ?", id).Update("status", st).Error; err != nil {
		t.Fatal(err)
	}
}

func (e *env) status(t *testing.T, id uint64) domain.Status {
	t.Helper()
	var q domain.Quote
	if err := e.db.First(&q, id).Error; err != nil {
		t.Fatal(err)
	}
	return q.Status
}

func (e *env) actions(t *testing.T, tenantID, quoteID uint64) []audit.Action {
	t.Helper()
	entries, err := e.log.ListByEntity(context.Background(), tenantID, "quote", strconv.FormatUint(quoteID, 10))
	if err != nil {
		t.Fatal(err)
	}
	out := make([]audit.Action, 0, len(entries))
	for _, en := range entries {
		out = append(out, en.Action)
	}
	return out
}

func TestCreate_ComputesTotalsAndAudits(t *testing.T) {
	e := newEnv(t)
	s := sqlitedb.ScopeOf(t, e.fx.A.Estimator)

	dto := e.newQuote(t, s, e.fx.A, true)
	if dto.Status != "BROUILLON" || dto.EstimatorID != e.fx.A.Estimator.ID {
		t.Fatalf("dto = %+v", dto)
	}
	if !dto.TotalTTC.Equal(decimal.RequireFromString("1149.75")) {
		t.Fatalf("total = %s", dto.TotalTTC)
	}
	if got := e.actions(t, e.fx.A.Tenant.ID, dto.ID); len(got) != 1 || got[0] != audit.ActionCreate {
		t.Fatalf("audit = %v", got)
	}

	// a client of another tenant is not visible
	_, err := e.uc.Create(context.Background(), s, CreateQuoteInput{ClientID: e.fx.B.Client.ID, VehicleID: e.fx.B.Vehicle.ID})
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("foreign client: %v", err)
	}
}

func TestTransition_CrossTenantIsNotFound(t *testing.T) {
	e := newEnv(t)
	owner := sqlitedb.ScopeOf(t, e.fx.A.Estimator)
	q := e.newQuote(t, owner, e.fx.A, true)

	for _, u := range []struct {
		name string
		s    *tenancy.Scope
	}{
		{"admin of B", sqlitedb.ScopeOf(t, e.fx.B.Admin)},
		{"manager of B", sqlitedb.ScopeOf(t, e.fx.B.Manager)},
		{"estimator of B", sqlitedb.ScopeOf(t, e.fx.B.Estimator)},
		{"colleague estimator of A", sqlitedb.ScopeOf(t, e.fx.A.Estimator2)},
	} {
		t.Run(u.name, func(t *testing.T) {
			_, err := e.uc.Transition(context.Background(), u.s, q.ID, TransitionInput{Target: "ENVOYE"})
			if !errors.Is(err, errs.ErrNotFound) {
				t.Fatalf("Transition err = %v, want not found", err)
			}
			if _, err := e.uc.Get(context.Background(), u.s, q.ID); !errors.Is(err, errs.ErrNotFound) {
				t.Fatalf("Get err = %v, want not found", err)
			}
			// the public error is indistinguishable from a missing quote
			if errs.Public(err) != errs.ErrNotFound {
				t.Fatalf("public error = %v", errs.Public(err))
			}
		})
	}

	if st := e.status(t, q.ID); st != domain.StatusBrouillon {
		t.Fatalf("status changed to %s", st)
	}
	// the colleague's two probes are security events on A's trail, nothing else moved
	if got := e.actions(t, e.fx.A.Tenant.ID, q.ID); len(got) != 3 || got[0] != audit.ActionCreate || got[1] != audit.ActionAccessDenied {
		t.Fatalf("owner tenant audit = %v", got)
	}
	// each denied probe from B is on B's own trail
	denied := e.actions(t, e.fx.B.Tenant.ID, q.ID)
	if len(denied) != 6 {
		t.Fatalf("tenant B security events = %v", denied)
	}
	for _, a := range denied {
		if a != audit.ActionAccessDenied {
			t.Fatalf("unexpected action %s", a)
		}
	}
}

func TestTransition_IllegalPairsLeaveStatusUnchanged(t *testing.T) {
	e := newEnv(t)
	s := sqlitedb.ScopeOf(t, e.fx.A.Manager)
	all := []domain.Status{
		domain.StatusBrouillon, domain.StatusEnvoye, domain.StatusEnNegociation,
		domain.StatusAccepte, domain.StatusRefuse, domain.StatusEnReparation,
	}

	for _, from := range all {
		for _, to := range all {
			if domain.CanTransition(from, to) {
				continue
			}
			q := e.newQuote(t, s, e.fx.A, true)
			e.forceStatus(t, q.ID, from)

			_, err := e.uc.Transition(context.Background(), s, q.ID, TransitionInput{Target: string(to)})
			var te *errs.TransitionError
			if !errors.As(err, &te) || te.From != string(from) || te.To != string(to) {
				t.Fatalf("%s -> %s: err = %v, want TransitionError", from, to, err)
			}
			if st := e.status(t, q.ID); st != from {
				t.Fatalf("%s -> %s: status is now %s", from, to, st)
			}
			if got := e.actions(t, e.fx.A.Tenant.ID, q.ID); len(got) != 1 {
				t.Fatalf("%s -> %s: audit = %v", from, to, got)
			}
		}
	}
}

func TestTransition_SendRequiresItems(t *testing.T) {
	e := newEnv(t)
	s := sqlitedb.ScopeOf(t, e.fx.A.Estimator)
	q := e.newQuote(t, s, e.fx.A, false)

	if _, err := e.uc.Transition(context.Background(), s, q.ID, TransitionInput{Target: "ENVOYE"}); !errors.Is(err, errs.ErrEmptyQuote) {
		t.Fatalf("err = %v, want ErrEmptyQuote", err)
	}

	if _, err := e.uc.AddItem(context.Background(), s, q.ID, ItemInput{Kind: "LABOR", Description: "Main d'oeuvre", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("85")}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	dto, err := e.uc.Transition(context.Background(), s, q.ID, TransitionInput{Target: "ENVOYE"})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if dto.Status != "ENVOYE" || !dto.Subtotal.Equal(decimal.RequireFromString("170")) {
		t.Fatalf("dto = %+v", dto)
	}
	want := []audit.Action{audit.ActionCreate, audit.ActionUpdate, audit.ActionStatusChange}
	if got := e.actions(t, e.fx.A.Tenant.ID, q.ID); len(got) != len(want) || got[2] != audit.ActionStatusChange {
		t.Fatalf("audit = %v, want %v", got, want)
	}
}

func TestTransition_MarkLost(t *testing.T) {
	e := newEnv(t)
	s := sqlitedb.ScopeOf(t, e.fx.A.Estimator)
	q := e.newQuote(t, s, e.fx.A, true)

	_, err := e.uc.Transition(context.Background(), s, q.ID, TransitionInput{Target: "REFUSE"})
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if st := e.status(t, q.ID); st != domain.StatusBrouillon {
		t.Fatalf("status = %s", st)
	}

	dto, err := e.uc.Transition(context.Background(), s, q.ID, TransitionInput{Target: "REFUSE", LostReason: "COMPETITOR", LostNotes: "Garage voisin"})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if dto.LostReason != "COMPETITOR" || dto.LostAt == nil || dto.LostNotes != "Garage voisin" {
		t.Fatalf("dto = %+v", dto)
	}

	entries, _ := e.log.ListByEntity(context.Background(), e.fx.A.Tenant.ID, "quote", strconv.FormatUint(q.ID, 10))
	var lost []audit.Entry
	for _, en := range entries {
		if en.Action == audit.ActionMarkLost {
			lost = append(lost, en)
		}
	}
	if len(lost) != 1 {
		t.Fatalf("MARK_LOST entries = %d", len(lost))
	}
	if lost[0].Detail["reason"] != "COMPETITOR" || lost[0].Detail["from"] != "BROUILLON" {
		t.Fatalf("detail = %v", lost[0].Detail)
	}
}

func TestTransition_ConcurrentDecisions(t *testing.T) {
	e := newEnv(t)
	s := sqlitedb.ScopeOf(t, e.fx.A.Manager)
	q := e.newQuote(t, s, e.fx.A, true)
	e.forceStatus(t, q.ID, domain.StatusEnNegociation)

	inputs := []TransitionInput{
		{Target: "ACCEPTE"},
		{Target: "REFUSE", LostReason: "PRICE"},
	}
	errsOut := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in TransitionInput) {
			defer wg.Done()
			_, errsOut[i] = e.uc.Transition(context.Background(), s, q.ID, in)
		}(i, in)
	}
	wg.Wait()

	ok := 0
	for _, err := range errsOut {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, errs.ErrInvalidTransition), errors.Is(err, errs.ErrConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("successes = %d, want exactly 1 (%v)", ok, errsOut)
	}
	if st := e.status(t, q.ID); st != domain.StatusAccepte && st != domain.StatusRefuse {
		t.Fatalf("final status = %s", st)
	}
	// CREATE + exactly one decision
	if got := e.actions(t, e.fx.A.Tenant.ID, q.ID); len(got) != 2 {
		t.Fatalf("audit = %v", got)
	}
}

func TestScenario_RepairBeforeAcceptanceThenLost(t *testing.T) {
	e := newEnv(t)
	s := sqlitedb.ScopeOf(t, e.fx.A.Estimator)
	q := e.newQuote(t, s, e.fx.A, true)
	if _, err := e.uc.Transition(context.Background(), s, q.ID, TransitionInput{Target: "ENVOYE"}); err != nil {
		t.Fatal(err)
	}

	_, err := e.uc.Transition(context.Background(), s, q.ID, TransitionInput{Target: "EN_REPARATION"})
	if !errors.Is(err, errs.ErrInvalidTransition) {
		t.Fatalf("err = %v, want InvalidTransition", err)
	}
	if st := e.status(t, q.ID); st != domain.StatusEnvoye {
		t.Fatalf("status = %s", st)
	}

	if _, err := e.uc.Transition(context.Background(), s, q.ID, TransitionInput{Target: "REFUSE", LostReason: "PRICE"}); err != nil {
		t.Fatalf("REFUSE: %v", err)
	}
	got := e.actions(t, e.fx.A.Tenant.ID, q.ID)
	if got[len(got)-1] != audit.ActionMarkLost {
		t.Fatalf("audit = %v", got)
	}
}

func TestAddItem_ClosedQuote(t *testing.T) {
	e := newEnv(t)
	s := sqlitedb.ScopeOf(t, e.fx.A.Admin)
	q := e.newQuote(t, s, e.fx.A, true)
	e.forceStatus(t, q.ID, domain.StatusAccepte)

	_, err := e.uc.AddItem(context.Background(), s, q.ID, ItemInput{Kind: "PAINT", Description: "Vernis", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(40)})
	var ve *errs.ValidationError
	if !errors.As(err, &ve) || ve.Field != "status" {
		t.Fatalf("err = %v, want status ValidationError", err)
	}
}

func TestList_ScopedByRole(t *testing.T) {
	e := newEnv(t)
	est := sqlitedb.ScopeOf(t, e.fx.A.Estimator)
	est2 := sqlitedb.ScopeOf(t, e.fx.A.Estimator2)
	e.newQuote(t, est, e.fx.A, true)
	e.newQuote(t, est2, e.fx.A, true)
	e.newQuote(t, sqlitedb.ScopeOf(t, e.fx.B.Estimator), e.fx.B, true)

	mine, err := e.uc.List(context.Background(), est, ListFilter{})
	if err != nil || len(mine) != 1 || mine[0].EstimatorID != e.fx.A.Estimator.ID {
		t.Fatalf("estimator list = %+v, %v", mine, err)
	}
	shop, _ := e.uc.List(context.Background(), sqlitedb.ScopeOf(t, e.fx.A.Manager), ListFilter{Status: "BROUILLON"})
	if len(shop) != 2 {
		t.Fatalf("manager list = %d", len(shop))
	}
	if _, err := e.uc.List(context.Background(), est, ListFilter{Status: "NOPE"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("bad status filter = %v", err)
	}
}
