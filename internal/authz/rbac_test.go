package authz

import "testing"

func TestEvaluate_DefaultTable(t *testing.T) {
	ev := NewEvaluator(DefaultTable())

	tests := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleAdmin, UsersManage, true},
		{RoleAdmin, QuotesWriteAll, true},
		{RoleManager, QuotesWriteAll, true},
		{RoleManager, UsersManage, false},
		{RoleManager, SettingsManage, false},
		{RoleEstimator, QuotesWriteOwn, true},
		{RoleEstimator, QuotesWriteAll, false},
		{RoleEstimator, QuotesReadAll, false},
		{RoleEstimator, QuotesDelete, false},
		{RoleEstimator, ReportsExport, false},
		{Role("INTERN"), QuotesReadOwn, false},
	}
	for _, tt := range tests {
		if got := ev.Evaluate(tt.role, tt.perm); got != tt.want {
			t.Errorf("Evaluate(%s, %s) = %v, want %v", tt.role, tt.perm, got, tt.want)
		}
	}
}

func TestEstimatorOnlyHoldsOwnScopedRecordPermissions(t *testing.T) {
	for p := range DefaultTable()[RoleEstimator] {
		switch p {
		case ClientsRead, ClientsWrite:
			continue
		}
		if !p.IsOwnScoped() {
			t.Errorf("estimator holds non-own permission %s", p)
		}
	}
}

func TestResolve(t *testing.T) {
	ev := NewEvaluator(DefaultTable())

	if p, ok := ev.Resolve(RoleManager, "quotes", "write"); !ok || p != QuotesWriteAll {
		t.Fatalf("manager quotes write = %q,%v", p, ok)
	}
	if p, ok := ev.Resolve(RoleEstimator, "quotes", "read"); !ok || p != QuotesReadOwn {
		t.Fatalf("estimator quotes read = %q,%v", p, ok)
	}
	if p, ok := ev.Resolve(RoleEstimator, "claims", "write"); !ok || !p.IsOwnScoped() {
		t.Fatalf("estimator claims write = %q,%v", p, ok)
	}
	if _, ok := ev.Resolve(RoleEstimator, "users", "manage"); ok {
		t.Fatal("estimator must not resolve users:manage")
	}
}

func TestNewEvaluator_CopiesTable(t *testing.T) {
	tbl := DefaultTable()
	ev := NewEvaluator(tbl)
	tbl[RoleEstimator][UsersManage] = struct{}{}

	if ev.Evaluate(RoleEstimator, UsersManage) {
		t.Fatal("mutating the source table must not change the evaluator")
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole(" manager "); !ok || r != RoleManager {
		t.Fatalf("ParseRole(manager) = %q,%v", r, ok)
	}
	if _, ok := ParseRole("root"); ok {
		t.Fatal("ParseRole(root) should fail")
	}
}
