package quote

import (
	"testing"

	"github.com/shopspring/decimal"
)

var allStatuses = []Status{
	StatusBrouillon, StatusEnvoye, StatusEnNegociation,
	StatusAccepte, StatusRefuse, StatusEnReparation,
}

func TestCanTransition_Table(t *testing.T) {
	legal := map[[2]Status]bool{
		{StatusBrouillon, StatusEnvoye}:      true,
		{StatusBrouillon, StatusRefuse}:      true,
		{StatusEnvoye, StatusEnNegociation}:  true,
		{StatusEnvoye, StatusRefuse}:         true,
		{StatusEnNegociation, StatusAccepte}: true,
		{StatusEnNegociation, StatusRefuse}:  true,
		{StatusAccepte, StatusEnReparation}:  true,
	}

	// every ordered pair, including reflexive ones
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := legal[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range allStatuses {
		want := s == StatusRefuse || s == StatusEnReparation
		if got := IsTerminal(s); got != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", s, got, want)
		}
	}
	if IsTerminal(Status("ARCHIVE")) {
		t.Error("unknown status must not be terminal")
	}
}

func TestTargets_ReturnsCopy(t *testing.T) {
	got := Targets(StatusBrouillon)
	got[0] = StatusEnReparation
	if CanTransition(StatusBrouillon, StatusEnReparation) {
		t.Fatal("mutating Targets result leaked into the table")
	}
}

func TestParseStatusAndReason(t *testing.T) {
	if _, ok := ParseStatus("ENVOYE"); !ok {
		t.Error("ENVOYE should parse")
	}
	if _, ok := ParseStatus("envoye"); ok {
		t.Error("status parsing is case-sensitive")
	}
	if _, ok := ParseLossReason("COMPETITOR"); !ok {
		t.Error("COMPETITOR should parse")
	}
	if _, ok := ParseLossReason("TOO_EXPENSIVE"); ok {
		t.Error("unknown reason should not parse")
	}
}

func TestRecompute(t *testing.T) {
	q := &Quote{Items: []Item{
		{Kind: ItemPart, Description: "Pare-chocs", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("600")},
		{Kind: ItemLabor, Description: "Main d'oeuvre", Quantity: decimal.RequireFromString("4"), UnitPrice: decimal.RequireFromString("100")},
	}}
	q.Recompute()

	checks := map[string][2]decimal.Decimal{
		"subtotal": {q.Subtotal, decimal.RequireFromString("1000")},
		"tps":      {q.TaxTPS, decimal.RequireFromString("50")},
		"tvq":      {q.TaxTVQ, decimal.RequireFromString("99.75")},
		"total":    {q.TotalTTC, decimal.RequireFromString("1149.75")},
		"line 2":   {q.Items[1].LineTotal, decimal.RequireFromString("400")},
	}
	for name, c := range checks {
		if !c[0].Equal(c[1]) {
			t.Errorf("%s = %s, want %s", name, c[0], c[1])
		}
	}
}

func TestEditable(t *testing.T) {
	for _, s := range allStatuses {
		q := Quote{Status: s}
		want := s == StatusBrouillon || s == StatusEnvoye || s == StatusEnNegociation
		if q.Editable() != want {
			t.Errorf("Editable(%s) = %v, want %v", s, q.Editable(), want)
		}
	}
}
