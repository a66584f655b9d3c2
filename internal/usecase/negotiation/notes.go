package negotiation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type noteKind string

const (
	noteInitial   noteKind = "initial"
	noteChanged   noteKind = "changed"
	noteConfirmed noteKind = "confirmed"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) + " $" }

// agreementNote writes the journal line for a new agreed price. previous is the
// price on file before this call, if any.
func agreementNote(previous decimal.NullDecimal, agreed, total, diff decimal.Decimal, userNotes string) (noteKind, string) {
	var (
		kind noteKind
		text string
	)
	switch {
	case !previous.Valid:
		kind = noteInitial
		text = fmt.Sprintf("Prix convenu avec l'assureur : %s (total du devis : %s, écart : %s)",
			money(agreed), money(total), money(diff))
	case !previous.Decimal.Equal(agreed):
		kind = noteChanged
		text = fmt.Sprintf("Prix convenu modifié : %s → %s (total du devis : %s, écart : %s)",
			money(previous.Decimal), money(agreed), money(total), money(diff))
	default:
		kind = noteConfirmed
		text = fmt.Sprintf("Prix convenu confirmé : %s (total du devis : %s)", money(agreed), money(total))
	}
	if n := strings.TrimSpace(userNotes); n != "" {
		text += "\n" + n
	}
	return kind, text
}
