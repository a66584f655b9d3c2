package negotiation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/claim"
)

type OpenClaimInput struct {
	InsurerName      string `json:"insurer_name" validate:"required,max=255"`
	InsurerReference string `json:"insurer_reference" validate:"max=64"`
}

type AgreedPriceInput struct {
	AgreedPrice decimal.Decimal `json:"agreed_price" validate:"dec2"`
	Notes       string          `json:"notes" validate:"max=2000"`
}

type NoteDTO struct {
	ID        uint64    `json:"id"`
	Content   string    `json:"content"`
	AuthorID  uint64    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ClaimDTO carries the claim and, once a price is agreed, the derived gap with the
// quote total. Difference and Percent are never stored.
type ClaimDTO struct {
	ID               uint64           `json:"id"`
	QuoteID          uint64           `json:"quote_id"`
	InsurerName      string           `json:"insurer_name"`
	InsurerReference string           `json:"insurer_reference,omitempty"`
	Status           string           `json:"status"`
	QuoteTotal       decimal.Decimal  `json:"quote_total"`
	AgreedPrice      *decimal.Decimal `json:"agreed_price"`
	AgreedAt         *time.Time       `json:"agreed_at,omitempty"`
	Difference       *decimal.Decimal `json:"difference,omitempty"`
	Percent          *decimal.Decimal `json:"difference_percent,omitempty"`
	Notes            []NoteDTO        `json:"notes,omitempty"`
}

func toDTO(c *claim.Claim, quoteTotal decimal.Decimal, notes []claim.Note) *ClaimDTO {
	dto := &ClaimDTO{
		ID:               c.ID,
		QuoteID:          c.QuoteID,
		InsurerName:      c.InsurerName,
		InsurerReference: c.InsurerReference,
		Status:           string(c.Status),
		QuoteTotal:       quoteTotal,
		AgreedAt:         c.AgreedAt,
	}
	if c.AgreedPrice.Valid {
		agreed := c.AgreedPrice.Decimal
		diff, pct := claim.Difference(agreed, quoteTotal)
		dto.AgreedPrice, dto.Difference, dto.Percent = &agreed, &diff, &pct
	}
	for _, n := range notes {
		dto.Notes = append(dto.Notes, NoteDTO{ID: n.ID, Content: n.Content, AuthorID: n.AuthorID, CreatedAt: n.CreatedAt})
	}
	return dto
}
