package quote

import (
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/quote"
)

type CreateQuoteInput struct {
	ClientID  uint64      `json:"client_id" validate:"required"`
	VehicleID uint64      `json:"vehicle_id" validate:"required"`
	Notes     string      `json:"notes" validate:"max=2000"`
	Items     []ItemInput `json:"items" validate:"dive"`
}

type ItemInput struct {
	Kind        string          `json:"kind" validate:"required,oneof=PART LABOR PAINT OTHER"`
	Description string          `json:"description" validate:"required,max=255"`
	Quantity    decimal.Decimal `json:"quantity" validate:"dec2"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"dec2"`
}

// TransitionInput asks for a status change. LostReason is mandatory when Target is
// REFUSE and ignored otherwise.
type TransitionInput struct {
	Target     string `json:"target" validate:"required"`
	LostReason string `json:"lost_reason"`
	LostNotes  string `json:"lost_notes" validate:"max=2000"`
}

type ListFilter struct {
	Status string
	Limit  int
}

type ItemDTO struct {
	ID          uint64          `json:"id"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type QuoteDTO struct {
	ID           uint64          `json:"id"`
	Number       string          `json:"number"`
	EstimatorID  uint64          `json:"estimator_id"`
	ClientID     uint64          `json:"client_id"`
	VehicleID    uint64          `json:"vehicle_id"`
	Status       string          `json:"status"`
	NextStatuses []string        `json:"next_statuses"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxTPS       decimal.Decimal `json:"tax_tps"`
	TaxTVQ       decimal.Decimal `json:"tax_tvq"`
	TotalTTC     decimal.Decimal `json:"total_ttc"`
	Notes        string          `json:"notes,omitempty"`
	LostReason   string          `json:"lost_reason,omitempty"`
	LostAt       *time.Time      `json:"lost_at,omitempty"`
	LostNotes    string          `json:"lost_notes,omitempty"`
	Items        []ItemDTO       `json:"items,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toDTO(q *domain.Quote) *QuoteDTO {
	dto := &QuoteDTO{
		ID:          q.ID,
		Number:      q.Number,
		EstimatorID: q.EstimatorID,
		ClientID:    q.ClientID,
		VehicleID:   q.VehicleID,
		Status:      string(q.Status),
		Subtotal:    q.Subtotal,
		TaxTPS:      q.TaxTPS,
		TaxTVQ:      q.TaxTVQ,
		TotalTTC:    q.TotalTTC,
		Notes:       q.Notes,
		LostAt:      q.LostAt,
		LostNotes:   q.LostNotes,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
	if q.LostReason != nil {
		dto.LostReason = string(*q.LostReason)
	}
	dto.NextStatuses = make([]string, 0, 2)
	for _, s := range domain.Targets(q.Status) {
		dto.NextStatuses = append(dto.NextStatuses, string(s))
	}
	for _, it := range q.Items {
		dto.Items = append(dto.Items, ItemDTO{
			ID:          it.ID,
			Kind:        string(it.Kind),
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	return dto
}
