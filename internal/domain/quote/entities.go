package quote

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusBrouillon     Status = "BROUILLON"
	StatusEnvoye        Status = "ENVOYE"
	StatusEnNegociation Status = "EN_NEGOCIATION"
	StatusAccepte       Status = "ACCEPTE"
	StatusRefuse        Status = "REFUSE"
	StatusEnReparation  Status = "EN_REPARATION"
)

type LossReason string

const (
	LossPrice      LossReason = "PRICE"
	LossDelay      LossReason = "DELAY"
	LossCompetitor LossReason = "COMPETITOR"
	LossNoResponse LossReason = "NO_RESPONSE"
	LossOther      LossReason = "OTHER"
)

func ParseLossReason(s string) (LossReason, bool) {
	switch r := LossReason(s); r {
	case LossPrice, LossDelay, LossCompetitor, LossNoResponse, LossOther:
		return r, true
	}
	return "", false
}

type ItemKind string

const (
	ItemPart  ItemKind = "PART"
	ItemLabor ItemKind = "LABOR"
	ItemPaint ItemKind = "PAINT"
	ItemOther ItemKind = "OTHER"
)

func ParseItemKind(s string) (ItemKind, bool) {
	switch k := ItemKind(s); k {
	case ItemPart, ItemLabor, ItemPaint, ItemOther:
		return k, true
	}
	return "", false
}

// Québec sales taxes applied on the subtotal.
var (
	RateTPS = decimal.RequireFromString("0.05")
	RateTVQ = decimal.RequireFromString("0.09975")
)

// Quote belongs to a tenant through its estimator; there is deliberately no tenant
// column. Status is written only by the lifecycle use case.
type Quote struct {
	ID          uint64          `gorm:"primaryKey;column:id" json:"id"`
	Number      string          `gorm:"size:32;not null;uniqueIndex:ux_quotes_number" json:"number"`
	EstimatorID uint64          `gorm:"column:estimator_id;not null;index" json:"estimator_id"`
	ClientID    uint64          `gorm:"column:client_id;not null;index" json:"client_id"`
	VehicleID   uint64          `gorm:"column:vehicle_id" json:"vehicle_id"`
	Status      Status          `gorm:"size:20;not null;index" json:"status"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxTPS      decimal.Decimal `gorm:"column:tax_tps;type:decimal(12,2);not null" json:"tax_tps"`
	TaxTVQ      decimal.Decimal `gorm:"column:tax_tvq;type:decimal(12,2);not null" json:"tax_tvq"`
	TotalTTC    decimal.Decimal `gorm:"column:total_ttc;type:decimal(12,2);not null" json:"total_ttc"`
	Notes       string          `gorm:"type:text" json:"notes"`
	LostReason  *LossReason     `gorm:"column:lost_reason;size:16" json:"lost_reason,omitempty"`
	LostAt      *time.Time      `gorm:"column:lost_at" json:"lost_at,omitempty"`
	LostNotes   string          `gorm:"column:lost_notes;type:text" json:"lost_notes,omitempty"`
	Version     uint64          `gorm:"not null" json:"-"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	Items       []Item          `gorm:"foreignKey:QuoteID" json:"items,omitempty"`
}

func (Quote) TableName() string { return "quotes" }

type Item struct {
	ID          uint64          `gorm:"primaryKey;column:id" json:"id"`
	QuoteID     uint64          `gorm:"column:quote_id;not null;index" json:"quote_id"`
	Kind        ItemKind        `gorm:"size:16;not null" json:"kind"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:decimal(12,2);not null" json:"line_total"`
}

func (Item) TableName() string { return "quote_items" }

func (it *Item) computeLineTotal() {
	it.LineTotal = it.Quantity.Mul(it.UnitPrice).Round(2)
}

// Recompute derives every monetary field from the line items. Totals are never
// user-entered.
func (q *Quote) Recompute() {
	sub := decimal.Zero
	for i := range q.Items {
		q.Items[i].computeLineTotal()
		sub = sub.Add(q.Items[i].LineTotal)
	}
	q.Subtotal = sub.Round(2)
	q.TaxTPS = q.Subtotal.Mul(RateTPS).Round(2)
	q.TaxTVQ = q.Subtotal.Mul(RateTVQ).Round(2)
	q.TotalTTC = q.Subtotal.Add(q.TaxTPS).Add(q.TaxTVQ)
}

// Editable reports whether line items may still be added.
func (q *Quote) Editable() bool {
	switch q.Status {
	case StatusBrouillon, StatusEnvoye, StatusEnNegociation:
		return true
	}
	return false
}

// Ownership is the resolved tenant chain of a quote (quote -> estimator -> tenant).
type Ownership struct {
	TenantID    uint64
	EstimatorID uint64
}
