package claim

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
)

type Status string

const (
	StatusEnAttente     Status = "EN_ATTENTE"
	StatusEnNegociation Status = "EN_NEGOCIATION"
	StatusApprouvee     Status = "APPROUVEE"
	StatusRefusee       Status = "REFUSEE"
)

// Claim is the insurer file attached to a quote. A quote has at most one.
type Claim struct {
	ID               uint64              `gorm:"primaryKey;column:id" json:"id"`
	QuoteID          uint64              `gorm:"column:quote_id;not null;uniqueIndex:ux_claims_quote" json:"quote_id"`
	InsurerName      string              `gorm:"column:insurer_name;size:255;not null" json:"insurer_name"`
	InsurerReference string              `gorm:"column:insurer_reference;size:64" json:"insurer_reference"`
	Status           Status              `gorm:"size:20;not null" json:"status"`
	AgreedPrice      decimal.NullDecimal `gorm:"column:agreed_price;type:decimal(12,2)" json:"agreed_price"`
	AgreedAt         *time.Time          `gorm:"column:agreed_at" json:"agreed_at,omitempty"`
	Version          uint64              `gorm:"not null" json:"-"`
	CreatedAt        time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Claim) TableName() string { return "claims" }

// Note is one entry of the negotiation journal. Notes are append-only.
type Note struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"id"`
	ClaimID   uint64    `gorm:"column:claim_id;not null;index" json:"claim_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  uint64    `gorm:"column:author_id;not null" json:"author_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Note) TableName() string { return "negotiation_notes" }

func (*Note) BeforeUpdate(*gorm.DB) error { return errs.ErrImmutable }
func (*Note) BeforeDelete(*gorm.DB) error { return errs.ErrImmutable }

var hundred = decimal.NewFromInt(100)

// Difference compares an agreed price with the quote total. percent is rounded to two
// decimals and is zero when the total is zero.
func Difference(agreed, total decimal.Decimal) (diff, percent decimal.Decimal) {
	diff = agreed.Sub(total)
	if total.IsZero() {
		return diff, decimal.Zero
	}
	return diff, diff.Div(total).Mul(hundred).Round(2)
}
