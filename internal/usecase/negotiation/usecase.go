package negotiation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/audittrail"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/audit"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/claim"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/quote"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/uow"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/infrastructure/observability"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/usecase/guard"
)

var tracer = otel.Tracer("usecase/negotiation")

const entityClaim = "claim"

// amount keeps audit money exact while serializing it as a JSON number.
func amount(d decimal.Decimal) json.Number { return json.Number(d.StringFixed(2)) }

type Usecase struct {
	quotes  quote.Repository
	claims  claim.Repository
	uow     uow.UnitOfWork
	guard   *guard.Guard
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

func NewUsecase(quotes quote.Repository, claims claim.Repository, tx uow.UnitOfWork, g *guard.Guard, logger *zap.Logger, m *observability.Metrics) *Usecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Usecase{
		quotes:  quotes,
		claims:  claims,
		uow:     tx,
		guard:   g,
		logger:  logger,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// OpenClaim attaches an insurer claim to a quote. A quote has at most one claim.
func (u *Usecase) OpenClaim(ctx context.Context, s *tenancy.Scope, quoteID uint64, in OpenClaimInput) (*ClaimDTO, error) {
	ctx, span := tracer.Start(ctx, "Negotiation.OpenClaim")
	defer span.End()

	name := strings.TrimSpace(in.InsurerName)
	if name == "" {
		return nil, errs.Invalid("insurer_name", "is required")
	}
	f, err := s.Claims()
	if err != nil {
		return nil, u.guard.Check(ctx, s, f, entityClaim, quoteID, "open_claim", err)
	}

	var out *ClaimDTO
	err = u.uow.WithinQuoteTx(ctx, f, quoteID, func(r uow.Repos, q *quote.Quote) error {
		_, err := r.Claims.GetByQuoteID(ctx, f, q.ID)
		switch {
		case err == nil:
			return fmt.Errorf("quote %d already has a claim: %w", q.ID, errs.ErrConflict)
		case !errors.Is(err, errs.ErrNotFound):
			return err
		}

		c := &claim.Claim{
			QuoteID:          q.ID,
			InsurerName:      name,
			InsurerReference: strings.TrimSpace(in.InsurerReference),
			Status:           claim.StatusEnAttente,
			Version:          1,
		}
		if err := r.Claims.Create(ctx, c); err != nil {
			return err
		}
		if _, err := audittrail.New(r.Audit).Record(ctx, audittrail.Record{
			TenantID:    s.TenantID(),
			ActorUserID: audittrail.Actor(s.UserID()),
			Action:      audit.ActionCreate,
			EntityType:  entityClaim,
			EntityID:    strconv.FormatUint(c.ID, 10),
			Detail: map[string]any{
				"quote_id":          q.ID,
				"insurer_name":      c.InsurerName,
				"insurer_reference": c.InsurerReference,
			},
		}); err != nil {
			return err
		}
		out = toDTO(c, q.TotalTTC, nil)
		return nil
	})
	if err != nil {
		return nil, u.guard.Check(ctx, s, f, entityClaim, quoteID, "open_claim", err)
	}
	return out, nil
}

// RecordAgreedPrice stores the price agreed with the insurer, approves the claim and
// journals exactly one note. The quote status is left alone.
func (u *Usecase) RecordAgreedPrice(ctx context.Context, s *tenancy.Scope, quoteID uint64, in AgreedPriceInput) (*ClaimDTO, error) {
	ctx, span := tracer.Start(ctx, "Negotiation.RecordAgreedPrice")
	defer span.End()
	span.SetAttributes(attribute.Int64("quote.id", int64(quoteID)))

	if in.AgreedPrice.IsNegative() {
		return nil, errs.Invalid("agreed_price", "must not be negative")
	}
	agreed := in.AgreedPrice.Round(2)

	f, err := s.Claims()
	if err != nil {
		return nil, u.guard.Check(ctx, s, f, entityClaim, quoteID, "set_agreed_price", err)
	}

	var (
		out  *ClaimDTO
		kind noteKind
	)
	err = u.uow.WithinQuoteTx(ctx, f, quoteID, func(r uow.Repos, q *quote.Quote) error {
		c, err := r.Claims.GetByQuoteIDForUpdate(ctx, f, q.ID)
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrNoClaim
		}
		if err != nil {
			return err
		}

		previous := c.AgreedPrice
		diff, _ := claim.Difference(agreed, q.TotalTTC)
		var text string
		kind, text = agreementNote(previous, agreed, q.TotalTTC, diff, in.Notes)

		now := u.now()
		c.AgreedPrice = decimal.NewNullDecimal(agreed)
		c.AgreedAt = &now
		c.Status = claim.StatusApprouvee
		if err := r.Claims.SaveAgreement(ctx, c); err != nil {
			return err
		}

		note := claim.Note{ClaimID: c.ID, Content: text, AuthorID: s.UserID(), CreatedAt: now}
		if err := r.Claims.AppendNote(ctx, &note); err != nil {
			return err
		}

		var prev any
		if previous.Valid {
			prev = amount(previous.Decimal)
		}
		if _, err := audittrail.New(r.Audit).Record(ctx, audittrail.Record{
			TenantID:    s.TenantID(),
			ActorUserID: audittrail.Actor(s.UserID()),
			Action:      audit.ActionSetAgreedPrice,
			EntityType:  entityClaim,
			EntityID:    strconv.FormatUint(c.ID, 10),
			Detail: map[string]any{
				"quote_id":       q.ID,
				"original_total": amount(q.TotalTTC),
				"agreed_price":   amount(agreed),
				"previous_price": prev,
				"difference":     amount(diff),
			},
		}); err != nil {
			return err
		}

		notes, err := r.Claims.ListNotes(ctx, c.ID)
		if err != nil {
			return err
		}
		out = toDTO(c, q.TotalTTC, notes)
		return nil
	})
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			u.logger.Info("agreed price lost a race", zap.Uint64("quote_id", quoteID))
		}
		return nil, u.guard.Check(ctx, s, f, entityClaim, quoteID, "set_agreed_price", err)
	}
	u.metrics.IncrAgreedPrice(string(kind))
	return out, nil
}

// History returns the claim of a quote with its ordered negotiation journal.
func (u *Usecase) History(ctx context.Context, s *tenancy.Scope, quoteID uint64) (*ClaimDTO, error) {
	ctx, span := tracer.Start(ctx, "Negotiation.History")
	defer span.End()

	f, err := s.Quotes("read")
	if err != nil {
		return nil, u.guard.Check(ctx, s, f, entityClaim, quoteID, "read", err)
	}
	q, err := u.quotes.Get(ctx, f, quoteID)
	if err != nil {
		return nil, u.guard.Check(ctx, s, f, entityClaim, quoteID, "read", err)
	}
	c, err := u.claims.GetByQuoteID(ctx, f, q.ID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrNoClaim
	}
	if err != nil {
		return nil, err
	}
	notes, err := u.claims.ListNotes(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return toDTO(c, q.TotalTTC, notes), nil
}
