package quote

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/audittrail"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/audit"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/client"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
	domain "github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/quote"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/uow"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/infrastructure/observability"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/usecase/guard"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/pkg/id"
)

var tracer = otel.Tracer("usecase/quote")

const (
	entityQuote  = "quote"
	defaultLimit = 50
	maxLimit     = 200
)

type Usecase struct {
	quotes  domain.Repository
	clients client.Repository
	uow     uow.UnitOfWork
	guard   *guard.Guard
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

func NewUsecase(quotes domain.Repository, clients client.Repository, tx uow.UnitOfWork, g *guard.Guard, logger *zap.Logger, m *observability.Metrics) *Usecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Usecase{
		quotes:  quotes,
		clients: clients,
		uow:     tx,
		guard:   g,
		logger:  logger,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a BROUILLON quote owned by the caller.
func (u *Usecase) Create(ctx context.Context, s *tenancy.Scope, in CreateQuoteInput) (*QuoteDTO, error) {
	ctx, span := tracer.Start(ctx, "Quote.Create")
	defer span.End()

	if _, err := s.Quotes("write"); err != nil {
		return nil, err
	}
	if in.ClientID == 0 {
		return nil, errs.Invalid("client_id", "is required")
	}
	if in.VehicleID == 0 {
		return nil, errs.Invalid("vehicle_id", "is required")
	}
	items := make([]domain.Item, 0, len(in.Items))
	for i, it := range in.Items {
		item, err := newItem(fmt.Sprintf("items[%d]", i), it)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	c, err := u.clients.GetClient(ctx, s.TenantID(), in.ClientID)
	if err != nil {
		return nil, fmt.Errorf("client %d: %w", in.ClientID, err)
	}
	if _, err := u.clients.GetVehicle(ctx, c.ID, in.VehicleID); err != nil {
		return nil, fmt.Errorf("vehicle %d: %w", in.VehicleID, err)
	}

	q := &domain.Quote{
		Number:      id.QuoteNumber(u.now()),
		EstimatorID: s.UserID(),
		ClientID:    c.ID,
		VehicleID:   in.VehicleID,
		Status:      domain.StatusBrouillon,
		Notes:       strings.TrimSpace(in.Notes),
		Version:     1,
		Items:       items,
	}
	q.Recompute()

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Quotes.Create(ctx, q); err != nil {
			return err
		}
		_, err := audittrail.New(r.Audit).Record(ctx, audittrail.Record{
			TenantID:    s.TenantID(),
			ActorUserID: audittrail.Actor(s.UserID()),
			Action:      audit.ActionCreate,
			EntityType:  entityQuote,
			EntityID:    strconv.FormatUint(q.ID, 10),
			Detail: map[string]any{
				"number":    q.Number,
				"status":    string(q.Status),
				"client_id": q.ClientID,
				"total_ttc": q.TotalTTC.StringFixed(2),
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return toDTO(q), nil
}

func (u *Usecase) Get(ctx context.Context, s *tenancy.Scope, quoteID uint64) (*QuoteDTO, error) {
	ctx, span := tracer.Start(ctx, "Quote.Get")
	defer span.End()

	f, err := s.Quotes("read")
	if err != nil {
		return nil, u.guard.Check(ctx, s, f, entityQuote, quoteID, "read", err)
	}
	q, err := u.quotes.Get(ctx, f, quoteID)
	if err != nil {
		return nil, u.guard.Check(ctx, s, f, entityQuote, quoteID, "read", err)
	}
	return toDTO(q), nil
}

func (u *Usecase) List(ctx context.Context, s *tenancy.Scope, in ListFilter) ([]QuoteDTO, error) {
	ctx, span := tracer.Start(ctx, "Quote.List")
	defer span.End()

	f, err := s.Quotes("read")
	if err != nil {
		return nil, err
	}
	var status domain.Status
	if in.Status != "" {
		st, ok := domain.ParseStatus(in.Status)
		if !ok {
			return nil, errs.Invalid("status", "unknown status")
		}
		status = st
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rows, err := u.quotes.List(ctx, f, status, limit)
	if err != nil {
		return nil, err
	}
	out := make([]QuoteDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out, nil
}

// AddItem appends a line item and recomputes the totals while the quote is still
// open for edits.
func (u *Usecase) AddItem(ctx context.Context, s *tenancy.Scope, quoteID uint64, in ItemInput) (*QuoteDTO, error) {
	ctx, span := tracer.Start(ctx, "Quote.AddItem")
	defer span.End()

	item, err := newItem("item", in)
	if err != nil {
		return nil, err
	}
	f, err := s.Quotes("write")
	if err != nil {
		return nil, u.guard.Check(ctx, s, f, entityQuote, quoteID, "add_item", err)
	}

	var out *QuoteDTO
	err = u.uow.WithinQuoteTx(ctx, f, quoteID, func(r uow.Repos, q *domain.Quote) error {
		if !q.Editable() {
			return errs.Invalid("status", fmt.Sprintf("quote is %s and can no longer be edited", q.Status))
		}
		items, err := r.Quotes.ListItems(ctx, q.ID)
		if err != nil {
			return err
		}
		item.QuoteID = q.ID
		q.Items = append(items, item)
		q.Recompute()

		added := &q.Items[len(q.Items)-1]
		if err := r.Quotes.AddItem(ctx, added); err != nil {
			return err
		}
		if err := r.Quotes.UpdateTotals(ctx, q); err != nil {
			return err
		}
		_, err = audittrail.New(r.Audit).Record(ctx, audittrail.Record{
			TenantID:    s.TenantID(),
			ActorUserID: audittrail.Actor(s.UserID()),
			Action:      audit.ActionUpdate,
			EntityType:  entityQuote,
			EntityID:    strconv.FormatUint(q.ID, 10),
			Detail: map[string]any{
				"item":       added.Description,
				"kind":       string(added.Kind),
				"line_total": added.LineTotal.StringFixed(2),
				"total_ttc":  q.TotalTTC.StringFixed(2),
			},
		})
		if err != nil {
			return err
		}
		out = toDTO(q)
		return nil
	})
	if err != nil {
		return nil, u.guard.Check(ctx, s, f, entityQuote, quoteID, "add_item", err)
	}
	return out, nil
}

// Transition moves a quote to in.Target. The legality check, the preconditions, the
// conditional write and the audit entry all happen in one transaction with the quote
// row locked.
func (u *Usecase) Transition(ctx context.Context, s *tenancy.Scope, quoteID uint64, in TransitionInput) (*QuoteDTO, error) {
	ctx, span := tracer.Start(ctx, "Quote.Transition")
	defer span.End()
	span.SetAttributes(attribute.Int64("quote.id", int64(quoteID)), attribute.String("quote.target", in.Target))

	target, ok := domain.ParseStatus(strings.TrimSpace(in.Target))
	if !ok {
		return nil, errs.Invalid("target", "unknown status")
	}

	f, err := s.Quotes("write")
	if err != nil {
		return nil, u.guard.Check(ctx, s, f, entityQuote, quoteID, "transition", err)
	}

	var (
		out  *QuoteDTO
		from domain.Status
	)
	err = u.uow.WithinQuoteTx(ctx, f, quoteID, func(r uow.Repos, q *domain.Quote) error {
		from = q.Status
		if !domain.CanTransition(q.Status, target) {
			return &errs.TransitionError{From: string(q.Status), To: string(target)}
		}

		items, err := r.Quotes.ListItems(ctx, q.ID)
		if err != nil {
			return err
		}
		q.Items = items

		action := audit.ActionStatusChange
		detail := map[string]any{"from": string(from), "to": string(target)}
		switch target {
		case domain.StatusEnvoye:
			if len(items) == 0 {
				return errs.ErrEmptyQuote
			}
		case domain.StatusRefuse:
			reason, ok := domain.ParseLossReason(strings.TrimSpace(in.LostReason))
			if !ok {
				return errs.Invalid("lost_reason", "required when refusing: PRICE, DELAY, COMPETITOR, NO_RESPONSE or OTHER")
			}
			now := u.now()
			q.LostReason = &reason
			q.LostAt = &now
			q.LostNotes = strings.TrimSpace(in.LostNotes)
			action = audit.ActionMarkLost
			detail["reason"] = string(reason)
			detail["notes"] = q.LostNotes
		}

		q.Status = target
		if err := r.Quotes.UpdateStatus(ctx, q); err != nil {
			return err
		}
		if _, err := audittrail.New(r.Audit).Record(ctx, audittrail.Record{
			TenantID:    s.TenantID(),
			ActorUserID: audittrail.Actor(s.UserID()),
			Action:      action,
			EntityType:  entityQuote,
			EntityID:    strconv.FormatUint(q.ID, 10),
			Detail:      detail,
		}); err != nil {
			return err
		}
		out = toDTO(q)
		return nil
	})

	u.observeTransition(quoteID, from, target, err)
	if err != nil {
		return nil, u.guard.Check(ctx, s, f, entityQuote, quoteID, "transition", err)
	}
	return out, nil
}

func (u *Usecase) observeTransition(quoteID uint64, from, to domain.Status, err error) {
	fromLabel := string(from)
	if fromLabel == "" {
		fromLabel = "unknown"
	}
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrInvalidTransition):
		outcome = "invalid"
		u.logger.Info("transition rejected", zap.Uint64("quote_id", quoteID), zap.Error(err))
	case errors.Is(err, errs.ErrConflict):
		outcome = "conflict"
		u.logger.Info("transition lost a race", zap.Uint64("quote_id", quoteID), zap.String("to", string(to)))
	case errors.Is(err, errs.ErrEmptyQuote), errors.Is(err, errs.ErrNotFound):
		outcome = "rejected"
	default:
		outcome = "error"
		u.logger.Error("transition failed", zap.Uint64("quote_id", quoteID), zap.Error(err))
	}
	u.metrics.IncrTransition(fromLabel, string(to), outcome)
}

func newItem(field string, in ItemInput) (domain.Item, error) {
	kind, ok := domain.ParseItemKind(strings.TrimSpace(in.Kind))
	if !ok {
		return domain.Item{}, errs.Invalid(field+".kind", "must be PART, LABOR, PAINT or OTHER")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return domain.Item{}, errs.Invalid(field+".description", "is required")
	}
	if !in.Quantity.IsPositive() {
		return domain.Item{}, errs.Invalid(field+".quantity", "must be greater than 0")
	}
	if in.UnitPrice.IsNegative() {
		return domain.Item{}, errs.Invalid(field+".unit_price", "must not be negative")
	}
	return domain.Item{
		Kind:        kind,
		Description: desc,
		Quantity:    in.Quantity.Round(2),
		UnitPrice:   in.UnitPrice.Round(2),
	}, nil
}
