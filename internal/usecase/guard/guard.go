// Package guard classifies failed scoped lookups. A miss on a record that exists
// under another tenant or estimator is a security event, never a plain not-found.
package guard

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/audittrail"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/audit"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/quote"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/infrastructure/observability"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
)

// OwnerProbe is the unscoped existence check. It never feeds data back to the caller.
type OwnerProbe interface {
	Owner(ctx context.Context, id uint64) (*quote.Ownership, error)
}

type Guard struct {
	probe   OwnerProbe
	audit   *audittrail.Writer
	logger  *zap.Logger
	metrics *observability.Metrics
}

// New takes the root audit writer: security events are written outside the failed
// operation's transaction.
func New(p OwnerProbe, w *audittrail.Writer, l *zap.Logger, m *observability.Metrics) *Guard {
	if l == nil {
		l = zap.NewNop()
	}
	return &Guard{probe: p, audit: w, logger: l, metrics: m}
}

// Check inspects err returned by an operation on quote quoteID scoped by f. It returns
// err unchanged unless it is a miss or a denial; in that case it returns either
// ErrNotFound or an *errs.AccessDeniedError (which also matches ErrNotFound).
func (g *Guard) Check(ctx context.Context, s *tenancy.Scope, f tenancy.QuoteFilter, entity string, quoteID uint64, op string, err error) error {
	if err == nil {
		return nil
	}

	var denied *errs.AccessDeniedError
	if errors.As(err, &denied) {
		g.securityEvent(ctx, s, entity, quoteID, op, denied.Reason)
		return err
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return err
	}

	own, perr := g.probe.Owner(ctx, quoteID)
	switch {
	case errors.Is(perr, errs.ErrNotFound):
		return errs.ErrNotFound
	case perr != nil:
		g.logger.Error("owner probe failed", zap.Uint64("quote_id", quoteID), zap.Error(perr))
		return errs.ErrNotFound
	}

	reason := ""
	switch {
	case own.TenantID != f.TenantID:
		reason = "tenant"
	case f.OwnOnly() && own.EstimatorID != f.EstimatorID:
		reason = "ownership"
	default:
		// the quote is visible but the dependent record (claim) is not there
		return errs.ErrNotFound
	}
	g.securityEvent(ctx, s, entity, quoteID, op, reason)
	return &errs.AccessDeniedError{Entity: entity, ID: strconv.FormatUint(quoteID, 10), Reason: reason}
}

func (g *Guard) securityEvent(ctx context.Context, s *tenancy.Scope, entity string, id uint64, op, reason string) {
	p := s.Principal()
	g.logger.Warn("access denied",
		zap.Uint64("tenant_id", p.TenantID),
		zap.Uint64("user_id", p.UserID),
		zap.String("role", string(p.Role)),
		zap.String("entity", entity),
		zap.Uint64("entity_id", id),
		zap.String("op", op),
		zap.String("reason", reason),
	)
	g.metrics.IncrSecurityEvent(string(audit.ActionAccessDenied))

	if g.audit == nil || p.TenantID == 0 {
		return
	}
	// Recorded against the caller's tenant; the owning tenant is never written.
	_, err := g.audit.Record(ctx, audittrail.Record{
		TenantID:    p.TenantID,
		ActorUserID: audittrail.Actor(p.UserID),
		Action:      audit.ActionAccessDenied,
		EntityType:  entity,
		EntityID:    strconv.FormatUint(id, 10),
		Detail:      map[string]any{"op": op, "reason": reason},
	})
	if err != nil {
		g.logger.Error("write security event", zap.Error(err))
	}
}
