package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/audittrail"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/audit"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/tenant"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/uow"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/user"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/infrastructure/observability"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
)

var tracer = otel.Tracer("usecase/auth")

const (
	entityUser        = "user"
	minPasswordLength = 8
	// bcrypt ignores anything past 72 bytes
	maxPasswordLength = 72
)

type SessionIssuer interface {
	Issue(u *user.User) (token string, expiresAt time.Time, err error)
}

type Usecase struct {
	tenants  tenant.Repository
	users    user.Repository
	uow      uow.UnitOfWork
	sessions SessionIssuer
	security *audittrail.Writer
	logger   *zap.Logger
	metrics  *observability.Metrics
	cost     int
	now      func() time.Time
}

// NewUsecase takes the root audit writer for LOGIN_FAILED events. cost is the bcrypt
// cost for new hashes; zero means bcrypt.DefaultCost.
func NewUsecase(tenants tenant.Repository, users user.Repository, tx uow.UnitOfWork, sessions SessionIssuer, security *audittrail.Writer, logger *zap.Logger, m *observability.Metrics, cost int) *Usecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Usecase{
		tenants:  tenants,
		users:    users,
		uow:      tx,
		sessions: sessions,
		security: security,
		logger:   logger,
		metrics:  m,
		cost:     cost,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Login authenticates a user of the tenant named by slug. Every failure reads the same
// to the caller.
func (u *Usecase) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Login")
	defer span.End()

	slug := strings.ToLower(strings.TrimSpace(in.TenantSlug))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if slug == "" || email == "" || in.Password == "" {
		return nil, errs.ErrUnauthenticated
	}

	t, err := u.tenants.GetBySlug(ctx, slug)
	if err != nil {
		return nil, u.lookupFailed("tenant", err)
	}
	usr, err := u.users.GetByEmail(ctx, t.ID, email)
	if err != nil {
		return nil, u.lookupFailed("user", err)
	}
	if !usr.Active {
		u.logger.Warn("login: inactive account", zap.Uint64("tenant_id", t.ID), zap.Uint64("user_id", usr.ID))
		return nil, errs.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(in.Password)); err != nil {
		u.loginFailed(ctx, usr)
		return nil, errs.ErrUnauthenticated
	}

	token, exp, err := u.sessions.Issue(usr)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	now := u.now()
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Users.TouchLastLogin(ctx, usr.ID, now); err != nil {
			return err
		}
		_, err := audittrail.New(r.Audit).Record(ctx, audittrail.Record{
			TenantID:    usr.TenantID,
			ActorUserID: audittrail.Actor(usr.ID),
			Action:      audit.ActionLogin,
			EntityType:  entityUser,
			EntityID:    strconv.FormatUint(usr.ID, 10),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	usr.LastLoginAt = &now

	u.logger.Info("user logged in", zap.Uint64("tenant_id", usr.TenantID), zap.Uint64("user_id", usr.ID))
	return &LoginResult{Token: token, ExpiresAt: exp, User: usr}, nil
}

func (u *Usecase) lookupFailed(what string, err error) error {
	if errors.Is(err, errs.ErrNotFound) {
		return errs.ErrUnauthenticated
	}
	return fmt.Errorf("login: load %s: %w", what, err)
}

func (u *Usecase) loginFailed(ctx context.Context, usr *user.User) {
	u.logger.Warn("login: wrong password", zap.Uint64("tenant_id", usr.TenantID), zap.Uint64("user_id", usr.ID))
	u.metrics.IncrSecurityEvent(string(audit.ActionLoginFailed))
	if u.security == nil {
		return
	}
	if _, err := u.security.Record(ctx, audittrail.Record{
		TenantID:   usr.TenantID,
		Action:     audit.ActionLoginFailed,
		EntityType: entityUser,
		EntityID:   strconv.FormatUint(usr.ID, 10),
	}); err != nil {
		u.logger.Error("login: record failed attempt", zap.Error(err))
	}
}

// ChangePassword replaces the caller's own password.
func (u *Usecase) ChangePassword(ctx context.Context, s *tenancy.Scope, in ChangePasswordInput) error {
	ctx, span := tracer.Start(ctx, "Auth.ChangePassword")
	defer span.End()

	if s == nil || s.UserID() == 0 {
		return errs.ErrUnauthenticated
	}
	if len(in.New) < minPasswordLength {
		return errs.Invalid("new_password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if len(in.New) > maxPasswordLength {
		return errs.Invalid("new_password", fmt.Sprintf("must be at most %d bytes", maxPasswordLength))
	}

	usr, err := u.users.GetByID(ctx, s.TenantID(), s.UserID())
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return errs.ErrUnauthenticated
	case err != nil:
		return fmt.Errorf("change password: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(in.Current)); err != nil {
		u.logger.Warn("password change: wrong current password", zap.Uint64("user_id", usr.ID))
		return errs.Invalid("current_password", "is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.New), u.cost)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Users.UpdatePasswordHash(ctx, usr.ID, string(hash)); err != nil {
			return err
		}
		_, err := audittrail.New(r.Audit).Record(ctx, audittrail.Record{
			TenantID:    usr.TenantID,
			ActorUserID: audittrail.Actor(usr.ID),
			Action:      audit.ActionPasswordChange,
			EntityType:  entityUser,
			EntityID:    strconv.FormatUint(usr.ID, 10),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	u.logger.Info("password changed", zap.Uint64("user_id", usr.ID))
	return nil
}
