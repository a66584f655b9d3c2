package tenancy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/authz"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/user"
)

// Session is what a verified token carries.
type Session struct {
	ID        string
	UserID    uint64
	TenantID  uint64
	Role      string
	ExpiresAt time.Time
}

type SessionVerifier interface {
	Verify(token string) (*Session, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, tenantID, userID uint64) (*user.User, error)
}

type Resolver struct {
	sessions SessionVerifier
	users    UserLookup
	eval     *authz.Evaluator
}

func NewResolver(s SessionVerifier, u UserLookup, e *authz.Evaluator) *Resolver {
	return &Resolver{sessions: s, users: u, eval: e}
}

// Resolve verifies the token and reloads the user, so deactivation and role changes
// apply on the next request. The tenant always comes from the session.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Scope, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errs.ErrUnauthenticated
	}
	sess, err := r.sessions.Verify(token)
	if err != nil {
		return nil, errs.ErrUnauthenticated
	}
	if sess.TenantID == 0 || sess.UserID == 0 {
		return nil, errs.ErrUnauthenticated
	}

	u, err := r.users.GetByID(ctx, sess.TenantID, sess.UserID)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return nil, errs.ErrUnauthenticated
	case err != nil:
		return nil, fmt.Errorf("resolve principal: %w", err)
	}
	return r.ScopeFor(u)
}

// ScopeFor builds the scope of a user that was just authenticated by other means.
func (r *Resolver) ScopeFor(u *user.User) (*Scope, error) {
	if u == nil || !u.Active || u.TenantID == 0 {
		return nil, errs.ErrUnauthenticated
	}
	role, ok := authz.ParseRole(string(u.Role))
	if !ok {
		return nil, errs.ErrUnauthenticated
	}
	return &Scope{
		principal: Principal{TenantID: u.TenantID, UserID: u.ID, Role: role},
		eval:      r.eval,
	}, nil
}
