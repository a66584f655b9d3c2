// Package tenancy turns a session into a tenant-bound Scope and derives the storage
// filters every read and write has to go through.
package tenancy

import (
	"strconv"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/authz"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
)

// Principal is the resolved identity of a request.
type Principal struct {
	TenantID uint64
	UserID   uint64
	Role     authz.Role
}

// Scope is the only way to obtain storage filters. It can only be built by a Resolver,
// so holding one proves the tenant was taken from a verified session.
type Scope struct {
	principal Principal
	eval      *authz.Evaluator
}

func (s *Scope) Principal() Principal {
	if s == nil {
		return Principal{}
	}
	return s.principal
}

func (s *Scope) TenantID() uint64 { return s.Principal().TenantID }
func (s *Scope) UserID() uint64   { return s.Principal().UserID }

func (s *Scope) Can(perm authz.Permission) bool {
	if s == nil || s.eval == nil {
		return false
	}
	return s.eval.Evaluate(s.principal.Role, perm)
}

// QuoteFilter restricts quote lookups to one tenant and, for own-only grants, to
// the quotes of one estimator.
type QuoteFilter struct {
	TenantID    uint64
	EstimatorID uint64
}

func (f QuoteFilter) OwnOnly() bool { return f.EstimatorID != 0 }

// Quotes returns the filter for a quote action ("read" or "write").
func (s *Scope) Quotes(action string) (QuoteFilter, error) {
	return s.filter("quotes", action)
}

// Claims returns the filter for claim writes. Claim reads go through Quotes("read").
func (s *Scope) Claims() (QuoteFilter, error) {
	return s.filter("claims", "write")
}

func (s *Scope) filter(resource, action string) (QuoteFilter, error) {
	if s == nil || s.eval == nil || s.principal.TenantID == 0 {
		return QuoteFilter{}, errs.ErrUnauthenticated
	}
	perm, ok := s.eval.Resolve(s.principal.Role, resource, action)
	if !ok {
		return QuoteFilter{}, &errs.AccessDeniedError{
			Entity: resource,
			ID:     strconv.FormatUint(s.principal.UserID, 10),
			Reason: "permission",
		}
	}
	f := QuoteFilter{TenantID: s.principal.TenantID}
	if perm.IsOwnScoped() {
		f.EstimatorID = s.principal.UserID
	}
	return f, nil
}
