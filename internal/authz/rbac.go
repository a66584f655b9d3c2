// Package authz holds the static role to permission table and its evaluator.
package authz

import "strings"

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleManager   Role = "MANAGER"
	RoleEstimator Role = "ESTIMATOR"
)

type Permission string

const (
	QuotesReadAll  Permission = "quotes:read:all"
	QuotesReadOwn  Permission = "quotes:read:own"
	QuotesWriteAll Permission = "quotes:write:all"
	QuotesWriteOwn Permission = "quotes:write:own"
	QuotesDelete   Permission = "quotes:delete"
	ClaimsWriteAll Permission = "claims:write:all"
	ClaimsWriteOwn Permission = "claims:write:own"
	ClientsRead    Permission = "clients:read"
	ClientsWrite   Permission = "clients:write"
	UsersManage    Permission = "users:manage"
	InsurersManage Permission = "insurers:manage"
	ReportsExport  Permission = "reports:export"
	AuditRead      Permission = "audit:read"
	SettingsManage Permission = "settings:manage"
)

const (
	ownSuffix = ":own"
	allSuffix = ":all"
)

// IsOwnScoped reports whether p only grants access to records the principal owns.
func (p Permission) IsOwnScoped() bool { return strings.HasSuffix(string(p), ownSuffix) }

// Table maps a role to the set of permissions it holds. A Table is never mutated
// after construction.
type Table map[Role]map[Permission]struct{}

func grant(perms ...Permission) map[Permission]struct{} {
	out := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		out[p] = struct{}{}
	}
	return out
}

// DefaultTable is the production role table. Adding a role is a table edit only.
func DefaultTable() Table {
	return Table{
		RoleAdmin: grant(
			QuotesReadAll, QuotesReadOwn, QuotesWriteAll, QuotesWriteOwn, QuotesDelete,
			ClaimsWriteAll, ClaimsWriteOwn, ClientsRead, ClientsWrite,
			UsersManage, InsurersManage, ReportsExport, AuditRead, SettingsManage,
		),
		RoleManager: grant(
			QuotesReadAll, QuotesReadOwn, QuotesWriteAll, QuotesWriteOwn, QuotesDelete,
			ClaimsWriteAll, ClaimsWriteOwn, ClientsRead, ClientsWrite,
			InsurersManage, ReportsExport, AuditRead,
		),
		RoleEstimator: grant(
			QuotesReadOwn, QuotesWriteOwn, ClaimsWriteOwn, ClientsRead, ClientsWrite,
		),
	}
}

// Evaluator answers (role, permission) questions against an immutable Table.
type Evaluator struct{ table Table }

// NewEvaluator copies t so later edits to the caller's map cannot leak in.
func NewEvaluator(t Table) *Evaluator {
	cp := make(Table, len(t))
	for role, perms := range t {
		inner := make(map[Permission]struct{}, len(perms))
		for p := range perms {
			inner[p] = struct{}{}
		}
		cp[role] = inner
	}
	return &Evaluator{table: cp}
}

// Evaluate is pure and safe for concurrent use. Unknown roles hold nothing.
func (e *Evaluator) Evaluate(role Role, perm Permission) bool {
	perms, ok := e.table[role]
	if !ok {
		return false
	}
	_, ok = perms[perm]
	return ok
}

// Resolve picks the widest grant for a resource/action pair such as ("quotes", "write").
// ok is false when the role holds neither the ":all" nor the ":own" flavour.
func (e *Evaluator) Resolve(role Role, resource, action string) (perm Permission, ok bool) {
	base := resource + ":" + action
	if all := Permission(base + allSuffix); e.Evaluate(role, all) {
		return all, true
	}
	if own := Permission(base + ownSuffix); e.Evaluate(role, own) {
		return own, true
	}
	return "", false
}

// ParseRole validates a stored or claimed role string.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleManager, RoleEstimator:
		return r, true
	}
	return "", false
}
