package audit

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
)

type Action string

const (
	ActionCreate         Action = "CREATE"
	ActionUpdate         Action = "UPDATE"
	ActionStatusChange   Action = "STATUS_CHANGE"
	ActionMarkLost       Action = "MARK_LOST"
	ActionSetAgreedPrice Action = "SET_AGREED_PRICE"
	ActionLogin          Action = "LOGIN"
	ActionLoginFailed    Action = "LOGIN_FAILED"
	ActionPasswordChange Action = "PASSWORD_CHANGE"
	ActionAccessDenied   Action = "ACCESS_DENIED"
)

// Entry is one immutable audit row. ID is the store sequence; within a tenant, entries
// are ordered by (CreatedAt, ID).
type Entry struct {
	ID          uint64            `gorm:"primaryKey;column:id" json:"id"`
	EventID     string            `gorm:"column:event_id;size:36;not null;uniqueIndex:ux_audit_event" json:"event_id"`
	TenantID    uint64            `gorm:"column:tenant_id;not null;index:ix_audit_tenant_created,priority:1" json:"tenant_id"`
	ActorUserID *uint64           `gorm:"column:actor_user_id" json:"actor_user_id,omitempty"`
	Action      Action            `gorm:"size:32;not null" json:"action"`
	EntityType  string            `gorm:"column:entity_type;size:32;not null" json:"entity_type"`
	EntityID    string            `gorm:"column:entity_id;size:64;not null" json:"entity_id"`
	Detail      datatypes.JSONMap `gorm:"column:detail" json:"detail"`
	CreatedAt   time.Time         `gorm:"not null;index:ix_audit_tenant_created,priority:2" json:"created_at"`
}

func (Entry) TableName() string { return "audit_logs" }

func (*Entry) BeforeUpdate(*gorm.DB) error { return errs.ErrImmutable }
func (*Entry) BeforeDelete(*gorm.DB) error { return errs.ErrImmutable }
