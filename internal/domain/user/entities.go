package user

import (
	"time"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/authz"
)

// User belongs to exactly one tenant. Email is unique within the tenant only.
type User struct {
	ID           uint64     `gorm:"primaryKey;column:id" json:"id"`
	TenantID     uint64     `gorm:"column:tenant_id;not null;uniqueIndex:ux_users_tenant_email,priority:1" json:"tenant_id"`
	Email        string     `gorm:"size:255;not null;uniqueIndex:ux_users_tenant_email,priority:2" json:"email"`
	Name         string     `gorm:"size:255" json:"name"`
	PasswordHash string     `gorm:"column:password_hash;size:100;not null" json:"-"`
	Role         authz.Role `gorm:"size:16;not null" json:"role"`
	Active       bool       `gorm:"not null" json:"active"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }
