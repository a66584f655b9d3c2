package tenant

import "time"

// Tenant is the isolation boundary: one auto-body shop organisation.
type Tenant struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Slug      string    `gorm:"size:64;not null;uniqueIndex:ux_tenants_slug" json:"slug"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Tenant) TableName() string { return "tenants" }
