package client

import "time"

// Client and Vehicle are maintained by the CRUD screens; the core only reads them to
// check tenant ownership when a quote is opened.
type Client struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"id"`
	TenantID  uint64    `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Client) TableName() string { return "clients" }

type Vehicle struct {
	ID       uint64 `gorm:"primaryKey;column:id" json:"id"`
	ClientID uint64 `gorm:"column:client_id;not null;index" json:"client_id"`
	Make     string `gorm:"size:64" json:"make"`
	Model    string `gorm:"size:64" json:"model"`
	Year     int    `json:"year"`
	VIN      string `gorm:"column:vin;size:17" json:"vin"`
}

func (Vehicle) TableName() string { return "vehicles" }
