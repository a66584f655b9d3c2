package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/client"
)

type ClientRepository struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) *ClientRepository { return &ClientRepository{db: db} }

func (r *ClientRepository) GetClient(ctx context.Context, tenantID, clientID uint64) (*client.Client, error) {
	var out client.Client
	res := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, clientID).First(&out)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &out, nil
}

func (r *ClientRepository) GetVehicle(ctx context.Context, clientID, vehicleID uint64) (*client.Vehicle, error) {
	var out client.Vehicle
	res := r.db.WithContext(ctx).Where("client_id = ? AND id = ?", clientID, vehicleID).First(&out)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return &out, nil
}
