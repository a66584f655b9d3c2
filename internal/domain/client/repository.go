package client

import "context"

type Repository interface {
	GetClient(ctx context.Context, tenantID, clientID uint64) (*Client, error)
	GetVehicle(ctx context.Context, clientID, vehicleID uint64) (*Vehicle, error)
}
