package repository

import "context"

// Factory describes access to domain repositories of a storage backend.
type Factory interface {
	Orders() OrderRepository
	HealthCheck(ctx context.Context) error
	Close()
}
