package repository

import (
	"context"

	"github.com/polkiloo/heartframe/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create allocates id and primary token and stores the order as pending.
	Create(ctx context.Context, input model.OrderInput) (*model.Order, error)
	// GetByToken resolves an order by its primary or share token.
	GetByToken(ctx context.Context, token string) (*model.Order, error)
	GetByID(ctx context.Context, id string) (*model.Order, error)
	// Update merges patch into the order owning the primary token.
	// Unknown tokens and empty patches are no-ops.
	Update(ctx context.Context, token string, patch model.OrderPatch) error
	// Transition applies patch only while the persisted status equals from.
	Transition(ctx context.Context, token string, from model.OrderStatus, patch model.OrderPatch) (bool, error)
	// EnsureShareToken stores candidate unless a share token exists and returns the effective one.
	EnsureShareToken(ctx context.Context, token, candidate string) (string, error)
	ListByStatus(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error)
}
