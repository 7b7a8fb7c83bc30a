package handlers

import (
	"context"

	"github.com/polkiloo/heartframe/internal/access"
	"github.com/polkiloo/heartframe/internal/domain/model"
)

// GenerationFacade covers order submission, retry and status reads.
type GenerationFacade interface {
	SubmitOrder(ctx context.Context, input model.OrderInput) (*model.Order, error)
	RetryOrder(ctx context.Context, token string) (*model.Order, error)
	OrderStatus(ctx context.Context, token string) (*access.View, error)
}

// DeliveryFacade serves the finalized file.
type DeliveryFacade interface {
	FinalFile(ctx context.Context, token string) (*model.FinalFile, error)
}

// PaymentFacade provides checkout and webhook operations.
type PaymentFacade interface {
	CreatePayment(ctx context.Context, token string, plan model.PricePlan) (string, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// HealthFacade reports storage availability.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// HeartFrameFacade aggregates the full set of operations used across handlers.
type HeartFrameFacade interface {
	GenerationFacade
	DeliveryFacade
	PaymentFacade
	HealthFacade
}
