package app

import (
	"context"

	"github.com/polkiloo/heartframe/internal/access"
	"github.com/polkiloo/heartframe/internal/domain/model"
	"github.com/polkiloo/heartframe/internal/domain/repository"
	"github.com/polkiloo/heartframe/internal/usecase"
)

// HeartFrameFacade exposes use cases to the HTTP layer and the generation worker.
type HeartFrameFacade struct {
	orders   *usecase.OrderUseCase
	delivery *usecase.DeliveryUseCase
	payments *usecase.PaymentUseCase
	storage  repository.Factory
}

func NewHeartFrameFacade(orders *usecase.OrderUseCase, delivery *usecase.DeliveryUseCase, payments *usecase.PaymentUseCase, storage repository.Factory) *HeartFrameFacade {
	return &HeartFrameFacade{orders: orders, delivery: delivery, payments: payments, storage: storage}
}

func (f *HeartFrameFacade) SubmitOrder(ctx context.Context, input model.OrderInput) (*model.Order, error) {
	return f.orders.Submit(ctx, input)
}

func (f *HeartFrameFacade) RetryOrder(ctx context.Context, token string) (*model.Order, error) {
	return f.orders.Retry(ctx, token)
}

func (f *HeartFrameFacade) OrderStatus(ctx context.Context, token string) (*access.View, error) {
	return f.delivery.Status(ctx, token)
}

func (f *HeartFrameFacade) FinalFile(ctx context.Context, token string) (*model.FinalFile, error) {
	return f.delivery.Finalize(ctx, token)
}

func (f *HeartFrameFacade) CreatePayment(ctx context.Context, token string, plan model.PricePlan) (string, error) {
	return f.payments.CreateSession(ctx, token, plan)
}

func (f *HeartFrameFacade) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return f.payments.HandleWebhook(ctx, payload, signature)
}

func (f *HeartFrameFacade) HealthCheck(ctx context.Context) error {
	return f.storage.HealthCheck(ctx)
}

func (f *HeartFrameFacade) Generate(ctx context.Context, token string) error {
	return f.orders.Generate(ctx, token)
}

func (f *HeartFrameFacade) StalledGenerations(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.StalledGenerations(ctx, limit)
}
