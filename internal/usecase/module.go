package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/heartframe/internal/adapter/payment"
	"github.com/polkiloo/heartframe/internal/config"
	"github.com/polkiloo/heartframe/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewOrderUseCase,
	NewDeliveryUseCase,
	newPaymentUseCase,
)

type paymentParams struct {
	fx.In

	Orders    repository.OrderRepository
	Lifecycle *OrderUseCase
	Provider  payment.Provider
	Config    *config.Config
	Logger    *slog.Logger
}

func newPaymentUseCase(p paymentParams) *PaymentUseCase {
	return NewPaymentUseCase(p.Orders, p.Lifecycle, p.Provider, p.Config.PublicBaseURL, p.Logger)
}
