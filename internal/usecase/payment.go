package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/polkiloo/heartframe/internal/access"
	"github.com/polkiloo/heartframe/internal/adapter/payment"
	domainErrors "github.com/polkiloo/heartframe/internal/domain/errors"
	"github.com/polkiloo/heartframe/internal/domain/model"
	"github.com/polkiloo/heartframe/internal/domain/repository"
)

// PaymentUseCase creates checkout sessions and applies payment webhooks.
type PaymentUseCase struct {
	orders    repository.OrderRepository
	lifecycle *OrderUseCase
	provider  payment.Provider
	baseURL   string
	logger    *slog.Logger
}

// NewPaymentUseCase constructs PaymentUseCase. baseURL prefixes checkout redirect URLs.
func NewPaymentUseCase(orders repository.OrderRepository, lifecycle *OrderUseCase, provider payment.Provider, baseURL string, logger *slog.Logger) *PaymentUseCase {
	return &PaymentUseCase{orders: orders, lifecycle: lifecycle, provider: provider, baseURL: baseURL, logger: logger}
}

// CreateSession opens a checkout for an order in preview and returns the redirect URL.
func (u *PaymentUseCase) CreateSession(ctx context.Context, tok string, plan model.PricePlan) (string, error) {
	order, err := u.orders.GetByToken(ctx, tok)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return "", domainErrors.ErrInvalidState
		}
		return "", err
	}
	if access.RoleFor(order, tok) != access.RoleOwner || order.Status != model.OrderStatusPreview {
		return "", domainErrors.ErrInvalidState
	}

	details, ok := model.LookupPlan(plan)
	if !ok {
		return "", domainErrors.ErrUnknownPlan
	}

	escaped := url.QueryEscape(order.Token)
	session, err := u.provider.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		OrderToken: order.Token,
		Plan:       plan,
		Details:    details,
		SuccessURL: u.baseURL + "/complete?token=" + escaped,
		CancelURL:  u.baseURL + "/preview?token=" + escaped,
	})
	if err != nil {
		return "", fmt.Errorf("create payment session: %w", err)
	}

	if err := u.orders.Update(ctx, order.Token, model.OrderPatch{
		PricePlan:        &plan,
		PaymentSessionID: &session.ID,
	}); err != nil {
		return "", fmt.Errorf("record payment session: %w", err)
	}

	u.logger.Info("payment session created", slog.String("order_id", order.ID), slog.String("plan", string(plan)))
	return session.URL, nil
}

// HandleWebhook verifies a provider notification and applies it to the order.
func (u *PaymentUseCase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := u.provider.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return fmt.Errorf("%w: %v", domainErrors.ErrSignatureInvalid, err)
		}
		return fmt.Errorf("%w: %v", domainErrors.ErrValidation, err)
	}

	if event.OrderToken == "" {
		u.logger.Debug("webhook event without order token", slog.String("type", string(event.Type)))
		return nil
	}

	switch event.Type {
	case payment.EventCheckoutCompleted:
		return u.lifecycle.ConfirmPayment(ctx, event.OrderToken)
	case payment.EventAsyncPaymentFailed:
		return u.lifecycle.FailPayment(ctx, event.OrderToken)
	default:
		u.logger.Debug("webhook event ignored", slog.String("type", string(event.Type)))
		return nil
	}
}
