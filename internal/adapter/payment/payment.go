// Package payment integrates hosted checkout and its signed webhooks.
package payment

import (
	"context"
	"errors"

	"github.com/polkiloo/heartframe/internal/domain/model"
)

// ErrInvalidSignature reports a webhook whose signature does not verify.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Metadata keys attached to checkout sessions.
const (
	MetadataOrderToken = "order_token"
	MetadataPlan       = "plan"
)

// EventType names webhook events the service reacts to.
type EventType string

const (
	EventCheckoutCompleted  EventType = "checkout.session.completed"
	EventAsyncPaymentFailed EventType = "checkout.session.async_payment_failed"
)

// CheckoutRequest describes a one-item checkout for an order.
type CheckoutRequest struct {
	OrderToken string
	Plan       model.PricePlan
	Details    model.PlanDetails
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is a created hosted checkout.
type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is a verified notification about a checkout session.
type WebhookEvent struct {
	ID         string
	Type       EventType
	SessionID  string
	OrderToken string
}

// Provider creates checkout sessions and verifies their webhooks.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

func productName(details model.PlanDetails) string {
	return "HeartFrame " + details.Name
}
