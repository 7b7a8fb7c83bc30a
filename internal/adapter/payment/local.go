package payment

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/stripe/stripe-go/v76/webhook"
)

// DefaultTolerance bounds the age of a signed webhook accepted by LocalProvider.
const DefaultTolerance = 5 * time.Minute

// LocalProvider is a self-hosted checkout used in development and tests.
// Sessions complete at the success URL; webhooks carry the same
// "t=<unix>,v1=<hex>" signature header Stripe sends.
type LocalProvider struct {
	secret    string
	tolerance time.Duration
}

// NewLocalProvider builds LocalProvider signing with secret.
func NewLocalProvider(secret string, tolerance time.Duration) *LocalProvider {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &LocalProvider{secret: secret, tolerance: tolerance}
}

type localEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// CreateCheckoutSession allocates a session id and points the buyer at the success URL.
func (p *LocalProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	suffix, err := gonanoid.New(24)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	id := "cs_local_" + suffix

	target, err := url.Parse(req.SuccessURL)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	query := target.Query()
	query.Set("session_id", id)
	target.RawQuery = query.Encode()

	return &CheckoutSession{ID: id, URL: target.String()}, nil
}

// ParseWebhook verifies signature and decodes the event.
func (p *LocalProvider) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if p.secret == "" {
		return nil, ErrInvalidSignature
	}
	if err := webhook.ValidatePayloadWithTolerance(payload, signature, p.secret, p.tolerance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var event localEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &WebhookEvent{
		ID:         event.ID,
		Type:       EventType(event.Type),
		SessionID:  event.Data.Object.ID,
		OrderToken: event.Data.Object.Metadata[MetadataOrderToken],
	}, nil
}

// Sign returns the signature header for payload sent at the given time.
func (p *LocalProvider) Sign(payload []byte, at time.Time) string {
	signature := webhook.ComputeSignature(at, payload, p.secret)
	return "t=" + strconv.FormatInt(at.Unix(), 10) + ",v1=" + hex.EncodeToString(signature)
}

// EventPayload encodes a checkout event the way ParseWebhook expects it.
func EventPayload(eventType EventType, sessionID, orderToken string) []byte {
	var event localEvent
	event.ID = "evt_" + sessionID
	event.Type = string(eventType)
	event.Data.Object.ID = sessionID
	event.Data.Object.Metadata = map[string]string{MetadataOrderToken: orderToken}
	payload, _ := json.Marshal(event)
	return payload
}
