package test

import (
	"context"
	"sync"

	"github.com/polkiloo/heartframe/internal/adapter/generator"
	"github.com/polkiloo/heartframe/internal/adapter/payment"
)

// GeneratorStub returns scripted generation results.
type GeneratorStub struct {
	TextFn  func(context.Context, generator.TextRequest) (string, error)
	ImageFn func(context.Context, generator.ImageRequest) (string, error)

	mu         sync.Mutex
	TextCalls  int
	ImageCalls int
}

// GenerateText delegates to TextFn or returns a fixed poem.
func (s *GeneratorStub) GenerateText(ctx context.Context, req generator.TextRequest) (string, error) {
	s.mu.Lock()
	s.TextCalls++
	s.mu.Unlock()
	if s.TextFn != nil {
		return s.TextFn(ctx, req)
	}
	return req.CoreSentence + "\nline two\nline three", nil
}

// GenerateImage delegates to ImageFn or returns a fixed URL.
func (s *GeneratorStub) GenerateImage(ctx context.Context, req generator.ImageRequest) (string, error) {
	s.mu.Lock()
	s.ImageCalls++
	s.mu.Unlock()
	if s.ImageFn != nil {
		return s.ImageFn(ctx, req)
	}
	return "https://images.example/poem.png", nil
}

// Calls returns the number of text and image requests made.
func (s *GeneratorStub) Calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.TextCalls, s.ImageCalls
}

// PaymentProviderStub records checkout requests and returns scripted webhook events.
type PaymentProviderStub struct {
	CheckoutFn func(context.Context, payment.CheckoutRequest) (*payment.CheckoutSession, error)
	WebhookFn  func([]byte, string) (*payment.WebhookEvent, error)

	mu       sync.Mutex
	Requests []payment.CheckoutRequest
}

// CreateCheckoutSession delegates to CheckoutFn or returns a fixed session.
func (s *PaymentProviderStub) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, req)
	s.mu.Unlock()
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, req)
	}
	return &payment.CheckoutSession{ID: "cs_test", URL: "https://checkout.example/cs_test"}, nil
}

// ParseWebhook delegates to WebhookFn or reports an invalid signature.
func (s *PaymentProviderStub) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	if s.WebhookFn != nil {
		return s.WebhookFn(payload, signature)
	}
	return nil, payment.ErrInvalidSignature
}

// EnqueuerStub records scheduled tokens.
type EnqueuerStub struct {
	Err error

	mu     sync.Mutex
	Tokens []string
}

// Enqueue stores token and returns Err.
func (s *EnqueuerStub) Enqueue(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Tokens = append(s.Tokens, token)
	return s.Err
}

// Queued returns a copy of the scheduled tokens.
func (s *EnqueuerStub) Queued() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Tokens...)
}

var (
	_ generator.ContentGenerator = (*GeneratorStub)(nil)
	_ payment.Provider           = (*PaymentProviderStub)(nil)
)
