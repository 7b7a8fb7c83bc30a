package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/heartframe/internal/access"
	"github.com/polkiloo/heartframe/internal/domain/model"
)

// GenerationFacadeStub provides controllable behaviour for generation endpoints.
type GenerationFacadeStub struct {
	SubmitFn func(context.Context, model.OrderInput) (*model.Order, error)
	RetryFn  func(context.Context, string) (*model.Order, error)
	StatusFn func(context.Context, string) (*access.View, error)
}

// SubmitOrder delegates to SubmitFn or returns a generating order.
func (s GenerationFacadeStub) SubmitOrder(ctx context.Context, input model.OrderInput) (*model.Order, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, input)
	}
	return &model.Order{ID: "id-1", Token: "tok-1", Status: model.OrderStatusGenerating}, nil
}

// RetryOrder delegates to RetryFn or returns a generating order.
func (s GenerationFacadeStub) RetryOrder(ctx context.Context, token string) (*model.Order, error) {
	if s.RetryFn != nil {
		return s.RetryFn(ctx, token)
	}
	return &model.Order{ID: "id-1", Token: token, Status: model.OrderStatusGenerating}, nil
}

// OrderStatus delegates to StatusFn or returns an owner view in generating.
func (s GenerationFacadeStub) OrderStatus(ctx context.Context, token string) (*access.View, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, token)
	}
	tok := token
	return &access.View{Token: &tok, Status: model.OrderStatusGenerating}, nil
}

// DeliveryFacadeStub simulates the final file endpoint.
type DeliveryFacadeStub struct {
	FinalFn func(context.Context, string) (*model.FinalFile, error)
}

// FinalFile delegates to FinalFn or returns fixed content.
func (s DeliveryFacadeStub) FinalFile(ctx context.Context, token string) (*model.FinalFile, error) {
	if s.FinalFn != nil {
		return s.FinalFn(ctx, token)
	}
	return &model.FinalFile{
		PoemText:    "poem",
		ImageURL:    "https://images.example/poem.png",
		DownloadURL: "https://images.example/poem.png",
		ShareToken:  "share-1",
	}, nil
}

// PaymentFacadeStub simulates checkout and webhook handling.
type PaymentFacadeStub struct {
	CreateFn  func(context.Context, string, model.PricePlan) (string, error)
	WebhookFn func(context.Context, []byte, string) error
}

// CreatePayment delegates to CreateFn or returns a fixed URL.
func (s PaymentFacadeStub) CreatePayment(ctx context.Context, token string, plan model.PricePlan) (string, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, token, plan)
	}
	return "https://checkout.example/cs_test", nil
}

// HandleWebhook delegates to WebhookFn.
func (s PaymentFacadeStub) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.WebhookFn != nil {
		return s.WebhookFn(ctx, payload, signature)
	}
	return nil
}

// HealthFacadeStub reports configured storage health.
type HealthFacadeStub struct {
	Err error
}

// HealthCheck returns Err.
func (s HealthFacadeStub) HealthCheck(context.Context) error {
	return s.Err
}

// HeartFrameFacadeStub aggregates all handler facades.
type HeartFrameFacadeStub struct {
	GenerationFacadeStub
	DeliveryFacadeStub
	PaymentFacadeStub
	HealthFacadeStub
}

// WorkerFacadeStub mimics worker interactions with the application facade.
type WorkerFacadeStub struct {
	Stalled    [][]model.Order
	StalledFn  func(context.Context, int) ([]model.Order, error)
	GenerateFn func(context.Context, string) error

	mu         sync.Mutex
	Generated  []string
	sweepCalls int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// StalledGenerations returns batches from configured queue.
func (s *WorkerFacadeStub) StalledGenerations(ctx context.Context, limit int) ([]model.Order, error) {
	if s.StalledFn != nil {
		return s.StalledFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.sweepCalls, 1)
	if int(call) <= len(s.Stalled) {
		return s.Stalled[call-1], nil
	}
	return nil, nil
}

// SweepCalls returns how many times the sweep asked for stalled orders.
func (s *WorkerFacadeStub) SweepCalls() int {
	return int(atomic.LoadInt32(&s.sweepCalls))
}

// Generate records the token and delegates to GenerateFn.
func (s *WorkerFacadeStub) Generate(ctx context.Context, token string) error {
	s.mu.Lock()
	s.Generated = append(s.Generated, token)
	s.mu.Unlock()
	if s.GenerateFn != nil {
		return s.GenerateFn(ctx, token)
	}
	return nil
}

// GeneratedTokens returns a copy of processed tokens.
func (s *WorkerFacadeStub) GeneratedTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Generated...)
}

// Eventually polls cond until it holds or timeout elapses.
func Eventually(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
