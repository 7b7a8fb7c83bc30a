package test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/heartframe/internal/domain/errors"
	"github.com/polkiloo/heartframe/internal/domain/model"
	"github.com/polkiloo/heartframe/internal/domain/repository"
)

// OrderRepositoryStub keeps orders in memory. Fn overrides replace the default behaviour.
type OrderRepositoryStub struct {
	CreateFn           func(context.Context, model.OrderInput) (*model.Order, error)
	GetByTokenFn       func(context.Context, string) (*model.Order, error)
	UpdateFn           func(context.Context, string, model.OrderPatch) error
	TransitionFn       func(context.Context, string, model.OrderStatus, model.OrderPatch) (bool, error)
	EnsureShareTokenFn func(context.Context, string, string) (string, error)
	ListByStatusFn     func(context.Context, model.OrderStatus, int) ([]model.Order, error)

	mu     sync.Mutex
	orders map[string]*model.Order
	seq    int
	// History records every status an order moved into, keyed by primary token.
	History map[string][]model.OrderStatus
}

// NewOrderRepositoryStub constructs an empty in-memory repository.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		orders:  make(map[string]*model.Order),
		History: make(map[string][]model.OrderStatus),
	}
}

func (s *OrderRepositoryStub) init() {
	if s.orders == nil {
		s.orders = make(map[string]*model.Order)
	}
	if s.History == nil {
		s.History = make(map[string][]model.OrderStatus)
	}
}

// Put stores a copy of order as is.
func (s *OrderRepositoryStub) Put(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	stored := order
	s.orders[order.Token] = &stored
}

// Snapshot returns a copy of the order owning the primary token.
func (s *OrderRepositoryStub) Snapshot(token string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[token]
	if !ok {
		return model.Order{}, false
	}
	return *order, true
}

// StatusHistory returns the recorded statuses of the order.
func (s *OrderRepositoryStub) StatusHistory(token string) []model.OrderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.OrderStatus(nil), s.History[token]...)
}

// Create stores a pending order with sequential identifiers.
func (s *OrderRepositoryStub) Create(ctx context.Context, input model.OrderInput) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, input)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	s.seq++
	now := time.Now().UTC()
	order := &model.Order{
		ID:           fmt.Sprintf("id-%d", s.seq),
		Token:        fmt.Sprintf("tok-%d", s.seq),
		Recipient:    input.Recipient,
		Date:         input.Date,
		Mood:         input.Mood,
		CoreSentence: input.CoreSentence,
		Name:         input.Name,
		Keywords:     input.Keywords,
		Status:       model.OrderStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.orders[order.Token] = order
	s.History[order.Token] = append(s.History[order.Token], order.Status)
	copied := *order
	return &copied, nil
}

// GetByToken resolves primary or share token.
func (s *OrderRepositoryStub) GetByToken(ctx context.Context, token string) (*model.Order, error) {
	if s.GetByTokenFn != nil {
		return s.GetByTokenFn(ctx, token)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.orders[token]; ok {
		copied := *order
		return &copied, nil
	}
	for _, order := range s.orders {
		if order.ShareToken != nil && *order.ShareToken == token {
			copied := *order
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID resolves an order by identifier.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		if order.ID == id {
			copied := *order
			return &copied, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// Update merges patch, ignoring unknown tokens and empty patches.
func (s *OrderRepositoryStub) Update(ctx context.Context, token string, patch model.OrderPatch) error {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, token, patch)
	}
	if patch.IsEmpty() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if order, ok := s.orders[token]; ok {
		s.apply(order, patch)
	}
	return nil
}

// Transition merges patch when the stored status equals from.
func (s *OrderRepositoryStub) Transition(ctx context.Context, token string, from model.OrderStatus, patch model.OrderPatch) (bool, error) {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, token, from, patch)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[token]
	if !ok || order.Status != from {
		return false, nil
	}
	s.apply(order, patch)
	return true, nil
}

// EnsureShareToken keeps the first share token stored.
func (s *OrderRepositoryStub) EnsureShareToken(ctx context.Context, token, candidate string) (string, error) {
	if s.EnsureShareTokenFn != nil {
		return s.EnsureShareTokenFn(ctx, token, candidate)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[token]
	if !ok {
		return "", domainErrors.ErrNotFound
	}
	if order.ShareToken == nil {
		share := candidate
		order.ShareToken = &share
	}
	return *order.ShareToken, nil
}

// ListByStatus returns matching orders, oldest update first.
func (s *OrderRepositoryStub) ListByStatus(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	if s.ListByStatusFn != nil {
		return s.ListByStatusFn(ctx, status, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Order
	for _, order := range s.orders {
		if order.Status == status {
			result = append(result, *order)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.Before(result[j].UpdatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *OrderRepositoryStub) apply(order *model.Order, patch model.OrderPatch) {
	patch.Apply(order)
	order.UpdatedAt = time.Now().UTC()
	if patch.Status != nil {
		s.History[order.Token] = append(s.History[order.Token], *patch.Status)
	}
}

// FactoryStub exposes a repository through repository.Factory.
type FactoryStub struct {
	Repo        repository.OrderRepository
	HealthErr   error
	CloseCalled bool
}

// Orders returns the configured repository.
func (f *FactoryStub) Orders() repository.OrderRepository { return f.Repo }

// HealthCheck returns the configured error.
func (f *FactoryStub) HealthCheck(context.Context) error { return f.HealthErr }

// Close records the call.
func (f *FactoryStub) Close() { f.CloseCalled = true }

var (
	_ repository.OrderRepository = (*OrderRepositoryStub)(nil)
	_ repository.Factory         = (*FactoryStub)(nil)
)
