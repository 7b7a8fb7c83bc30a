package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/polkiloo/heartframe/internal/access"
	"github.com/polkiloo/heartframe/internal/adapter/generator"
	domainErrors "github.com/polkiloo/heartframe/internal/domain/errors"
	"github.com/polkiloo/heartframe/internal/domain/model"
	"github.com/polkiloo/heartframe/internal/domain/repository"
)

const maxRateLimitWait = 30 * time.Second

// Enqueuer schedules detached generation for an order token.
type Enqueuer interface {
	Enqueue(token string) error
}

// OrderUseCase encapsulates order lifecycle logic.
type OrderUseCase struct {
	orders    repository.OrderRepository
	generator generator.ContentGenerator
	queue     Enqueuer
	logger    *slog.Logger
	now       func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, gen generator.ContentGenerator, queue Enqueuer, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{
		orders:    orders,
		generator: gen,
		queue:     queue,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores a new order, moves it to generating and schedules generation.
func (u *OrderUseCase) Submit(ctx context.Context, input model.OrderInput) (*model.Order, error) {
	if strings.TrimSpace(input.CoreSentence) == "" {
		return nil, fmt.Errorf("%w: core_sentence is required", domainErrors.ErrValidation)
	}

	order, err := u.orders.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	applied, err := u.orders.Transition(ctx, order.Token, model.OrderStatusPending, model.OrderPatch{
		Status: model.StatusPtr(model.OrderStatusGenerating),
	})
	if err != nil {
		return nil, fmt.Errorf("start generation: %w", err)
	}
	if !applied {
		return nil, fmt.Errorf("start generation: %w", domainErrors.ErrInvalidState)
	}
	order.Status = model.OrderStatusGenerating

	u.schedule(order)
	return order, nil
}

// Retry regenerates content of an order in preview. Only the owner may retry.
func (u *OrderUseCase) Retry(ctx context.Context, token string) (*model.Order, error) {
	order, err := u.orders.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrInvalidState
		}
		return nil, err
	}
	if access.RoleFor(order, token) != access.RoleOwner {
		return nil, domainErrors.ErrInvalidState
	}

	applied, err := u.orders.Transition(ctx, order.Token, model.OrderStatusPreview, model.OrderPatch{
		Status: model.StatusPtr(model.OrderStatusGenerating),
	})
	if err != nil {
		return nil, fmt.Errorf("restart generation: %w", err)
	}
	if !applied {
		return nil, domainErrors.ErrInvalidState
	}
	order.Status = model.OrderStatusGenerating

	u.schedule(order)
	return order, nil
}

func (u *OrderUseCase) schedule(order *model.Order) {
	if err := u.queue.Enqueue(order.Token); err != nil {
		// the stalled generation sweep picks the order up later
		u.logger.Warn("generation not queued",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
}

// Generate produces content for an order in generating, retrying once.
// The outcome is recorded as preview or failed.
func (u *OrderUseCase) Generate(ctx context.Context, token string) error {
	order, err := u.orders.GetByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}
	if order.Status != model.OrderStatusGenerating {
		u.logger.Debug("skipping generation", slog.String("order_id", order.ID), slog.String("status", string(order.Status)))
		return nil
	}

	content, err := u.produce(ctx, order)
	if err != nil {
		u.logger.Warn("generation attempt failed, retrying",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		u.waitBeforeRetry(ctx, err)
		content, err = u.produce(ctx, order)
	}

	if err != nil {
		if _, terr := u.orders.Transition(ctx, order.Token, model.OrderStatusGenerating, model.OrderPatch{
			Status: model.StatusPtr(model.OrderStatusFailed),
		}); terr != nil {
			return fmt.Errorf("mark order failed: %w", terr)
		}
		u.logger.Error("generation failed",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %v", domainErrors.ErrGenerationFailed, err)
	}

	applied, err := u.orders.Transition(ctx, order.Token, model.OrderStatusGenerating, model.OrderPatch{
		Status:  model.StatusPtr(model.OrderStatusPreview),
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("store content: %w", err)
	}
	if !applied {
		u.logger.Warn("order left generating before content was stored", slog.String("order_id", order.ID))
		return nil
	}
	u.logger.Info("generation completed", slog.String("order_id", order.ID))
	return nil
}

func (u *OrderUseCase) produce(ctx context.Context, order *model.Order) (*model.Content, error) {
	text, err := u.generator.GenerateText(ctx, generator.TextRequest{
		Recipient:    order.Recipient,
		Date:         order.Date,
		Mood:         order.Mood,
		CoreSentence: order.CoreSentence,
		Name:         order.Name,
		Keywords:     order.Keywords,
	})
	if err != nil {
		return nil, fmt.Errorf("generate text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("generate text: %w", generator.ErrEmptyResult)
	}

	image, err := u.generator.GenerateImage(ctx, generator.ImageRequest{
		Recipient: order.Recipient,
		Mood:      order.Mood,
		Text:      text,
	})
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}
	if image == "" {
		return nil, fmt.Errorf("generate image: %w", generator.ErrEmptyResult)
	}

	return &model.Content{PoemText: text, ImageURL: image}, nil
}

// waitBeforeRetry honours a generator rate limit signal before the automatic retry.
func (u *OrderUseCase) waitBeforeRetry(ctx context.Context, err error) {
	var tm generator.TooManyRequestsError
	if !errors.As(err, &tm) || tm.RetryAfter <= 0 {
		return
	}
	wait := min(tm.RetryAfter, maxRateLimitWait)
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// ConfirmPayment marks a preview order as paid. Other statuses are left untouched.
func (u *OrderUseCase) ConfirmPayment(ctx context.Context, token string) error {
	paidAt := u.now()
	applied, err := u.orders.Transition(ctx, token, model.OrderStatusPreview, model.OrderPatch{
		Status: model.StatusPtr(model.OrderStatusPaid),
		PaidAt: &paidAt,
	})
	if err != nil {
		return fmt.Errorf("confirm payment: %w", err)
	}
	if !applied {
		u.logger.Info("payment confirmation ignored, order not awaiting payment")
	}
	return nil
}

// FailPayment marks a preview order as failed after an asynchronous payment failure.
func (u *OrderUseCase) FailPayment(ctx context.Context, token string) error {
	applied, err := u.orders.Transition(ctx, token, model.OrderStatusPreview, model.OrderPatch{
		Status: model.StatusPtr(model.OrderStatusFailed),
	})
	if err != nil {
		return fmt.Errorf("fail payment: %w", err)
	}
	if !applied {
		u.logger.Info("payment failure ignored, order not awaiting payment")
	}
	return nil
}

// StalledGenerations lists orders that are in generating, oldest first.
func (u *OrderUseCase) StalledGenerations(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.ListByStatus(ctx, model.OrderStatusGenerating, limit)
}
