package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/polkiloo/heartframe/internal/access"
	domainErrors "github.com/polkiloo/heartframe/internal/domain/errors"
	"github.com/polkiloo/heartframe/internal/domain/model"
	"github.com/polkiloo/heartframe/internal/domain/repository"
	"github.com/polkiloo/heartframe/internal/pkg/token"
)

// DeliveryUseCase serves order reads and the finalized file.
type DeliveryUseCase struct {
	orders repository.OrderRepository
	issuer token.Issuer
	logger *slog.Logger
}

// NewDeliveryUseCase constructs DeliveryUseCase.
func NewDeliveryUseCase(orders repository.OrderRepository, issuer token.Issuer, logger *slog.Logger) *DeliveryUseCase {
	return &DeliveryUseCase{orders: orders, issuer: issuer, logger: logger}
}

func (u *DeliveryUseCase) resolve(ctx context.Context, tok string) (*model.Order, access.Role, error) {
	order, err := u.orders.GetByToken(ctx, tok)
	if err != nil {
		return nil, access.RoleNone, err
	}
	role := access.RoleFor(order, tok)
	if role == access.RoleNone {
		return nil, access.RoleNone, domainErrors.ErrNotFound
	}
	return order, role, nil
}

// Status returns what the token holder may see of the order.
func (u *DeliveryUseCase) Status(ctx context.Context, tok string) (*access.View, error) {
	order, role, err := u.resolve(ctx, tok)
	if err != nil {
		return nil, err
	}
	view := access.Project(order, role)
	return &view, nil
}

// Finalize returns the complete content of a paid order, minting its share token on first use.
func (u *DeliveryUseCase) Finalize(ctx context.Context, tok string) (*model.FinalFile, error) {
	order, _, err := u.resolve(ctx, tok)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPaid {
		return nil, domainErrors.ErrPaymentRequired
	}
	if !access.ReleaseFull(order) {
		return nil, domainErrors.ErrContentNotReady
	}

	share, err := u.shareToken(ctx, order)
	if err != nil {
		return nil, err
	}

	return &model.FinalFile{
		PoemText:    *order.PoemText,
		ImageURL:    *order.ImageURL,
		DownloadURL: *order.ImageURL,
		ShareToken:  share,
	}, nil
}

func (u *DeliveryUseCase) shareToken(ctx context.Context, order *model.Order) (string, error) {
	if order.ShareToken != nil && *order.ShareToken != "" {
		return *order.ShareToken, nil
	}
	candidate, err := u.issuer.NewToken()
	if err != nil {
		return "", fmt.Errorf("issue share token: %w", err)
	}
	share, err := u.orders.EnsureShareToken(ctx, order.Token, candidate)
	if err != nil {
		return "", fmt.Errorf("store share token: %w", err)
	}
	if share == candidate {
		u.logger.Info("share token minted", slog.String("order_id", order.ID))
	}
	return share, nil
}
