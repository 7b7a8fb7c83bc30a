package payment

import (
	"errors"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/heartframe/internal/config"
)

// ErrMissingWebhookSecret is returned when no webhook signing secret is configured.
var ErrMissingWebhookSecret = errors.New("webhook secret must be provided")

// Module provides the configured payment provider via fx.
var Module = fx.Provide(newProvider)

type providerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newProvider(p providerParams) (Provider, error) {
	if p.Config.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}
	switch p.Config.PaymentProvider {
	case config.PaymentProviderStripe:
		return NewStripeProvider(p.Config.StripeSecretKey, p.Config.WebhookSecret, nil, p.Logger), nil
	case config.PaymentProviderLocal:
		if !p.Config.AllowLocalPayments {
			return nil, fmt.Errorf("local payment provider is not allowed")
		}
		p.Logger.Warn("using local payment provider")
		return NewLocalProvider(p.Config.WebhookSecret, DefaultTolerance), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", p.Config.PaymentProvider)
	}
}
