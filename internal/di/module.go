package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/heartframe/internal/adapter/generator"
	"github.com/polkiloo/heartframe/internal/adapter/payment"
	"github.com/polkiloo/heartframe/internal/app"
	"github.com/polkiloo/heartframe/internal/config"
	"github.com/polkiloo/heartframe/internal/logger"
	"github.com/polkiloo/heartframe/internal/pkg/token"
	"github.com/polkiloo/heartframe/internal/server/http/router"
	"github.com/polkiloo/heartframe/internal/storage"
	"github.com/polkiloo/heartframe/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		token.Module,
		storage.Module,
		generator.Module,
		payment.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
