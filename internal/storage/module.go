// Package storage selects the order storage backend from the database URI.
package storage

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/fx"

	"github.com/polkiloo/heartframe/internal/config"
	"github.com/polkiloo/heartframe/internal/domain/repository"
	"github.com/polkiloo/heartframe/internal/pkg/token"
	"github.com/polkiloo/heartframe/internal/storage/postgres"
	"github.com/polkiloo/heartframe/internal/storage/sqlite"
)

// Module wires the storage backend and its order repository.
var Module = fx.Options(
	fx.Provide(newFactory),
	fx.Provide(func(f repository.Factory) repository.OrderRepository { return f.Orders() }),
	fx.Invoke(registerLifecycle),
)

type factoryParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Issuer token.Issuer
	Logger *slog.Logger
}

// IsPostgres reports whether uri addresses a PostgreSQL server.
func IsPostgres(uri string) bool {
	return strings.HasPrefix(uri, "postgres://") || strings.HasPrefix(uri, "postgresql://")
}

func newFactory(p factoryParams) (repository.Factory, error) {
	uri := p.Config.DatabaseURI
	if IsPostgres(uri) {
		p.Logger.Info("using postgres storage")
		return postgres.New(p.Ctx, uri, p.Issuer, p.Logger)
	}
	p.Logger.Info("using sqlite storage", slog.String("path", strings.TrimPrefix(uri, "sqlite://")))
	return sqlite.Open(p.Ctx, uri, p.Issuer, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, factory repository.Factory) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			factory.Close()
			return nil
		},
	})
}
