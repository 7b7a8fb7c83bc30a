package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/heartframe/internal/config"
	"github.com/polkiloo/heartframe/internal/di"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	var cfg *config.Config
	app := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		di.Module(),
		fx.Populate(&cfg),
	)

	var stopTimeout time.Duration
	if cfg != nil {
		stopTimeout = cfg.ShutdownTimeout
	}
	code := run(ctx, app, stopTimeout, os.Stderr)
	stop()
	os.Exit(code)
}
