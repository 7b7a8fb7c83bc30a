package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/heartframe/internal/config"
	"github.com/polkiloo/heartframe/internal/server/http/handlers"
	"github.com/polkiloo/heartframe/internal/usecase"
	"github.com/polkiloo/heartframe/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewHeartFrameFacade,
		newHTTPServer,
		newGenerationQueue,
		newEnqueuer,
		newGenerationProcessor,
		func(f *HeartFrameFacade) handlers.HeartFrameFacade { return f },
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

func newGenerationQueue(cfg *config.Config) *worker.Queue {
	return worker.NewQueue(cfg.GenerationQueueSize)
}

func newEnqueuer(q *worker.Queue) usecase.Enqueuer {
	return q
}

type workerParams struct {
	fx.In

	Facade *HeartFrameFacade
	Queue  *worker.Queue
	Config *config.Config
	Logger *slog.Logger
}

func newGenerationProcessor(p workerParams) *worker.GenerationProcessor {
	return worker.NewGenerationProcessor(
		p.Facade,
		p.Queue,
		p.Config.GenerationSweepInterval,
		p.Config.SweepBatchSize,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.GenerationProcessor
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting heartframe", slog.String("addr", p.Server.Addr))
			// the start context ends once startup completes
			p.Worker.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			if err := p.Worker.Stop(shutdownCtx); err != nil {
				return fmt.Errorf("stop generation workers: %w", err)
			}
			p.Logger.Info("heartframe stopped")
			return nil
		},
	})
}
