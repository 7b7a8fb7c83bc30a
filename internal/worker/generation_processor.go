package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/heartframe/internal/domain/model"
)

// GenerationFacade exposes the subset of application functionality required by the worker.
type GenerationFacade interface {
	Generate(ctx context.Context, token string) error
	StalledGenerations(ctx context.Context, limit int) ([]model.Order, error)
}

// GenerationProcessor runs queued generation tasks on a fixed pool and
// periodically re-queues orders left in generating.
type GenerationProcessor struct {
	facade        GenerationFacade
	queue         *Queue
	sweepInterval time.Duration
	batchSize     int
	workers       int
	logger        *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewGenerationProcessor constructs generation worker pool.
func NewGenerationProcessor(facade GenerationFacade, queue *Queue, sweepInterval time.Duration, batchSize, workers int, logger *slog.Logger) *GenerationProcessor {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	return &GenerationProcessor{
		facade:        facade,
		queue:         queue,
		sweepInterval: sweepInterval,
		batchSize:     batchSize,
		workers:       workers,
		logger:        logger,
	}
}

// Start launches background processing.
func (p *GenerationProcessor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.sweep(runCtx)
}

// Stop stops accepting queued work and waits for running tasks to finish
// or ctx to end. Tasks still running when ctx ends are left to the stalled
// generation sweep of the next run.
func (p *GenerationProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn("generation workers still running at shutdown")
		return ctx.Err()
	}
}

func (p *GenerationProcessor) sweep(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.sweepInterval)
	defer ticker.Stop()

	p.requeueStalled(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.requeueStalled(ctx)
		}
	}
}

func (p *GenerationProcessor) requeueStalled(ctx context.Context) {
	orders, err := p.facade.StalledGenerations(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("fetch stalled generations failed", slog.String("error", err.Error()))
		}
		return
	}
	for _, order := range orders {
		if p.queue.InFlight(order.Token) {
			continue
		}
		err := p.queue.Enqueue(order.Token)
		switch {
		case err == nil:
			p.logger.Info("requeued stalled generation", slog.String("order_id", order.ID))
		case errors.Is(err, ErrQueueFull):
			p.logger.Warn("generation queue full, sweep postponed")
			return
		}
	}
}

func (p *GenerationProcessor) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case token := <-p.queue.Jobs():
			p.handle(ctx, token)
		}
	}
}

// handle runs a task to completion even when ctx is cancelled mid-flight.
func (p *GenerationProcessor) handle(ctx context.Context, token string) {
	p.queue.Begin(token)
	defer func() {
		if err := p.queue.Done(token); err != nil {
			p.logger.Warn("follow-up generation not queued", slog.String("error", err.Error()))
		}
	}()
	if err := p.facade.Generate(context.WithoutCancel(ctx), token); err != nil {
		p.logger.Error("generation task failed", slog.String("error", err.Error()))
	}
}
