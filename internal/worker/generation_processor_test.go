package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/polkiloo/heartframe/internal/domain/model"
	testhelpers "github.com/polkiloo/heartframe/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewGenerationProcessorDefaults(t *testing.T) {
	proc := NewGenerationProcessor(&testhelpers.WorkerFacadeStub{}, NewQueue(1), 0, 0, 0, discardLogger())
	if proc.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", proc.batchSize)
	}
	if proc.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", proc.workers)
	}
	if proc.sweepInterval != time.Minute {
		t.Fatalf("expected sweep interval default to 1m, got %s", proc.sweepInterval)
	}
}

func TestGenerationProcessorRunsQueuedTasks(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{}
	queue := NewQueue(4)
	proc := NewGenerationProcessor(facade, queue, time.Hour, 1, 2, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc.Start(ctx)

	if err := queue.Enqueue("tok-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !testhelpers.Eventually(time.Second, func() bool {
		return len(facade.GeneratedTokens()) == 1 && !queue.InFlight("tok-1")
	}) {
		t.Fatal("timeout waiting for generation")
	}
	if err := proc.Stop(context.Background()); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}

	if got := facade.GeneratedTokens(); got[0] != "tok-1" {
		t.Fatalf("unexpected generated tokens %v", got)
	}
}

func TestGenerationProcessorSweepRequeuesStalled(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{
		Stalled: [][]model.Order{{{ID: "id-1", Token: "tok-1", Status: model.OrderStatusGenerating}}},
	}
	queue := NewQueue(4)
	proc := NewGenerationProcessor(facade, queue, 10*time.Millisecond, 5, 1, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc.Start(ctx)

	if !testhelpers.Eventually(time.Second, func() bool { return len(facade.GeneratedTokens()) > 0 }) {
		t.Fatal("timeout waiting for stalled order to be generated")
	}
	_ = proc.Stop(context.Background())
}

func TestGenerationProcessorSweepSkipsInFlight(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{
		Stalled: [][]model.Order{{{ID: "id-1", Token: "busy"}, {ID: "id-2", Token: "idle"}}},
	}
	queue := NewQueue(4)
	if err := queue.Enqueue("busy"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	proc := NewGenerationProcessor(facade, queue, time.Hour, 5, 1, discardLogger())

	proc.requeueStalled(context.Background())

	if queue.Len() != 2 {
		t.Fatalf("expected two queued tokens, got %d", queue.Len())
	}
	first, second := <-queue.Jobs(), <-queue.Jobs()
	if first != "busy" || second != "idle" {
		t.Fatalf("unexpected queue order %q %q", first, second)
	}
}

func TestGenerationProcessorSweepStopsWhenQueueFull(t *testing.T) {
	facade := &testhelpers.WorkerFacadeStub{
		Stalled: [][]model.Order{{{Token: "a"}, {Token: "b"}, {Token: "c"}}},
	}
	queue := NewQueue(1)
	proc := NewGenerationProcessor(facade, queue, time.Hour, 5, 1, discardLogger())

	proc.requeueStalled(context.Background())

	if queue.Len() != 1 || !queue.InFlight("a") || queue.InFlight("b") || queue.InFlight("c") {
		t.Fatal("expected only the first stalled order to be queued")
	}
}

func TestGenerationProcessorSweepErrorIsLogged(t *testing.T) {
	calls := int32(0)
	facade := &testhelpers.WorkerFacadeStub{
		StalledFn: func(context.Context, int) ([]model.Order, error) {
			atomic.AddInt32(&calls, 1)
			return nil, errors.New("db down")
		},
	}
	queue := NewQueue(1)
	proc := NewGenerationProcessor(facade, queue, time.Hour, 5, 1, discardLogger())

	proc.requeueStalled(context.Background())

	if atomic.LoadInt32(&calls) != 1 || queue.Len() != 0 {
		t.Fatal("expected failed sweep to queue nothing")
	}
}

func TestGenerationProcessorStopWaitsForRunningTask(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	finished := int32(0)
	facade := &testhelpers.WorkerFacadeStub{
		GenerateFn: func(ctx context.Context, token string) error {
			close(started)
			<-release
			if ctx.Err() != nil {
				return ctx.Err()
			}
			atomic.StoreInt32(&finished, 1)
			return nil
		},
	}
	queue := NewQueue(1)
	proc := NewGenerationProcessor(facade, queue, time.Hour, 1, 1, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	proc.Start(ctx)
	if err := queue.Enqueue("tok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for task start")
	}

	stopped := make(chan struct{})
	go func() {
		cancel()
		_ = proc.Stop(context.Background())
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("stop returned while task was running")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for stop")
	}
	if atomic.LoadInt32(&finished) != 1 {
		t.Fatal("expected task to finish with an uncancelled context")
	}
}

func TestGenerationProcessorStopHonoursDeadline(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	facade := &testhelpers.WorkerFacadeStub{
		GenerateFn: func(ctx context.Context, token string) error {
			close(started)
			<-release
			return nil
		},
	}
	queue := NewQueue(1)
	proc := NewGenerationProcessor(facade, queue, time.Hour, 1, 1, discardLogger())
	proc.Start(context.Background())
	if err := queue.Enqueue("tok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for task start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := proc.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestGenerationProcessorRunsFollowUpAfterRunningTask(t *testing.T) {
	var running, maxRunning int32
	first := make(chan struct{})
	release := make(chan struct{})
	calls := int32(0)
	facade := &testhelpers.WorkerFacadeStub{
		GenerateFn: func(ctx context.Context, token string) error {
			n := atomic.AddInt32(&running, 1)
			defer atomic.AddInt32(&running, -1)
			for {
				m := atomic.LoadInt32(&maxRunning)
				if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
					break
				}
			}
			if atomic.AddInt32(&calls, 1) == 1 {
				close(first)
				<-release
			}
			return nil
		},
	}
	queue := NewQueue(4)
	proc := NewGenerationProcessor(facade, queue, time.Hour, 1, 2, discardLogger())
	proc.Start(context.Background())
	defer func() { _ = proc.Stop(context.Background()) }()

	if err := queue.Enqueue("tok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for first run")
	}

	if err := queue.Enqueue("tok"); err != nil {
		t.Fatalf("retry during a running task must be accepted, got %v", err)
	}
	close(release)

	if !testhelpers.Eventually(time.Second, func() bool {
		return len(facade.GeneratedTokens()) == 2 && !queue.InFlight("tok")
	}) {
		t.Fatalf("expected follow-up run, got %v", facade.GeneratedTokens())
	}
	if atomic.LoadInt32(&maxRunning) != 1 {
		t.Fatal("runs of the same token must not overlap")
	}
}
