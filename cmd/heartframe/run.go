package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// defaultStopTimeout bounds shutdown when no configured timeout is known.
const defaultStopTimeout = 30 * time.Second

type lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Done() <-chan os.Signal
}

// run starts app, waits for a signal or an fx shutdown and stops it within
// stopTimeout. It returns the process exit code.
func run(ctx context.Context, app lifecycle, stopTimeout time.Duration, stderr io.Writer) int {
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(stderr, "failed to start heartframe: %v\n", err)
		return 1
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	if stopTimeout <= 0 {
		stopTimeout = defaultStopTimeout
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(stderr, "failed to stop heartframe: %v\n", err)
		return 1
	}
	return 0
}
