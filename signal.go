package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// interruptExitCode is the conventional status for a process killed by SIGINT.
const interruptExitCode = 130

// interruptContext returns a context that is canceled on the first SIGINT or
// SIGTERM, which stops a paced notify batch from submitting further updates.
// A second signal exits at once. The returned stop func releases the signal
// handler.
func interruptContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})

	go func() {
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Warn("interrupted, stopping after in-flight requests",
				slog.String("signal", sig.String()),
			)
			cancel()
		case <-done:
			return
		}

		select {
		case <-sigCh:
			os.Exit(interruptExitCode)
		case <-done:
			return
		}
	}()

	var once sync.Once

	stop := func() {
		once.Do(func() {
			cancel()
			close(done)
		})
	}

	return ctx, stop
}
