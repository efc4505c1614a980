package demo

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Worker runs the sweep on a fixed interval for deployments without an
// external scheduler. The cleanup endpoint remains the primary trigger.
type Worker struct {
	sweeper  *Sweeper
	interval time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewWorker creates a sweep worker. Interval must be positive.
func NewWorker(sweeper *Sweeper, interval time.Duration) *Worker {
	return &Worker{
		sweeper:  sweeper,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("starting cleanup sweep worker", "interval", w.interval)

	w.wg.Add(1)
	go w.run(ctx)
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	slog.Info("cleanup sweep worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweeper.Sweep(ctx)
		}
	}
}
