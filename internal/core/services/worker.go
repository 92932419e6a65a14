package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/core/ports/driving"
)

// Ensure BatchWorker implements the interface.
var _ driving.BatchWorker = (*BatchWorker)(nil)

// eventBuffer is the capacity of a batch's event channel.
const eventBuffer = 64

// BatchWorker runs one batch at a time on a background goroutine.
// Events are delivered in order on the channel returned by Start; the
// consumer must drain it until it is closed.
type BatchWorker struct {
	runner driving.BatchRunner

	mu      sync.Mutex
	running bool
	cancel  *domain.CancelToken
	done    chan struct{}
	result  *domain.BatchResult
}

// NewBatchWorker creates a worker around a batch runner.
func NewBatchWorker(runner driving.BatchRunner) *BatchWorker {
	return &BatchWorker{runner: runner}
}

// Start launches a batch. The returned channel is closed after the
// terminal event.
func (w *BatchWorker) Start(ctx context.Context, cfg domain.BatchConfig) (<-chan domain.Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil, domain.ErrBatchInProgress
	}

	events := make(chan domain.Event, eventBuffer)
	token := domain.NewCancelToken()
	done := make(chan struct{})

	w.running = true
	w.cancel = token
	w.done = done

	go func() {
		defer close(done)
		defer close(events)

		result := w.runner.Run(ctx, cfg, token, driving.EventSinkFunc(func(e domain.Event) {
			events <- e
		}))

		w.mu.Lock()
		w.result = result
		w.running = false
		w.mu.Unlock()
	}()

	return events, nil
}

// Cancel requests cooperative cancellation of the running batch.
// The participant in flight is not interrupted.
func (w *BatchWorker) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running && w.cancel != nil {
		w.cancel.Cancel()
	}
}

// Wait blocks until the current batch stops or timeout elapses.
func (w *BatchWorker) Wait(timeout time.Duration) error {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()

	if done == nil {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return domain.ErrJoinTimeout
	}
}

// Running reports whether a batch is in progress.
func (w *BatchWorker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Result returns the outcome of the last completed batch, or nil.
func (w *BatchWorker) Result() *domain.BatchResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}
