package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/lettergen/internal/core/domain"
)

// EventSink receives batch notifications.
// Events arrive strictly in order from a single producer.
type EventSink interface {
	Emit(event domain.Event)
}

// EventSinkFunc adapts a function to an EventSink.
type EventSinkFunc func(event domain.Event)

// Emit calls f(event).
func (f EventSinkFunc) Emit(event domain.Event) {
	f(event)
}

// BatchRunner executes one batch synchronously on the calling goroutine.
type BatchRunner interface {
	// Run processes every participant of cfg in order, emitting events to sink.
	// The cancel token is checked before each participant only.
	Run(ctx context.Context, cfg domain.BatchConfig, cancel *domain.CancelToken, sink EventSink) *domain.BatchResult
}

// BatchWorker runs batches on a dedicated background goroutine.
// Wait and Result refer to the most recently started batch; a caller
// sharing the worker must hold Start through Result to read its own.
type BatchWorker interface {
	// Start launches a batch and returns its event stream.
	// The channel is closed after the terminal event.
	// Returns domain.ErrBatchInProgress if a batch is already running.
	Start(ctx context.Context, cfg domain.BatchConfig) (<-chan domain.Event, error)

	// Cancel requests cooperative cancellation of the running batch.
	Cancel()

	// Wait blocks until the running batch stops or timeout elapses.
	// Returns domain.ErrJoinTimeout if it is still running.
	Wait(timeout time.Duration) error

	// Running reports whether a batch is in progress.
	Running() bool

	// Result returns the outcome of the last completed batch, or nil.
	Result() *domain.BatchResult
}

// BatchValidator checks a configuration before it is handed to a worker.
type BatchValidator func(cfg domain.BatchConfig) error
