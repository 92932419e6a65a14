package domain

import (
	"sync/atomic"
	"time"
)

// BatchState is the lifecycle state of a batch run.
type BatchState string

// Batch states.
const (
	BatchIdle            BatchState = "idle"
	BatchRunning         BatchState = "running"
	BatchCompleted       BatchState = "completed"
	BatchCancelled       BatchState = "cancelled"
	BatchCriticalFailure BatchState = "critical_failure"
)

// IsTerminal reports whether the state ends a run.
func (s BatchState) IsTerminal() bool {
	switch s {
	case BatchCompleted, BatchCancelled, BatchCriticalFailure:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s BatchState) String() string {
	return string(s)
}

// CancelToken is a cooperative cancellation flag.
// The batch checks it only at participant boundaries.
type CancelToken struct {
	cancelled atomic.Bool
}

// NewCancelToken creates an unset token.
func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Cancel sets the flag. Safe to call from any goroutine, any number of times.
func (t *CancelToken) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
// A nil token is never cancelled.
func (t *CancelToken) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}

// BatchResult summarises a finished batch for Go callers.
// Front ends should rely on the event stream; this is a convenience.
type BatchResult struct {
	RunID     string
	State     BatchState
	Total     int
	Succeeded int
	Failed    int
	Converted int
	Artifacts []GeneratedArtifact
	Err       error

	// ConversionErr is the first conversion failure of the batch, if any.
	// It wraps ErrConversionFailed and the cause.
	ConversionErr error
}

// BatchRun is the persisted record of one batch.
type BatchRun struct {
	ID             string
	ConferenceName string
	TemplatePath   string
	OutputDir      string
	State          BatchState
	Total          int
	Succeeded      int
	Failed         int
	Converted      int
	Error          string
	StartedAt      time.Time
	FinishedAt     time.Time
}
