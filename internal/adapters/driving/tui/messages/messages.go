// Package messages defines Bubbletea message types for the progress view.
package messages

import (
	"github.com/custodia-labs/lettergen/internal/core/domain"
)

// BatchEvent carries one event from the batch worker.
type BatchEvent struct {
	Event domain.Event
}

// StreamClosed is sent once the worker closes its event channel.
type StreamClosed struct{}
