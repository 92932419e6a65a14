package tui

import "errors"

// ErrMissingEvents is returned when no event stream is provided.
var ErrMissingEvents = errors.New("tui: event stream is required")

// ErrInvalidTotal is returned when the participant count is not positive.
var ErrInvalidTotal = errors.New("tui: participant count must be positive")
