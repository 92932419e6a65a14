package domain

import "fmt"

// EventKind identifies one of the four notification kinds.
type EventKind int

const (
	// EventProgress carries a completion percentage (0-100).
	EventProgress EventKind = iota
	// EventMessage carries a status line.
	EventMessage
	// EventError carries a participant-scoped or critical error message.
	EventError
	// EventFinished is the terminal notification of a completed batch.
	EventFinished
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventMessage:
		return "message"
	case EventError:
		return "error"
	case EventFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Event is a notification sent from the batch worker to a front end.
type Event struct {
	Kind EventKind

	// Percent is set on progress events.
	Percent int

	// Text is set on message and error events.
	Text string

	// Critical marks the terminal error of a batch that did not finish.
	Critical bool
}

// ProgressEvent builds a progress notification.
func ProgressEvent(percent int) Event {
	return Event{Kind: EventProgress, Percent: percent}
}

// MessageEvent builds a status notification.
func MessageEvent(format string, args ...any) Event {
	return Event{Kind: EventMessage, Text: fmt.Sprintf(format, args...)}
}

// ErrorEvent builds a recoverable error notification.
func ErrorEvent(format string, args ...any) Event {
	return Event{Kind: EventError, Text: fmt.Sprintf(format, args...)}
}

// CriticalEvent builds the terminal error notification.
func CriticalEvent(err error) Event {
	return Event{Kind: EventError, Text: fmt.Sprintf("Critical error: %v", err), Critical: true}
}

// FinishedEvent builds the terminal completion notification.
func FinishedEvent() Event {
	return Event{Kind: EventFinished}
}

// IsTerminal reports whether no further events follow this one.
func (e Event) IsTerminal() bool {
	return e.Kind == EventFinished || (e.Kind == EventError && e.Critical)
}
