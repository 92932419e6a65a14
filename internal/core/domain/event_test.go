package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "progress", EventProgress.String())
	assert.Equal(t, "message", EventMessage.String())
	assert.Equal(t, "error", EventError.String())
	assert.Equal(t, "finished", EventFinished.String())
	assert.Equal(t, "unknown", EventKind(99).String())
}

func TestEventConstructors(t *testing.T) {
	assert.Equal(t, Event{Kind: EventProgress, Percent: 50}, ProgressEvent(50))
	assert.Equal(t, Event{Kind: EventMessage, Text: "Created DOCX: /out/a.docx"},
		MessageEvent("Created DOCX: %s", "/out/a.docx"))
	assert.Equal(t, Event{Kind: EventError, Text: "Error processing Lee: boom"},
		ErrorEvent("Error processing %s: %v", "Lee", errors.New("boom")))
	assert.Equal(t, Event{Kind: EventError, Text: "Critical error: disk full", Critical: true},
		CriticalEvent(errors.New("disk full")))
	assert.Equal(t, Event{Kind: EventFinished}, FinishedEvent())
}

func TestEvent_IsTerminal(t *testing.T) {
	assert.True(t, FinishedEvent().IsTerminal())
	assert.True(t, CriticalEvent(errors.New("x")).IsTerminal())
	assert.False(t, ErrorEvent("Conversion failed: x").IsTerminal())
	assert.False(t, ProgressEvent(100).IsTerminal())
	assert.False(t, MessageEvent("hi").IsTerminal())
}
