// Package mcp provides an MCP (Model Context Protocol) server adapter for lettergen.
// It lets AI assistants generate absence letters and inspect past runs.
package mcp

import "errors"

var (
	// ErrMissingBatchWorker is returned when the batch worker is not provided.
	ErrMissingBatchWorker = errors.New("mcp: batch worker is required")

	// ErrMissingValidator is returned when the batch validator is not provided.
	ErrMissingValidator = errors.New("mcp: batch validator is required")

	// ErrMissingSettingsService is returned when the settings service is not provided.
	ErrMissingSettingsService = errors.New("mcp: settings service is required")
)
