package mcp

import (
	"github.com/custodia-labs/lettergen/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Worker runs generate_letters batches.
	Worker driving.BatchWorker

	// Validator checks a batch before it starts.
	Validator driving.BatchValidator

	// Settings supplies the API key and default output directory.
	Settings driving.SettingsService

	// History exposes past runs. Optional.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Worker == nil {
		return ErrMissingBatchWorker
	}
	if p.Validator == nil {
		return ErrMissingValidator
	}
	if p.Settings == nil {
		return ErrMissingSettingsService
	}
	return nil
}
