// Package driving defines the interfaces front ends (CLI, TUI, MCP) use
// to start batches, read settings and browse run history.
//
// Implementations live in internal/core/services.
package driving
