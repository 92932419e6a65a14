package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/logger"
)

// joinTimeout bounds the wait for the worker after its stream closes.
const joinTimeout = 30 * time.Second

// defaultRunLimit is used by list_runs when no limit is given.
const defaultRunLimit = 10

// ParticipantInput is one letter recipient.
type ParticipantInput struct {
	Name     string `json:"name" jsonschema:"participant name as it should appear in the letter"`
	Delegate bool   `json:"delegate,omitempty" jsonschema:"use the delegate dates instead of the official dates"`
}

// GenerateInput is the input schema for the generate_letters tool.
type GenerateInput struct {
	Template      string             `json:"template" jsonschema:"path to the .docx template"`
	OutputDir     string             `json:"output_dir,omitempty" jsonschema:"directory for generated files (default from settings)"`
	Conference    string             `json:"conference" jsonschema:"conference name"`
	DelegateDates string             `json:"delegate_dates,omitempty" jsonschema:"date range for delegates"`
	OfficialDates string             `json:"official_dates,omitempty" jsonschema:"date range for officials"`
	Participants  []ParticipantInput `json:"participants" jsonschema:"participants in processing order"`
}

// GenerateOutput is the output schema for the generate_letters tool.
type GenerateOutput struct {
	RunID     string           `json:"run_id,omitempty"`
	State     string           `json:"state"`
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Converted int              `json:"converted"`
	Messages  []string         `json:"messages"`
	Errors    []string         `json:"errors,omitempty"`
	Artifacts []ArtifactOutput `json:"artifacts,omitempty"`
}

// ArtifactOutput describes the files produced for one participant.
type ArtifactOutput struct {
	Participant string `json:"participant"`
	Document    string `json:"document"`
	PDF         string `json:"pdf,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ListRunsInput is the input schema for the list_runs tool.
type ListRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to return (default 10)"`
}

// ListRunsOutput is the output schema for the list_runs tool.
type ListRunsOutput struct {
	Runs  []RunOutput `json:"runs"`
	Count int         `json:"count"`
}

// RunOutput summarises one past run.
type RunOutput struct {
	ID         string `json:"id"`
	Conference string `json:"conference"`
	State      string `json:"state"`
	Total      int    `json:"total"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	Converted  int    `json:"converted"`
	StartedAt  string `json:"started_at"`
	Error      string `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_letters",
		Description: "Generate one absence letter per participant from a .docx template and convert each to PDF",
	}, s.handleGenerate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List recent letter generation runs, most recent first",
	}, s.handleListRuns)
}

// handleGenerate runs a batch to completion and reports its events.
// Cancelling the request cancels the batch. A call made while another
// generate call is in flight fails with ErrBatchInProgress.
func (s *Server) handleGenerate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateInput,
) (*mcp.CallToolResult, GenerateOutput, error) {
	cfg, err := s.batchConfig(input)
	if err != nil {
		return nil, GenerateOutput{}, err
	}
	if err := s.ports.Validator(cfg); err != nil {
		return nil, GenerateOutput{}, fmt.Errorf("invalid batch: %w", err)
	}

	if !s.generating.TryLock() {
		return nil, GenerateOutput{}, domain.ErrBatchInProgress
	}
	defer s.generating.Unlock()

	events, err := s.ports.Worker.Start(ctx, cfg)
	if err != nil {
		return nil, GenerateOutput{}, err
	}
	logger.Info("mcp: generating %d letters for %s", len(cfg.Participants), cfg.ConferenceName)

	output := GenerateOutput{Messages: []string{}}
	done := ctx.Done()
	for event := range events {
		select {
		case <-done:
			s.ports.Worker.Cancel()
			done = nil
		default:
		}
		switch event.Kind {
		case domain.EventMessage:
			output.Messages = append(output.Messages, event.Text)
		case domain.EventError:
			output.Errors = append(output.Errors, event.Text)
		}
	}

	if err := s.ports.Worker.Wait(joinTimeout); err != nil {
		return nil, output, err
	}

	result := s.ports.Worker.Result()
	if result == nil {
		return nil, output, fmt.Errorf("batch produced no result")
	}
	output.RunID = result.RunID
	output.State = result.State.String()
	output.Total = result.Total
	output.Succeeded = result.Succeeded
	output.Failed = result.Failed
	output.Converted = result.Converted
	for i := range result.Artifacts {
		a := &result.Artifacts[i]
		output.Artifacts = append(output.Artifacts, ArtifactOutput{
			Participant: a.Participant.Name,
			Document:    a.DocPath,
			PDF:         a.PDFPath,
			Error:       a.Error,
		})
	}

	if result.Err != nil {
		return nil, output, fmt.Errorf("batch failed: %w", result.Err)
	}
	return nil, output, nil
}

// batchConfig fills in the credential and default output directory.
func (s *Server) batchConfig(input GenerateInput) (domain.BatchConfig, error) {
	cfg := domain.BatchConfig{
		APIKey:         s.ports.Settings.APIKey(),
		TemplatePath:   input.Template,
		OutputDir:      input.OutputDir,
		ConferenceName: input.Conference,
		DelegateDates:  input.DelegateDates,
		OfficialDates:  input.OfficialDates,
		Participants:   make([]domain.Participant, len(input.Participants)),
	}
	for i, p := range input.Participants {
		cfg.Participants[i] = domain.Participant{Name: p.Name, IsDelegate: p.Delegate}
	}
	if cfg.OutputDir == "" {
		dir, err := s.ports.Settings.OutputDir()
		if err != nil {
			return cfg, fmt.Errorf("resolving output directory: %w", err)
		}
		cfg.OutputDir = dir
	}
	return cfg, nil
}

// handleListRuns handles the list_runs tool invocation.
func (s *Server) handleListRuns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRunsInput,
) (*mcp.CallToolResult, ListRunsOutput, error) {
	output := ListRunsOutput{Runs: []RunOutput{}}
	if s.ports.History == nil {
		return nil, output, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultRunLimit
	}

	runs, err := s.ports.History.ListRuns(ctx, limit)
	if err != nil {
		return nil, ListRunsOutput{}, err
	}

	for i := range runs {
		output.Runs = append(output.Runs, toRunOutput(&runs[i]))
	}
	output.Count = len(output.Runs)
	return nil, output, nil
}

func toRunOutput(r *domain.BatchRun) RunOutput {
	return RunOutput{
		ID:         r.ID,
		Conference: r.ConferenceName,
		State:      r.State.String(),
		Total:      r.Total,
		Succeeded:  r.Succeeded,
		Failed:     r.Failed,
		Converted:  r.Converted,
		StartedAt:  r.StartedAt.UTC().Format(time.RFC3339),
		Error:      r.Error,
	}
}
