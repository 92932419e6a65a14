package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/core/ports/driven"
	"github.com/custodia-labs/lettergen/internal/core/ports/driving"
	"github.com/custodia-labs/lettergen/internal/logger"
)

// Ensure BatchOrchestrator implements the interface.
var _ driving.BatchRunner = (*BatchOrchestrator)(nil)

// BatchOrchestrator runs the per-participant produce and convert pipeline.
type BatchOrchestrator struct {
	producer   *DocumentProducer
	files      driven.FileCopier
	apiFactory driven.ConversionAPIFactory
	verifier   driven.PDFVerifier
	runStore   driven.RunStore
	engine     string
	now        func() time.Time
}

// NewBatchOrchestrator creates a batch orchestrator.
// verifier and runStore are optional.
func NewBatchOrchestrator(
	codec driven.DocumentCodec,
	files driven.FileCopier,
	apiFactory driven.ConversionAPIFactory,
	verifier driven.PDFVerifier,
	runStore driven.RunStore,
	engine string,
) *BatchOrchestrator {
	return &BatchOrchestrator{
		producer:   NewDocumentProducer(codec, files),
		files:      files,
		apiFactory: apiFactory,
		verifier:   verifier,
		runStore:   runStore,
		engine:     engine,
		now:        time.Now,
	}
}

// Run processes every participant of cfg in order.
//
// Events: zero or more Progress, Message and Error events followed by exactly
// one Finished, or a critical Error and no Finished. A participant failure
// never stops the batch. Cancellation is checked before each participant only
// and ends the batch silently with Finished.
func (o *BatchOrchestrator) Run(
	ctx context.Context,
	cfg domain.BatchConfig,
	cancel *domain.CancelToken,
	sink driving.EventSink,
) (result *domain.BatchResult) {
	result = &domain.BatchResult{
		RunID: uuid.New().String(),
		State: domain.BatchRunning,
		Total: len(cfg.Participants),
	}
	run := &domain.BatchRun{
		ID:             result.RunID,
		ConferenceName: cfg.ConferenceName,
		TemplatePath:   cfg.TemplatePath,
		OutputDir:      cfg.OutputDir,
		State:          domain.BatchRunning,
		Total:          result.Total,
		StartedAt:      o.now(),
	}
	o.saveRun(ctx, run)

	logger.Section("Batch " + result.RunID)

	defer func() {
		if r := recover(); r != nil {
			o.fail(result, fmt.Errorf("panic: %v", r), sink)
		}
		o.finishRun(ctx, run, result)
	}()

	// 1. Configure the conversion session
	if o.apiFactory == nil {
		o.fail(result, errors.New("conversion service not configured"), sink)
		return result
	}
	api, err := o.apiFactory(cfg.APIKey)
	if err != nil {
		o.fail(result, fmt.Errorf("configure conversion service: %w", err), sink)
		return result
	}
	client := NewConversionClient(api, o.verifier, o.engine)

	// 2. Ensure the output directory
	if err := o.files.EnsureDir(cfg.OutputDir); err != nil {
		o.fail(result, fmt.Errorf("create output directory: %w", err), sink)
		return result
	}

	// 3. Process participants in order
	for i, participant := range cfg.Participants {
		if cancel.Cancelled() || ctx.Err() != nil {
			logger.Debug("batch: cancelled before participant %d of %d", i+1, result.Total)
			result.State = domain.BatchCancelled
			break
		}

		artifact, convErr, err := o.processParticipant(ctx, cfg, client, participant, sink)
		if convErr != nil && result.ConversionErr == nil {
			result.ConversionErr = convErr
		}
		if err != nil {
			result.Failed++
			sink.Emit(domain.ErrorEvent("Error processing %s: %v", participant.Name, err))
			artifact = &domain.GeneratedArtifact{
				ID:          uuid.New().String(),
				Participant: participant,
				Error:       err.Error(),
				CreatedAt:   o.now(),
			}
		} else {
			result.Succeeded++
			if artifact.Converted() {
				result.Converted++
			}
			sink.Emit(domain.ProgressEvent(percentComplete(i, result.Total)))
		}

		artifact.RunID = result.RunID
		result.Artifacts = append(result.Artifacts, *artifact)
		o.saveArtifact(ctx, artifact)
	}

	// 4. Finish
	if result.State == domain.BatchRunning {
		result.State = domain.BatchCompleted
	}
	logger.Info("batch %s: %s, %d/%d produced, %d converted",
		result.RunID, result.State, result.Succeeded, result.Total, result.Converted)
	sink.Emit(domain.FinishedEvent())

	return result
}

// processParticipant produces and converts one letter. An error means the
// document was not produced. A conversion failure is reported as an event,
// leaves the artifact without a PDF and is returned as convErr wrapping
// ErrConversionFailed.
func (o *BatchOrchestrator) processParticipant(
	ctx context.Context,
	cfg domain.BatchConfig,
	client *ConversionClient,
	participant domain.Participant,
	sink driving.EventSink,
) (artifact *domain.GeneratedArtifact, convErr, err error) {
	defer func() {
		if r := recover(); r != nil {
			artifact, convErr, err = nil, nil, fmt.Errorf("panic: %v", r)
		}
	}()

	artifact, err = o.producer.Produce(cfg, participant)
	if err != nil {
		return nil, nil, err
	}
	sink.Emit(domain.MessageEvent("Created DOCX: %s", artifact.DocPath))

	outcome, cause := client.Convert(ctx, artifact.DocPath)
	if cause != nil {
		logger.Warn("conversion of %s failed: %v", artifact.DocPath, cause)
		artifact.Error = cause.Error()
		sink.Emit(domain.ErrorEvent("Conversion failed: %v", cause))
		return artifact, fmt.Errorf("%w: %s: %w", domain.ErrConversionFailed, participant.Name, cause), nil
	}

	artifact.PDFPath = outcome.PDFPath
	artifact.PDFPages = outcome.Pages
	sink.Emit(domain.MessageEvent("Converted to PDF: %s", outcome.PDFPath))

	return artifact, nil, nil
}

// fail ends the batch with a critical error. No Finished event follows.
func (o *BatchOrchestrator) fail(result *domain.BatchResult, err error, sink driving.EventSink) {
	logger.Error("batch %s: %v", result.RunID, err)
	result.State = domain.BatchCriticalFailure
	result.Err = err
	sink.Emit(domain.CriticalEvent(err))
}

func (o *BatchOrchestrator) saveRun(ctx context.Context, run *domain.BatchRun) {
	if o.runStore == nil {
		return
	}
	if err := o.runStore.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("record run %s: %v", run.ID, err)
	}
}

func (o *BatchOrchestrator) finishRun(ctx context.Context, run *domain.BatchRun, result *domain.BatchResult) {
	run.State = result.State
	run.Succeeded = result.Succeeded
	run.Failed = result.Failed
	run.Converted = result.Converted
	run.FinishedAt = o.now()
	if result.Err != nil {
		run.Error = result.Err.Error()
	}
	o.saveRun(ctx, run)
}

func (o *BatchOrchestrator) saveArtifact(ctx context.Context, artifact *domain.GeneratedArtifact) {
	if o.runStore == nil {
		return
	}
	if err := o.runStore.SaveArtifact(context.WithoutCancel(ctx), artifact); err != nil {
		logger.Warn("record artifact %s: %v", artifact.ID, err)
	}
}

// percentComplete returns round((index+1)/total*100).
func percentComplete(index, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(index+1) / float64(total) * 100))
}
