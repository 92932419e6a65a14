package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/core/ports/driven"
	"github.com/custodia-labs/lettergen/internal/logger"
)

// ConversionOutcome is the result of a successful conversion.
type ConversionOutcome struct {
	// PDFPath is the downloaded file, next to the source document.
	PDFPath string

	// Pages is the verified page count, or 0 when verification is off.
	Pages int
}

// ConversionClient runs the upload → convert → export protocol for one
// document over an authenticated ConversionAPI session.
type ConversionClient struct {
	api      driven.ConversionAPI
	verifier driven.PDFVerifier
	engine   string
	format   string
}

// NewConversionClient creates a conversion client.
// verifier is optional; when nil, downloaded files are not checked.
func NewConversionClient(api driven.ConversionAPI, verifier driven.PDFVerifier, engine string) *ConversionClient {
	if engine == "" {
		engine = domain.DefaultConversionEngine
	}
	return &ConversionClient{
		api:      api,
		verifier: verifier,
		engine:   engine,
		format:   domain.DefaultOutputFormat,
	}
}

// Convert converts the document at docPath and downloads the result to the
// sibling path with the target extension. Every failure is returned as an
// error; nothing panics past this call.
func (c *ConversionClient) Convert(ctx context.Context, docPath string) (*ConversionOutcome, error) {
	// 1. Create the job with its linked tasks
	job, err := c.api.CreateJob(ctx, domain.JobRequest{
		InputFormat:  strings.TrimPrefix(filepath.Ext(docPath), "."),
		OutputFormat: c.format,
		Engine:       c.engine,
		Tag:          uuid.New().String(),
	})
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	logger.Debug("conversion: created job %s for %s", job.ID, docPath)

	// 2. Resolve the upload task
	upload, err := c.resolveUploadTask(ctx, job)
	if err != nil {
		return nil, err
	}

	// 3. Stream the file
	if err := c.api.Upload(ctx, upload, docPath); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	// 4. Block until the job is terminal
	done, err := c.api.WaitJob(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("wait for job %s: %w", job.ID, err)
	}

	// 5. Locate the finished export
	export, ok := done.FinishedExport()
	if !ok || len(export.Result.Files) == 0 {
		if failed, hasFailed := done.FailedTask(); hasFailed {
			return nil, fmt.Errorf("%w: task %s: %s", domain.ErrExportNotFinished, failed.Name, failed.Message)
		}
		return nil, fmt.Errorf("%w: job %s status %s", domain.ErrExportNotFinished, done.ID, done.Status)
	}

	// 6. Download next to the source document
	pdfPath := strings.TrimSuffix(docPath, filepath.Ext(docPath)) + "." + c.format
	if err := c.api.Download(ctx, export.Result.Files[0].URL, pdfPath); err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	outcome := &ConversionOutcome{PDFPath: pdfPath}

	// 7. Verify the download
	if c.verifier != nil {
		pages, err := c.verifier.Verify(pdfPath)
		if err != nil {
			return nil, fmt.Errorf("verify %s: %w", pdfPath, err)
		}
		outcome.Pages = pages
	}

	return outcome, nil
}

// resolveUploadTask finds the upload task of a new job, fetching it again
// when the create response did not include its form.
func (c *ConversionClient) resolveUploadTask(ctx context.Context, job *domain.ConversionJob) (*domain.ConversionTask, error) {
	task, ok := job.TaskByName(domain.TaskNameUpload)
	if !ok {
		return nil, fmt.Errorf("%w: job %s", domain.ErrUploadTaskNotFound, job.ID)
	}
	if task.Result.Form != nil {
		return task, nil
	}

	fetched, err := c.api.GetTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("get upload task %s: %w", task.ID, err)
	}
	if fetched.Result.Form == nil {
		return nil, fmt.Errorf("%w: task %s has no upload form", domain.ErrUploadTaskNotFound, task.ID)
	}
	return fetched, nil
}
