package driven

import (
	"context"

	"github.com/custodia-labs/lettergen/internal/core/domain"
)

// ConversionAPI is an authenticated session with the remote conversion service.
// A single session is reused across all participants of a batch.
type ConversionAPI interface {
	// CreateJob creates a job with linked upload, convert and export tasks.
	CreateJob(ctx context.Context, req domain.JobRequest) (*domain.ConversionJob, error)

	// GetTask fetches the current state of a task.
	GetTask(ctx context.Context, taskID string) (*domain.ConversionTask, error)

	// Upload streams a local file to an import/upload task's form.
	Upload(ctx context.Context, task *domain.ConversionTask, filePath string) error

	// WaitJob blocks until the job reaches a terminal state.
	// The wait happens service-side; no local polling interval applies.
	WaitJob(ctx context.Context, jobID string) (*domain.ConversionJob, error)

	// Download writes the file at url to destPath.
	Download(ctx context.Context, url, destPath string) error
}

// ConversionAPIFactory configures a session from a credential.
// An error here is fatal for the whole batch.
type ConversionAPIFactory func(apiKey string) (ConversionAPI, error)

// PDFVerifier checks a converted file before it is attached to an artifact.
type PDFVerifier interface {
	// Verify validates the file and returns its page count.
	Verify(path string) (int, error)
}
