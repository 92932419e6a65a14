package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBatchInProgress indicates a batch is already running on the worker.
	ErrBatchInProgress = errors.New("batch in progress")

	// ErrJoinTimeout indicates the worker did not stop within the bounded wait.
	ErrJoinTimeout = errors.New("timed out waiting for batch to stop")

	// Configuration Errors.

	// ErrMissingAPIKey indicates no conversion service credential is configured.
	ErrMissingAPIKey = errors.New("conversion API key is required")

	// ErrTemplateNotFound indicates the template path does not name a file.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidTemplate indicates the template is not a .docx document.
	ErrInvalidTemplate = errors.New("template must be a .docx document")

	// ErrNoParticipants indicates the participant list is empty.
	ErrNoParticipants = errors.New("at least one participant is required")

	// Document Errors.

	// ErrInvalidDocument indicates a structured document could not be parsed.
	ErrInvalidDocument = errors.New("invalid document")

	// Conversion Errors.

	// ErrConversionFailed indicates the remote conversion did not produce a file.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrUnauthorized indicates the conversion service rejected the API key.
	ErrUnauthorized = errors.New("conversion service rejected the API key")

	// ErrRateLimited indicates the conversion service is throttling requests.
	ErrRateLimited = errors.New("conversion service rate limit exceeded")

	// ErrUploadTaskNotFound indicates a created job has no upload task.
	ErrUploadTaskNotFound = errors.New("upload task not found in job")

	// ErrExportNotFinished indicates the job ended without a finished export task.
	ErrExportNotFinished = errors.New("export task did not finish")

	// ErrInvalidPDF indicates a downloaded file is not a readable PDF.
	ErrInvalidPDF = errors.New("downloaded file is not a valid PDF")
)
