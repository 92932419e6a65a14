package cloudconvert

import (
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/lettergen/internal/core/domain"
)

// CloudConvert-specific errors.
var (
	// ErrEmptyResponse indicates a 2xx response without a data envelope.
	ErrEmptyResponse = errors.New("cloudconvert: empty response")

	// ErrNoUploadForm indicates Upload was called on a task without a form.
	ErrNoUploadForm = errors.New("cloudconvert: task has no upload form")
)

// RateLimitError represents a 429 response.
type RateLimitError struct {
	RetryAt time.Time
}

func (e *RateLimitError) Error() string {
	if e.RetryAt.IsZero() {
		return "cloudconvert: rate limit exceeded"
	}
	return fmt.Sprintf("cloudconvert: rate limit exceeded, retry at %s", e.RetryAt.Format(time.RFC3339))
}

// APIError represents a CloudConvert error response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("cloudconvert: API error %d %s: %s (URL: %s)", e.StatusCode, e.Code, e.Message, e.URL)
	}
	return fmt.Sprintf("cloudconvert: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsUnauthorized checks if the error indicates an invalid API key.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401
	}
	return false
}

// IsNotFound checks if the error indicates a missing job or task.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// classify tags service errors with the domain error callers branch on.
// The typed error stays reachable through errors.As.
func classify(err error) error {
	switch {
	case IsUnauthorized(err):
		return fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	case IsRateLimited(err):
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	case IsNotFound(err):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return err
}
