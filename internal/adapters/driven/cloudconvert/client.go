package cloudconvert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/core/ports/driven"
	"github.com/custodia-labs/lettergen/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.ConversionAPI = (*Client)(nil)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Config holds configuration for the CloudConvert client.
type Config struct {
	// APIKey is the CloudConvert API key (required).
	APIKey string

	// BaseURL is the REST endpoint (default: https://api.cloudconvert.com).
	BaseURL string

	// SyncURL is the blocking-wait endpoint (default: https://sync.api.cloudconvert.com).
	SyncURL string

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// RequestsPerSecond throttles REST and sync calls. Zero disables throttling.
	RequestsPerSecond float64

	// HTTPClient is the base client. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client talks to the CloudConvert v2 API.
type Client struct {
	api         *http.Client
	plain       *http.Client
	baseURL     string
	syncURL     string
	rateLimiter *RateLimiter
}

// New creates a CloudConvert client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultConversionBaseURL
	}
	if cfg.SyncURL == "" {
		cfg.SyncURL = domain.DefaultConversionSyncURL
	}
	base := cfg.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"})
	api := oauth2.NewClient(context.WithValue(context.Background(), oauth2.HTTPClient, base), ts)
	api.Timeout = cfg.Timeout

	plain := *base
	plain.Timeout = cfg.Timeout

	return &Client{
		api:         api,
		plain:       &plain,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		syncURL:     strings.TrimRight(cfg.SyncURL, "/"),
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
	}, nil
}

// Factory returns a ConversionAPIFactory bound to the given settings.
// The credential comes from the batch configuration.
func Factory(settings domain.ConversionSettings) driven.ConversionAPIFactory {
	baseURL, syncURL := settings.Endpoints()
	return func(apiKey string) (driven.ConversionAPI, error) {
		return New(Config{
			APIKey:            apiKey,
			BaseURL:           baseURL,
			SyncURL:           syncURL,
			Timeout:           settings.Timeout(),
			RequestsPerSecond: settings.RequestsPerSecond,
		})
	}
}

// CreateJob creates an upload → convert → export job.
func (c *Client) CreateJob(ctx context.Context, req domain.JobRequest) (*domain.ConversionJob, error) {
	body, err := json.Marshal(newJobPayload(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var job jobData
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/v2/jobs", body, &job); err != nil {
		return nil, err
	}
	logger.Debug("cloudconvert: job %s created (%d tasks)", job.ID, len(job.Tasks))
	return job.toDomain(), nil
}

// GetTask fetches a task by ID.
func (c *Client) GetTask(ctx context.Context, taskID string) (*domain.ConversionTask, error) {
	var task taskData
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/v2/tasks/"+taskID, nil, &task); err != nil {
		return nil, err
	}
	t := task.toDomain()
	return &t, nil
}

// WaitJob blocks on the synchronous endpoint until the job is terminal.
func (c *Client) WaitJob(ctx context.Context, jobID string) (*domain.ConversionJob, error) {
	var job jobData
	if err := c.do(ctx, http.MethodGet, c.syncURL+"/v2/jobs/"+jobID, nil, &job); err != nil {
		return nil, err
	}
	logger.Debug("cloudconvert: job %s %s", job.ID, job.Status)
	return job.toDomain(), nil
}

// do sends an authenticated request and decodes the data envelope into out.
func (c *Client) do(ctx context.Context, method, url string, body []byte, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.api.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if err := c.rateLimiter.CheckRateLimit(resp); err != nil {
		return classify(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(newAPIError(resp))
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// newAPIError builds an APIError from a non-2xx response.
func newAPIError(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		URL:        resp.Request.URL.String(),
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		apiErr.Message = payload.Message
		apiErr.Code = payload.Code
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
