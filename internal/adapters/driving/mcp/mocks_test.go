package mcp

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/core/ports/driving"
)

// mockBatchWorker replays a fixed event list and result.
type mockBatchWorker struct {
	events    []domain.Event
	result    *domain.BatchResult
	startErr  error
	waitErr   error
	started   *domain.BatchConfig
	cancelled bool
}

func (m *mockBatchWorker) Start(_ context.Context, cfg domain.BatchConfig) (<-chan domain.Event, error) {
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.started = &cfg
	ch := make(chan domain.Event, len(m.events))
	for _, e := range m.events {
		ch <- e
	}
	close(ch)
	return ch, nil
}

func (m *mockBatchWorker) Cancel() { m.cancelled = true }

func (m *mockBatchWorker) Wait(_ time.Duration) error { return m.waitErr }

func (m *mockBatchWorker) Running() bool { return false }

func (m *mockBatchWorker) Result() *domain.BatchResult { return m.result }

// gatedWorker holds every batch open until release is closed. Like the
// real worker, Wait and Result report the most recently started batch.
type gatedWorker struct {
	mu      sync.Mutex
	latest  string
	started chan string
	release chan struct{}
}

func newGatedWorker() *gatedWorker {
	return &gatedWorker{started: make(chan string, 4), release: make(chan struct{})}
}

func (w *gatedWorker) Start(_ context.Context, cfg domain.BatchConfig) (<-chan domain.Event, error) {
	w.mu.Lock()
	w.latest = cfg.ConferenceName
	w.mu.Unlock()

	ch := make(chan domain.Event)
	go func() {
		defer close(ch)
		<-w.release
		ch <- domain.MessageEvent("Created DOCX: %s", cfg.ConferenceName)
	}()
	w.started <- cfg.ConferenceName
	return ch, nil
}

func (w *gatedWorker) Cancel() {}

func (w *gatedWorker) Wait(_ time.Duration) error { return nil }

func (w *gatedWorker) Running() bool { return false }

func (w *gatedWorker) Result() *domain.BatchResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return &domain.BatchResult{RunID: "run-" + w.latest, State: domain.BatchCompleted}
}

// mockSettingsService supplies a fixed key and output directory.
type mockSettingsService struct {
	apiKey    string
	outputDir string
	err       error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	return &s, nil
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error { return nil }

func (m *mockSettingsService) SetAPIKey(_ string) error { return nil }

func (m *mockSettingsService) APIKey() string { return m.apiKey }

func (m *mockSettingsService) LoadEnv(_ string) error { return nil }

func (m *mockSettingsService) OutputDir() (string, error) { return m.outputDir, m.err }

func (m *mockSettingsService) Validate() error { return nil }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

// mockHistoryService returns canned runs.
type mockHistoryService struct {
	runs      []domain.BatchRun
	details   *driving.RunDetails
	err       error
	lastLimit int
}

func (m *mockHistoryService) ListRuns(_ context.Context, limit int) ([]domain.BatchRun, error) {
	m.lastLimit = limit
	return m.runs, m.err
}

func (m *mockHistoryService) GetRun(_ context.Context, _ string) (*driving.RunDetails, error) {
	return m.details, m.err
}

func acceptAll(domain.BatchConfig) error { return nil }

func newTestPorts() *Ports {
	return &Ports{
		Worker:    &mockBatchWorker{},
		Validator: acceptAll,
		Settings:  &mockSettingsService{apiKey: "key-123", outputDir: "/out"},
	}
}
