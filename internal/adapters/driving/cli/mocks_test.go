package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/core/ports/driving"
)

// mockBatchWorker replays a fixed event list.
type mockBatchWorker struct {
	events    []domain.Event
	result    *domain.BatchResult
	startErr  error
	waitErr   error
	started   *domain.BatchConfig
	cancelled int
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

func (m *mockBatchWorker) Cancel() { m.cancelled++ }

func (m *mockBatchWorker) Wait(_ time.Duration) error { return m.waitErr }

func (m *mockBatchWorker) Running() bool { return false }

func (m *mockBatchWorker) Result() *domain.BatchResult { return m.result }

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	apiKey      string
	outputDir   string
	validateErr error
	saveErr     error
	saved       int
}

func newMockSettings() *mockSettingsService {
	return &mockSettingsService{
		settings:  domain.DefaultAppSettings(),
		outputDir: "/home/test/DocumentGeneratorOutput",
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.settings = *s
	m.saved++
	return nil
}

func (m *mockSettingsService) SetAPIKey(key string) error {
	if key == "" {
		return domain.ErrMissingAPIKey
	}
	m.apiKey = key
	return nil
}

func (m *mockSettingsService) APIKey() string { return m.apiKey }

func (m *mockSettingsService) LoadEnv(_ string) error { return nil }

func (m *mockSettingsService) OutputDir() (string, error) {
	if m.settings.Output.Directory != "" {
		return m.settings.Output.Directory, nil
	}
	return m.outputDir, nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

// mockHistoryService returns canned runs.
type mockHistoryService struct {
	runs    []domain.BatchRun
	details *driving.RunDetails
	err     error
}

func (m *mockHistoryService) ListRuns(_ context.Context, limit int) ([]domain.BatchRun, error) {
	if limit > 0 && len(m.runs) > limit {
		return m.runs[:limit], m.err
	}
	return m.runs, m.err
}

func (m *mockHistoryService) GetRun(_ context.Context, _ string) (*driving.RunDetails, error) {
	return m.details, m.err
}

// useServices installs the given services and restores the previous ones
// when the test ends.
func useServices(t *testing.T, s driving.SettingsService, w driving.BatchWorker, h driving.HistoryService) {
	t.Helper()
	oldSettings, oldWorker, oldHistory, oldValidator := settingsService, batchWorker, historyService, batchValidator
	settingsService, batchWorker, historyService = s, w, h
	t.Cleanup(func() {
		settingsService, batchWorker, historyService, batchValidator = oldSettings, oldWorker, oldHistory, oldValidator
		genFlags = generateFlags{}
		historyLimit = 20
	})
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}
