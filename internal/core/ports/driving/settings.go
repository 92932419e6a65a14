package driving

import "github.com/custodia-labs/lettergen/internal/core/domain"

// SettingsService manages application settings.
// The batch core never reads settings itself; front ends resolve the
// credential here and pass it in the BatchConfig.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetAPIKey stores the conversion service credential.
	SetAPIKey(apiKey string) error

	// APIKey returns the effective credential.
	// The environment wins over a loaded .env file, which wins over the config file.
	APIKey() string

	// LoadEnv reads a .env file into the credential lookup.
	LoadEnv(path string) error

	// OutputDir returns the effective default output directory.
	OutputDir() (string, error)

	// Validate checks that the current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
