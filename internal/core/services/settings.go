package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/core/ports/driven"
	"github.com/custodia-labs/lettergen/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvAPIKey overrides the stored conversion credential.
//
//nolint:gosec // G101: This is an environment variable name, not a credential.
const EnvAPIKey = "LETTERGEN_API_KEY"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyAPIKey            = "conversion.api_key"
	keyBaseURL           = "conversion.base_url"
	keySyncURL           = "conversion.sync_url"
	keySandbox           = "conversion.sandbox"
	keyEngine            = "conversion.engine"
	keyVerifyPDF         = "conversion.verify_pdf"
	keyTimeoutSeconds    = "conversion.timeout_seconds"
	keyRequestsPerSecond = "conversion.requests_per_second"
	keyOutputDirectory   = "output.directory"
	keyLogFile           = "logging.file"
	keyLogVerbose        = "logging.verbose"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
	homeDir     func() (string, error)
	dotenv      map[string]string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
		homeDir:     os.UserHomeDir,
		dotenv:      map[string]string{},
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Conversion: domain.ConversionSettings{
			APIKey:            s.configStore.GetString(keyAPIKey),
			BaseURL:           s.configStore.GetString(keyBaseURL),
			SyncURL:           s.configStore.GetString(keySyncURL),
			Sandbox:           s.getBool(keySandbox, defaults.Conversion.Sandbox),
			Engine:            s.getString(keyEngine, defaults.Conversion.Engine),
			VerifyPDF:         s.getBool(keyVerifyPDF, defaults.Conversion.VerifyPDF),
			TimeoutSeconds:    s.getInt(keyTimeoutSeconds, defaults.Conversion.TimeoutSeconds),
			RequestsPerSecond: s.getFloat(keyRequestsPerSecond, defaults.Conversion.RequestsPerSecond),
		},
		Output: domain.OutputSettings{
			Directory: s.configStore.GetString(keyOutputDirectory),
		},
		Logging: domain.LoggingSettings{
			File:    s.configStore.GetString(keyLogFile),
			Verbose: s.getBool(keyLogVerbose, defaults.Logging.Verbose),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyBaseURL, settings.Conversion.BaseURL},
		{keySyncURL, settings.Conversion.SyncURL},
		{keySandbox, settings.Conversion.Sandbox},
		{keyEngine, settings.Conversion.Engine},
		{keyVerifyPDF, settings.Conversion.VerifyPDF},
		{keyTimeoutSeconds, settings.Conversion.TimeoutSeconds},
		{keyRequestsPerSecond, settings.Conversion.RequestsPerSecond},
		{keyOutputDirectory, settings.Output.Directory},
		{keyLogFile, settings.Logging.File},
		{keyLogVerbose, settings.Logging.Verbose},
	}
	if settings.Conversion.APIKey != "" {
		values = append(values, struct {
			key   string
			value any
		}{keyAPIKey, settings.Conversion.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// SetAPIKey stores the conversion service credential in plaintext.
func (s *SettingsService) SetAPIKey(apiKey string) error {
	if apiKey == "" {
		return domain.ErrMissingAPIKey
	}
	if err := s.configStore.Set(keyAPIKey, apiKey); err != nil {
		return fmt.Errorf("save %s: %w", keyAPIKey, err)
	}
	return nil
}

// APIKey returns the effective credential.
func (s *SettingsService) APIKey() string {
	if key := s.getenv(EnvAPIKey); key != "" {
		return key
	}
	if key := s.dotenv[EnvAPIKey]; key != "" {
		return key
	}
	return s.configStore.GetString(keyAPIKey)
}

// LoadEnv reads a .env file into the credential lookup.
// A missing file is not an error.
func (s *SettingsService) LoadEnv(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	for k, v := range values {
		s.dotenv[k] = v
	}
	return nil
}

// OutputDir returns the configured output directory, or
// ~/DocumentGeneratorOutput when none is set.
func (s *SettingsService) OutputDir() (string, error) {
	if dir := s.configStore.GetString(keyOutputDirectory); dir != "" {
		return dir, nil
	}
	home, err := s.homeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, domain.DefaultOutputDirName), nil
}

// Validate checks that the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Conversion.Engine == "" {
		return fmt.Errorf("%w: conversion engine is empty", domain.ErrInvalidInput)
	}
	if settings.Conversion.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: timeout_seconds must not be negative", domain.ErrInvalidInput)
	}
	if settings.Conversion.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests_per_second must not be negative", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
