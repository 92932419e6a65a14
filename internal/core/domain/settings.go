package domain

import "time"

// Conversion service endpoints.
const (
	DefaultConversionBaseURL = "https://api.cloudconvert.com"
	DefaultConversionSyncURL = "https://sync.api.cloudconvert.com"
	SandboxConversionBaseURL = "https://api.sandbox.cloudconvert.com"
	SandboxConversionSyncURL = "https://sync.api.sandbox.cloudconvert.com"
)

// Conversion defaults.
const (
	DefaultConversionEngine  = "office"
	DefaultOutputFormat      = "pdf"
	DefaultRequestsPerSecond = 5.0
	DefaultOutputDirName     = "DocumentGeneratorOutput"
)

// ConversionSettings configures the remote conversion service.
type ConversionSettings struct {
	// APIKey is the service credential. Stored in plaintext.
	APIKey string

	// BaseURL is the REST endpoint. Empty selects the default for Sandbox.
	BaseURL string

	// SyncURL is the blocking-wait endpoint. Empty selects the default for Sandbox.
	SyncURL string

	// Sandbox selects the service's sandbox environment.
	Sandbox bool

	// Engine is the conversion engine profile.
	Engine string

	// VerifyPDF validates downloaded files before attaching them.
	VerifyPDF bool

	// TimeoutSeconds bounds each HTTP request. Zero means no local timeout.
	TimeoutSeconds int

	// RequestsPerSecond throttles calls to the REST endpoint.
	RequestsPerSecond float64
}

// IsConfigured returns true if a credential is present.
func (c ConversionSettings) IsConfigured() bool {
	return c.APIKey != ""
}

// Endpoints returns the effective REST and wait endpoints.
func (c ConversionSettings) Endpoints() (baseURL, syncURL string) {
	baseURL, syncURL = DefaultConversionBaseURL, DefaultConversionSyncURL
	if c.Sandbox {
		baseURL, syncURL = SandboxConversionBaseURL, SandboxConversionSyncURL
	}
	if c.BaseURL != "" {
		baseURL = c.BaseURL
	}
	if c.SyncURL != "" {
		syncURL = c.SyncURL
	}
	return baseURL, syncURL
}

// Timeout returns the per-request timeout as a duration.
func (c ConversionSettings) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// OutputSettings configures where documents are written.
type OutputSettings struct {
	// Directory is the default output directory.
	Directory string
}

// LoggingSettings configures the logger.
type LoggingSettings struct {
	// File enables a rotating JSON log file at this path.
	File string

	// Verbose enables debug logging.
	Verbose bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	Conversion ConversionSettings
	Output     OutputSettings
	Logging    LoggingSettings
}

// DefaultAppSettings returns the default application settings.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Conversion: ConversionSettings{
			Engine:            DefaultConversionEngine,
			VerifyPDF:         true,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
	}
}
