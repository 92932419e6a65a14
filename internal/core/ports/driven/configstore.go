package driven

// ConfigStore holds settings as dot-separated keys ("conversion.api_key").
// Typed getters return the zero value when a key is absent or has another type.
type ConfigStore interface {
	// Get returns the raw value and whether the key exists.
	Get(key string) (any, bool)

	GetString(key string) string

	// GetInt truncates floating-point values.
	GetInt(key string) int

	// GetFloat widens integer values.
	GetFloat(key string) float64

	GetBool(key string) bool

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save writes the current values to storage.
	Save() error

	// Load replaces the current values with those in storage.
	Load() error

	// Path returns where the values are stored.
	Path() string
}
