package cacheinfra

import "time"

// Config holds the settings shared by the cache backend adapters.
type Config struct {
	// CleanupInterval sets how often the in-memory backend sweeps expired
	// entries. Expired entries are also dropped lazily on read, so the
	// sweep only bounds memory, not correctness. Must be positive.
	CleanupInterval time.Duration

	// QueryTimeout is the per-operation timeout applied by I/O-backed
	// adapters (Redis). Prevents indefinite hangs on unresponsive
	// storage. Must be positive.
	QueryTimeout time.Duration

	// Prefix namespaces every key written by the Redis adapter. Empty
	// means no prefix. The in-memory adapter ignores it.
	Prefix string
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		CleanupInterval: time.Minute,
		QueryTimeout:    5 * time.Second,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.CleanupInterval <= 0 {
		return &ConfigError{Field: "CleanupInterval", Message: "must be greater than 0"}
	}
	if c.QueryTimeout <= 0 {
		return &ConfigError{Field: "QueryTimeout", Message: "must be greater than 0"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
