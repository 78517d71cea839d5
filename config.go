package pactffi

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/lixenwraith/config"
)

// configPrefix is the TOML table holding the library settings
const configPrefix = "pactffi."

// Config holds the settings shared by every sink of a Context
type Config struct {
	// Record formatting
	Format          string `toml:"format"` // "txt", "json" or "raw"
	ShowTimestamp   bool   `toml:"show_timestamp"`
	ShowLevel       bool   `toml:"show_level"`
	TimestampFormat string `toml:"timestamp_format"`
	Sanitization    string `toml:"sanitization"` // Sanitizer policy, empty selects the one matching Format

	// File sinks
	MaxSizeMB          int64   `toml:"max_size_mb"`          // Rotate after this size, 0 uses the writer default
	MaxBackups         int64   `toml:"max_backups"`          // Rotated files to keep, 0 keeps all
	RetentionPeriodHrs float64 `toml:"retention_period_hrs"` // Delete rotated files older than this, 0 disables
	Compress           bool    `toml:"compress"`             // Gzip rotated files

	// Buffer sinks
	BufferCapacity int64 `toml:"buffer_capacity"` // Bytes retained per buffer sink

	// Error channel
	ErrorMaxLength int64 `toml:"error_max_length"` // Bytes kept of the last error message

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"`
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Format:          "txt",
	ShowTimestamp:   true,
	ShowLevel:       true,
	TimestampFormat: time.RFC3339Nano,
	Sanitization:    "",

	MaxSizeMB:          10,
	MaxBackups:         5,
	RetentionPeriodHrs: 0.0,
	Compress:           false,

	BufferCapacity: 1 << 20,

	ErrorMaxLength: 4096,

	InternalErrorsToStderr: false,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from the [pactffi] table of a TOML
// file. A missing file yields the defaults.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	loader := config.New()

	if err := loader.RegisterStruct(configPrefix, *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, configPrefix, cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig copies values found by the loader into cfg
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides keyed by toml tag
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Float64:
		switch v := value.(type) {
		case float64:
			field.SetFloat(v)
		case int64:
			field.SetFloat(float64(v))
		case int:
			field.SetFloat(float64(v))
		default:
			return fmt.Errorf("expected float64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Format != "txt" && c.Format != "json" && c.Format != "raw" {
		return fmtErrorf("invalid format: '%s' (use txt, json, or raw)", c.Format)
	}

	if strings.TrimSpace(c.TimestampFormat) == "" {
		return fmtErrorf("timestamp_format cannot be empty")
	}

	switch c.Sanitization {
	case "", "raw", "txt", "json":
	default:
		return fmtErrorf("invalid sanitization: '%s' (use raw, txt, or json)", c.Sanitization)
	}

	if c.MaxSizeMB < 0 || c.MaxBackups < 0 {
		return fmtErrorf("file sink limits cannot be negative")
	}

	if c.RetentionPeriodHrs < 0 {
		return fmtErrorf("retention_period_hrs cannot be negative: %f", c.RetentionPeriodHrs)
	}

	if c.BufferCapacity <= 0 {
		return fmtErrorf("buffer_capacity must be positive: %d", c.BufferCapacity)
	}

	if c.ErrorMaxLength < minErrorMaxLength {
		return fmtErrorf("error_max_length must be at least %d: %d", minErrorMaxLength, c.ErrorMaxLength)
	}

	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}
