package pactffi

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyOverride applies "key=value" overrides to the logger's current
// configuration. The configuration is cloned, so a failed override leaves
// the logger unchanged.
//
// Example:
//
//	err := ctx.Logger().ApplyOverride(
//	    "format=json",
//	    "show_timestamp=false",
//	)
func (l *Logger) ApplyOverride(overrides ...string) error {
	cfg, err := l.getConfig().WithOverrides(overrides...)
	if err != nil {
		return err
	}
	return l.ApplyConfig(cfg)
}

// WithOverrides returns a copy of c with "key=value" overrides applied.
// Every override is attempted and all failures are reported together.
func (c *Config) WithOverrides(overrides ...string) (*Config, error) {
	cfg := c.Clone()

	var errs []error
	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := applyConfigField(cfg, key, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, combineConfigErrors(errs)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// combineConfigErrors combines multiple configuration errors into a single error.
func combineConfigErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var sb strings.Builder
	sb.WriteString(errorPrefix + "multiple configuration errors:")
	for i, err := range errs {
		errMsg := strings.TrimPrefix(err.Error(), errorPrefix)
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	// Record formatting
	case "format":
		cfg.Format = value
	case "show_timestamp":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for show_timestamp '%s': %w", value, err)
		}
		cfg.ShowTimestamp = boolVal
	case "show_level":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for show_level '%s': %w", value, err)
		}
		cfg.ShowLevel = boolVal
	case "timestamp_format":
		cfg.TimestampFormat = value
	case "sanitization":
		cfg.Sanitization = value

	// File sinks
	case "max_size_mb":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for max_size_mb '%s': %w", value, err)
		}
		cfg.MaxSizeMB = intVal
	case "max_backups":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for max_backups '%s': %w", value, err)
		}
		cfg.MaxBackups = intVal
	case "retention_period_hrs":
		floatVal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmtErrorf("invalid float value for retention_period_hrs '%s': %w", value, err)
		}
		cfg.RetentionPeriodHrs = floatVal
	case "compress":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for compress '%s': %w", value, err)
		}
		cfg.Compress = boolVal

	// Buffer sinks
	case "buffer_capacity":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for buffer_capacity '%s': %w", value, err)
		}
		cfg.BufferCapacity = intVal

	// Error channel
	case "error_max_length":
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for error_max_length '%s': %w", value, err)
		}
		cfg.ErrorMaxLength = intVal

	// Internal error handling
	case "internal_errors_to_stderr":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for internal_errors_to_stderr '%s': %w", value, err)
		}
		cfg.InternalErrorsToStderr = boolVal

	default:
		return fmtErrorf("unknown configuration key '%s'", key)
	}

	return nil
}
