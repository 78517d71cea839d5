package pactffi

import (
	"os"
)

// Environment variables read when the default context is created
const (
	EnvConfigFile      = "PACTFFI_CONFIG"
	EnvConfigOverrides = "PACTFFI_CONFIG_OVERRIDES"
)

// Global instance for package-level functions
var defaultContext = newDefaultContext()

// newDefaultContext builds the process context from the environment. A bad
// configuration falls back to the defaults and leaves the reason in the
// error channel.
func newDefaultContext() *Context {
	cfg, cfgErr := configFromEnv()
	if cfgErr != nil {
		cfg = DefaultConfig()
	}

	ctx, err := NewContext(cfg)
	if err != nil {
		ctx, _ = NewContext(nil)
		cfgErr = combineErrors(cfgErr, err)
	}
	if cfgErr != nil {
		ctx.ReportError("config", cfgErr)
	}
	return ctx
}

// configFromEnv loads the file named by PACTFFI_CONFIG and applies the
// comma separated PACTFFI_CONFIG_OVERRIDES
func configFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	if path := os.Getenv(EnvConfigFile); path != "" {
		loaded, err := NewConfigFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if overrides := splitOverrides(os.Getenv(EnvConfigOverrides)); len(overrides) > 0 {
		return cfg.WithOverrides(overrides...)
	}
	return cfg, nil
}

// Default returns the process-wide context used by the C boundary
func Default() *Context {
	return defaultContext
}

// Default package-level functions that delegate to the default context

// LoggerInit starts collecting sinks on the default context
func LoggerInit() {
	defaultContext.LoggerInit()
}

// LoggerAttachSink adds a sink to the default context's pending configuration
func LoggerAttachSink(spec string, filter LevelFilter) error {
	return defaultContext.LoggerAttachSink(spec, filter)
}

// LoggerApply installs the default context's pending sinks
func LoggerApply() error {
	return defaultContext.LoggerApply()
}

// FetchLogBuffer returns what the default context's buffer sinks captured
func FetchLogBuffer() string {
	return defaultContext.FetchLogBuffer()
}

// LogMessage logs through the default context
func LogMessage(source, level, message string) {
	defaultContext.LogMessage(source, level, message)
}

// CopyErrorMessage copies the default context's last error into buf
func CopyErrorMessage(buf []byte) int {
	return defaultContext.CopyErrorMessage(buf)
}

// Trace logs a message at trace level
func Trace(args ...any) {
	defaultContext.logger.Trace(args...)
}

// Debug logs a message at debug level
func Debug(args ...any) {
	defaultContext.logger.Debug(args...)
}

// Info logs a message at info level
func Info(args ...any) {
	defaultContext.logger.Info(args...)
}

// Warn logs a message at warning level
func Warn(args ...any) {
	defaultContext.logger.Warn(args...)
}

// Error logs a message at error level
func Error(args ...any) {
	defaultContext.logger.Error(args...)
}
