package pactffi

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Logger dispatches records to the sinks installed by a Registry. Writes
// happen on the caller's goroutine; each sink serializes its own writes.
type Logger struct {
	currentConfig atomic.Value // stores *Config
	state         State
	installMu     sync.Mutex
}

// NewLogger creates a Logger with default settings and no sinks
func NewLogger() *Logger {
	l := &Logger{}
	l.currentConfig.Store(DefaultConfig())
	l.state.ActiveSinks.Store(sinkSet{})
	return l
}

// ApplyConfig replaces the record formatting and sink settings. Installed
// sinks pick up the formatting on their next write; file rotation settings
// apply to sinks attached afterwards.
func (l *Logger) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}
	if err := cfg.validate(); err != nil {
		return fmtErrorf("invalid configuration: %w", err)
	}
	l.currentConfig.Store(cfg.Clone())
	return nil
}

// GetConfig returns a copy of current configuration
func (l *Logger) GetConfig() *Config {
	return l.getConfig().Clone()
}

// Sinks describes the installed sinks in installation order
func (l *Logger) Sinks() []SinkInfo {
	sinks := l.getSinks()
	out := make([]SinkInfo, len(sinks))
	for i, s := range sinks {
		out[i] = s.info()
	}
	return out
}

// FetchBuffer returns the contents of every buffer sink, in installation order
func (l *Logger) FetchBuffer() string {
	var sb strings.Builder
	for _, s := range l.getSinks() {
		if s.spec.Kind == SinkBuffer {
			sb.WriteString(s.contents())
		}
	}
	return sb.String()
}

// Trace logs a message at trace level
func (l *Logger) Trace(args ...any) {
	l.log(l.getFlags(), LevelTrace, "", args...)
}

// Debug logs a message at debug level
func (l *Logger) Debug(args ...any) {
	l.log(l.getFlags(), LevelDebug, "", args...)
}

// Info logs a message at info level
func (l *Logger) Info(args ...any) {
	l.log(l.getFlags(), LevelInfo, "", args...)
}

// Warn logs a message at warning level
func (l *Logger) Warn(args ...any) {
	l.log(l.getFlags(), LevelWarn, "", args...)
}

// Error logs a message at error level
func (l *Logger) Error(args ...any) {
	l.log(l.getFlags(), LevelError, "", args...)
}

// LogSource logs a message attributed to a named component
func (l *Logger) LogSource(level int64, source string, args ...any) {
	l.log(l.getFlags(), level, source, args...)
}

// LogStructured logs a message with structured fields as proper JSON
func (l *Logger) LogStructured(level int64, message string, fields map[string]any) {
	l.log(l.getFlags()|FlagStructuredJSON, level, "", message, fields)
}

// Write outputs raw, unformatted data regardless of configured format.
// Writes args as space-separated strings without a trailing newline.
func (l *Logger) Write(args ...any) {
	l.log(FlagRaw, LevelInfo, "", args...)
}

// install makes sinks the active set. It fails if sinks were already
// installed or the logger is closed.
func (l *Logger) install(sinks []*sink) error {
	l.installMu.Lock()
	defer l.installMu.Unlock()

	if l.state.Closed.Load() {
		return fmtErrorf("logger is closed")
	}
	if len(l.getSinks()) > 0 {
		return fmtErrorf("sinks already installed: %w", ErrAlreadyApplied)
	}

	installed := make([]*sink, len(sinks))
	copy(installed, sinks)
	l.state.ActiveSinks.Store(sinkSet{sinks: installed})
	return nil
}

// getConfig returns the current configuration (thread-safe)
func (l *Logger) getConfig() *Config {
	return l.currentConfig.Load().(*Config)
}

// getSinks returns the installed sinks
func (l *Logger) getSinks() []*sink {
	return l.state.ActiveSinks.Load().(sinkSet).sinks
}
