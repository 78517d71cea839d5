package compat

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/pactffi"
)

// fasthttpSource names records coming from fasthttp
const fasthttpSource = "fasthttp"

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// FastHTTPAdapter routes a fasthttp server's logging into a pactffi Logger
type FastHTTPAdapter struct {
	logger        *pactffi.Logger
	defaultLevel  int64
	levelDetector func(string) (int64, bool) // Detects a level from message text
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(logger *pactffi.Logger, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		logger:        logger,
		defaultLevel:  pactffi.LevelInfo,
		levelDetector: DetectLogLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level used when no level is detected
func WithDefaultLevel(level int64) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector replaces the message based level detection. A nil
// detector logs everything at the default level.
func WithLevelDetector(detector func(string) (int64, bool)) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected, ok := a.levelDetector(msg); ok {
			level = detected
		}
	}

	a.logger.LogSource(level, fasthttpSource, msg)
}

// DetectLogLevel guesses a level from keywords in msg. It reports false when
// no keyword matches.
func DetectLogLevel(msg string) (int64, bool) {
	msgLower := strings.ToLower(msg)

	switch {
	case containsAny(msgLower, "error", "failed", "fatal", "panic"):
		return pactffi.LevelError, true
	case containsAny(msgLower, "warn", "deprecated"):
		return pactffi.LevelWarn, true
	case containsAny(msgLower, "debug"):
		return pactffi.LevelDebug, true
	case containsAny(msgLower, "trace"):
		return pactffi.LevelTrace, true
	default:
		return 0, false
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
