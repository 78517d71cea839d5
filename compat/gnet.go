package compat

import (
	"fmt"
	"os"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/lixenwraith/pactffi"
)

// gnetSource names records coming from gnet
const gnetSource = "gnet"

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter routes gnet's engine logging into a pactffi Logger
type GnetAdapter struct {
	logger       *pactffi.Logger
	fatalHandler func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(logger *pactffi.Logger, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		logger: logger,
		fatalHandler: func(msg string) {
			os.Exit(1) // gnet expects Fatalf not to return
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.logger.LogSource(pactffi.LevelDebug, gnetSource, fmt.Sprintf(format, args...))
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.logger.LogSource(pactffi.LevelInfo, gnetSource, fmt.Sprintf(format, args...))
}

// Warnf logs at warn level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.logger.LogSource(pactffi.LevelWarn, gnetSource, fmt.Sprintf(format, args...))
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.logger.LogSource(pactffi.LevelError, gnetSource, fmt.Sprintf(format, args...))
}

// Fatalf logs at error level and triggers the fatal handler. Records are
// written synchronously, so nothing is lost if the handler exits.
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.logger.LogSource(pactffi.LevelError, gnetSource, msg, "fatal", true)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
