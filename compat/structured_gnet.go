package compat

import (
	"fmt"
	"regexp"

	"github.com/lixenwraith/pactffi"
)

var (
	// verbPattern matches printf verbs and the %% escape
	verbPattern = regexp.MustCompile(`%%|%[-+# 0-9.]*[a-zA-Z]`)
	// keyedVerbPattern matches "key=%v" and "key: %v"
	keyedVerbPattern = regexp.MustCompile(`(\w+)\s*[:=]\s*(%[-+# 0-9.]*[a-zA-Z])`)
)

// extractFields formats the message and pulls out the arguments bound to
// "key=%v" style verbs. fields is nil when nothing could be bound.
func extractFields(format string, args []any) (string, map[string]any) {
	msg := fmt.Sprintf(format, args...)

	// arg index of every verb, keyed by its offset in format
	argAt := make(map[int]int)
	next := 0
	for _, loc := range verbPattern.FindAllStringIndex(format, -1) {
		if format[loc[0]:loc[1]] == "%%" {
			continue
		}
		argAt[loc[0]] = next
		next++
	}
	if next != len(args) {
		return msg, nil
	}

	var fields map[string]any
	for _, m := range keyedVerbPattern.FindAllStringSubmatchIndex(format, -1) {
		idx, ok := argAt[m[4]]
		if !ok {
			continue
		}
		if fields == nil {
			fields = make(map[string]any)
		}
		fields[format[m[2]:m[3]]] = args[idx]
	}
	return msg, fields
}

// StructuredGnetAdapter is a GnetAdapter that records "key=%v" arguments as
// structured fields
type StructuredGnetAdapter struct {
	*GnetAdapter
}

// NewStructuredGnetAdapter creates a gnet adapter with structured field extraction
func NewStructuredGnetAdapter(logger *pactffi.Logger, opts ...GnetOption) *StructuredGnetAdapter {
	return &StructuredGnetAdapter{GnetAdapter: NewGnetAdapter(logger, opts...)}
}

func (a *StructuredGnetAdapter) logf(level int64, format string, args []any) {
	msg, fields := extractFields(format, args)
	if fields == nil {
		a.logger.LogSource(level, gnetSource, msg)
		return
	}
	fields["source"] = gnetSource
	a.logger.LogStructured(level, msg, fields)
}

// Debugf logs with structured field extraction
func (a *StructuredGnetAdapter) Debugf(format string, args ...any) {
	a.logf(pactffi.LevelDebug, format, args)
}

// Infof logs with structured field extraction
func (a *StructuredGnetAdapter) Infof(format string, args ...any) {
	a.logf(pactffi.LevelInfo, format, args)
}

// Warnf logs with structured field extraction
func (a *StructuredGnetAdapter) Warnf(format string, args ...any) {
	a.logf(pactffi.LevelWarn, format, args)
}

// Errorf logs with structured field extraction
func (a *StructuredGnetAdapter) Errorf(format string, args ...any) {
	a.logf(pactffi.LevelError, format, args)
}
