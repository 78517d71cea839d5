package pactffi

import (
	"fmt"
	"strings"
)

// errorPrefix marks every error and internal diagnostic produced by the package
const errorPrefix = "pactffi: "

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, errorPrefix) {
		format = errorPrefix + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return fmt.Errorf("%w; %w", err1, err2)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

// Level converts level string to numeric constant.
func Level(levelStr string) (int64, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmtErrorf("invalid level string: '%s' (use trace, debug, info, warn, error)", levelStr)
	}
}

// ParseLevelFilter converts a filter name ("off", "error" ... "trace") to a LevelFilter
func ParseLevelFilter(s string) (LevelFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return FilterOff, nil
	case "error":
		return FilterError, nil
	case "warn":
		return FilterWarn, nil
	case "info":
		return FilterInfo, nil
	case "debug":
		return FilterDebug, nil
	case "trace":
		return FilterTrace, nil
	default:
		return FilterOff, fmtErrorf("invalid level filter: '%s' (use off, error, warn, info, debug, trace)", s)
	}
}

// splitOverrides splits a comma separated override list, skipping empty entries
func splitOverrides(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
