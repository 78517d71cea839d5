package formatter

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/pactffi/sanitizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fluent API", func(t *testing.T) {
		f := New(sanitizer.New().Policy(sanitizer.PolicyRaw)).
			Type("json").
			TimestampFormat(time.RFC3339).
			ShowLevel(true).
			ShowTimestamp(true)

		data := f.Format(0, timestamp, 0, "", []any{"test"})
		assert.Contains(t, string(data), `"level":"INFO"`)
		assert.Contains(t, string(data), `"time":"2024-01-01T12:00:00Z"`)
	})

	t.Run("txt format", func(t *testing.T) {
		f := New(sanitizer.New().Policy(sanitizer.PolicyTxt)).Type("txt")

		data := f.Format(FlagDefault, timestamp, -8, "message", []any{"created", 123})
		str := string(data)

		assert.Contains(t, str, "2024-01-01")
		assert.Contains(t, str, "TRACE [message] created 123")
		assert.True(t, strings.HasSuffix(str, "\n"))
	})

	t.Run("txt hides level and timestamp when disabled", func(t *testing.T) {
		f := New().ShowLevel(false).ShowTimestamp(false)
		data := f.Format(0, timestamp, 0, "", []any{"bare"})
		assert.Equal(t, "bare\n", string(data))
	})

	t.Run("json format", func(t *testing.T) {
		f := New(sanitizer.New().Policy(sanitizer.PolicyJSON)).Type("json")

		data := f.Format(FlagDefault, timestamp, 4, "registry", []any{"warning", true})

		var result map[string]any
		require.NoError(t, json.Unmarshal(data[:len(data)-1], &result))

		assert.Equal(t, "WARN", result["level"])
		assert.Equal(t, "registry", result["source"])
		fields := result["fields"].([]any)
		assert.Equal(t, "warning", fields[0])
		assert.Equal(t, true, fields[1])
	})

	t.Run("raw format", func(t *testing.T) {
		f := New(sanitizer.New().Policy(sanitizer.PolicyRaw)).Type("raw")

		data := f.Format(0, timestamp, 0, "", []any{"raw", "data", 42})
		str := string(data)

		assert.Equal(t, "raw data 42", str)
		assert.False(t, strings.HasSuffix(str, "\n"))
	})

	t.Run("flag override raw", func(t *testing.T) {
		f := New().Type("json")
		data := f.Format(FlagRaw, timestamp, 0, "", []any{"forced", "raw"})
		assert.Equal(t, "forced raw", string(data))
	})

	t.Run("structured json", func(t *testing.T) {
		f := New(sanitizer.New().Policy(sanitizer.PolicyJSON)).Type("json")

		fields := map[string]any{"handle": "0x1", "count": 42}
		data := f.Format(FlagStructuredJSON|FlagDefault, timestamp, 0, "",
			[]any{"metadata inserted", fields})

		var result map[string]any
		require.NoError(t, json.Unmarshal(data[:len(data)-1], &result))

		assert.Equal(t, "metadata inserted", result["message"])
		assert.Equal(t, map[string]any{"handle": "0x1", "count": float64(42)}, result["fields"])
	})

	t.Run("special characters escaping", func(t *testing.T) {
		f := New(sanitizer.New().Policy(sanitizer.PolicyJSON)).Type("json")

		data := f.Format(FlagDefault, timestamp, 0, "", []any{"test\n\r\t\"\\message"})
		assert.Contains(t, string(data), `test\n\r\t\"\\message`)

		var result map[string]any
		assert.NoError(t, json.Unmarshal(data[:len(data)-1], &result))
	})

	t.Run("error type handling", func(t *testing.T) {
		f := New().Type("txt")
		data := f.Format(FlagDefault, timestamp, 8, "", []any{errors.New("handle not found")})
		assert.Contains(t, string(data), "ERROR")
		assert.Contains(t, string(data), "handle not found")
	})

	t.Run("buffer reuse does not leak previous record", func(t *testing.T) {
		f := New().ShowTimestamp(false)
		first := string(f.Format(0, timestamp, 0, "", []any{"a-long-first-record"}))
		second := string(f.Format(0, timestamp, 0, "", []any{"b"}))
		assert.Equal(t, "INFO a-long-first-record\n", first)
		assert.Equal(t, "INFO b\n", second)
	})
}

func TestLevelToString(t *testing.T) {
	tests := []struct {
		level    int64
		expected string
	}{
		{-8, "TRACE"},
		{-4, "DEBUG"},
		{0, "INFO"},
		{4, "WARN"},
		{8, "ERROR"},
		{999, "LEVEL(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevelToString(tt.level))
		})
	}
}
