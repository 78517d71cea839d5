package pactffi

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestContext builds a context whose logger writes untimestamped
// records to a single buffer sink
func createTestContext(t *testing.T, filter LevelFilter) *Context {
	t.Helper()
	ctx, err := NewBuilder().ShowTimestamp(false).Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Close() })

	ctx.LoggerInit()
	require.NoError(t, ctx.LoggerAttachSink("buffer", filter))
	require.NoError(t, ctx.LoggerApply())
	return ctx
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger()

	assert.NotNil(t, logger)
	assert.Empty(t, logger.Sinks())
	assert.False(t, logger.state.Closed.Load())
	assert.Equal(t, DefaultConfig(), logger.GetConfig())
}

func TestLoggerWithoutSinksDiscards(t *testing.T) {
	logger := NewLogger()
	logger.Info("nobody listens")

	stats := logger.Stats()
	assert.Zero(t, stats.TotalLogsProcessed)
	assert.Zero(t, stats.TotalDropped)
	assert.Equal(t, "", logger.FetchBuffer())
}

func TestLoggerApplyConfig(t *testing.T) {
	logger := NewLogger()

	assert.Error(t, logger.ApplyConfig(nil))

	bad := DefaultConfig()
	bad.Format = "xml"
	assert.Error(t, logger.ApplyConfig(bad))

	cfg := DefaultConfig()
	cfg.Format = "json"
	require.NoError(t, logger.ApplyConfig(cfg))

	cfg.Format = "raw"
	assert.Equal(t, "json", logger.GetConfig().Format, "logger keeps its own copy")
}

func TestLoggerLevels(t *testing.T) {
	ctx := createTestContext(t, FilterTrace)
	logger := ctx.Logger()

	logger.Trace("trace message")
	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := logger.FetchBuffer()
	assert.Contains(t, out, "TRACE \"trace message\"\n")
	assert.Contains(t, out, "DEBUG \"debug message\"\n")
	assert.Contains(t, out, "INFO \"info message\"\n")
	assert.Contains(t, out, "WARN \"warn message\"\n")
	assert.Contains(t, out, "ERROR \"error message\"\n")
}

func TestLoggerFilter(t *testing.T) {
	ctx := createTestContext(t, FilterWarn)
	logger := ctx.Logger()

	logger.Info("hidden")
	logger.Debug("hidden too")
	logger.Warn("shown")
	logger.Error("shown as well")

	out := logger.FetchBuffer()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN shown\n")
	assert.Contains(t, out, "ERROR \"shown as well\"\n")
}

func TestLoggerSource(t *testing.T) {
	ctx := createTestContext(t, FilterInfo)
	ctx.Logger().LogSource(LevelInfo, "verifier", "state setup", "name", "user exists")

	assert.Equal(t, `INFO [verifier] "state setup" name "user exists"`+"\n", ctx.FetchLogBuffer())
}

func TestLoggerJSONFormat(t *testing.T) {
	ctx, err := NewBuilder().Format("json").ShowTimestamp(false).Build()
	require.NoError(t, err)
	defer ctx.Close()

	ctx.LoggerInit()
	require.NoError(t, ctx.LoggerAttachSink("buffer", FilterInfo))
	require.NoError(t, ctx.LoggerApply())

	ctx.Logger().LogSource(LevelWarn, "message", "invalid handle")
	ctx.Logger().LogStructured(LevelInfo, "state applied", map[string]any{"count": 2})

	out := ctx.FetchLogBuffer()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"source":"message"`)
	assert.Contains(t, out, `"invalid handle"`)
	assert.Contains(t, out, `"message":"state applied"`)
	assert.Contains(t, out, `"count":2`)
}

func TestLoggerWriteRaw(t *testing.T) {
	ctx := createTestContext(t, FilterInfo)
	ctx.Logger().Write("raw", "data")

	assert.Equal(t, "raw data", ctx.FetchLogBuffer())
}

func TestLoggerConfigChangeReachesSinks(t *testing.T) {
	ctx := createTestContext(t, FilterInfo)
	logger := ctx.Logger()

	logger.Info("before")

	cfg := logger.GetConfig()
	cfg.ShowLevel = false
	require.NoError(t, logger.ApplyConfig(cfg))
	logger.Info("after")

	assert.Equal(t, "INFO before\nafter\n", logger.FetchBuffer())
}

func TestLoggerDropAccounting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShowTimestamp = false
	cfg.BufferCapacity = 256
	ctx, err := NewContext(cfg)
	require.NoError(t, err)
	defer ctx.Close()

	ctx.LoggerInit()
	require.NoError(t, ctx.LoggerAttachSink("buffer", FilterInfo))
	require.NoError(t, ctx.LoggerApply())
	logger := ctx.Logger()

	// a record larger than the buffer cannot be written
	logger.Info(strings.Repeat("x", 300))
	stats := logger.Stats()
	assert.Equal(t, uint64(1), stats.DroppedLogs)
	assert.Equal(t, uint64(1), stats.TotalDropped)

	logger.Info("ok")
	stats = logger.Stats()
	assert.Zero(t, stats.DroppedLogs, "drop report resets the counter")
	assert.Equal(t, uint64(1), stats.TotalDropped)
	assert.Contains(t, logger.FetchBuffer(), `"Logs were dropped" dropped_count 1`)
}

func TestLoggerBufferEviction(t *testing.T) {
	buf := newLogBuffer(16)

	_, err := buf.Write([]byte("aaaaaaa\n"))
	require.NoError(t, err)
	_, err = buf.Write([]byte("bbbbbbb\n"))
	require.NoError(t, err)
	_, err = buf.Write([]byte("ccc\n"))
	require.NoError(t, err)
	assert.Equal(t, "bbbbbbb\nccc\n", buf.String(), "whole records are evicted")

	_, err = buf.Write([]byte(strings.Repeat("z", 17)))
	assert.Error(t, err)
}

func TestLoggerClose(t *testing.T) {
	ctx := createTestContext(t, FilterInfo)
	logger := ctx.Logger()

	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close(), "second close is a no-op")

	logger.Info("after close")
	assert.Empty(t, logger.Sinks())
	assert.Equal(t, "", logger.FetchBuffer())

	err := logger.install(nil)
	assert.Error(t, err)
}

func TestLoggerInstallOnce(t *testing.T) {
	logger := NewLogger()
	s, err := openSink(SinkSpec{Kind: SinkBuffer}, FilterInfo, logger.getConfig())
	require.NoError(t, err)

	require.NoError(t, logger.install([]*sink{s}))
	err = logger.install([]*sink{s})
	assert.True(t, errors.Is(err, ErrAlreadyApplied))
	assert.Len(t, logger.Sinks(), 1)
}

func TestLoggerConcurrentWrites(t *testing.T) {
	ctx := createTestContext(t, FilterInfo)
	logger := ctx.Logger()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				logger.Info("concurrent", i)
			}
		}()
	}
	wg.Wait()

	out := logger.FetchBuffer()
	assert.Equal(t, 800, strings.Count(out, "\n"))
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		assert.True(t, strings.HasPrefix(line, "INFO concurrent "), "records never interleave: %q", line)
	}
	assert.Equal(t, uint64(800), logger.Stats().TotalLogsProcessed)
}
