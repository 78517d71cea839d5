package pactffi

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSinkSpec(t *testing.T) {
	tests := []struct {
		spec    string
		want    SinkSpec
		wantErr error
	}{
		{"stdout", SinkSpec{Kind: SinkStdout}, nil},
		{"stderr", SinkSpec{Kind: SinkStderr}, nil},
		{" buffer ", SinkSpec{Kind: SinkBuffer}, nil},
		{"file /tmp/pact.log", SinkSpec{Kind: SinkFile, Path: "/tmp/pact.log"}, nil},
		{"file   /tmp/with space.log", SinkSpec{Kind: SinkFile, Path: "/tmp/with space.log"}, nil},
		{"file\t/tmp/tab.log", SinkSpec{Kind: SinkFile, Path: "/tmp/tab.log"}, nil},
		{"file", SinkSpec{}, ErrMissingFilePath},
		{"file   ", SinkSpec{}, ErrMissingFilePath},
		{"file /tmp/a|b.log", SinkSpec{}, ErrInvalidFileSpec},
		{"file /tmp/what?.log", SinkSpec{}, ErrInvalidFileSpec},
		{"file /tmp/ctl\x01.log", SinkSpec{}, ErrInvalidFileSpec},
		{"/tmp/bare.log", SinkSpec{}, ErrUnknownSinkType},
		{"syslog", SinkSpec{}, ErrUnknownSinkType},
		{"STDOUT", SinkSpec{}, ErrUnknownSinkType},
		{"stdout extra", SinkSpec{}, ErrUnknownSinkType},
		{"", SinkSpec{}, ErrUnknownSinkType},
		{"file /tmp/\xff.log", SinkSpec{}, ErrSpecifierNotUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParseSinkSpec(tt.spec)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSinkSpecString(t *testing.T) {
	assert.Equal(t, "stdout", SinkSpec{Kind: SinkStdout}.String())
	assert.Equal(t, "file /var/log/pact.log", SinkSpec{Kind: SinkFile, Path: "/var/log/pact.log"}.String())
	assert.Equal(t, "unknown", SinkKind(0).String())
}

func TestOpenSink(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("bad filter", func(t *testing.T) {
		_, err := openSink(SinkSpec{Kind: SinkStdout}, LevelFilter(99), cfg)
		assert.True(t, errors.Is(err, ErrCantConstructSink))
	})

	t.Run("file is created for append", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pact.log")
		s, err := openSink(SinkSpec{Kind: SinkFile, Path: path}, FilterInfo, cfg)
		require.NoError(t, err)
		defer s.close()

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("unopenable file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "dir", "pact.log")
		_, err := openSink(SinkSpec{Kind: SinkFile, Path: path}, FilterInfo, cfg)
		assert.True(t, errors.Is(err, ErrInvalidFileSpec))
	})

	t.Run("directory path", func(t *testing.T) {
		_, err := openSink(SinkSpec{Kind: SinkFile, Path: t.TempDir()}, FilterInfo, cfg)
		assert.True(t, errors.Is(err, ErrInvalidFileSpec))
	})
}

func TestFileSinkWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pact.log")
	require.NoError(t, os.WriteFile(path, []byte("existing line\n"), 0644))

	ctx, err := NewBuilder().ShowTimestamp(false).Build()
	require.NoError(t, err)
	defer ctx.Close()

	ctx.LoggerInit()
	require.NoError(t, ctx.LoggerAttachSink("file "+path, FilterDebug))
	require.NoError(t, ctx.LoggerApply())

	ctx.LogMessage("verifier", "info", "first record")
	ctx.LogMessage("verifier", "trace", "filtered out")
	require.NoError(t, ctx.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.HasPrefix(out, "existing line\n"), "file is appended, not truncated")
	assert.Contains(t, out, `INFO [verifier] "first record"`+"\n")
	assert.NotContains(t, out, "filtered out")
}

func TestRetentionDays(t *testing.T) {
	assert.Equal(t, 0, retentionDays(0))
	assert.Equal(t, 0, retentionDays(-5))
	assert.Equal(t, 1, retentionDays(1))
	assert.Equal(t, 1, retentionDays(24))
	assert.Equal(t, 2, retentionDays(25))
}

func TestMultipleSinksIndependentFilters(t *testing.T) {
	ctx, err := NewBuilder().ShowTimestamp(false).Build()
	require.NoError(t, err)
	defer ctx.Close()

	path := filepath.Join(t.TempDir(), "errors.log")
	ctx.LoggerInit()
	require.NoError(t, ctx.LoggerAttachSink("buffer", FilterDebug))
	require.NoError(t, ctx.LoggerAttachSink("file "+path, FilterError))
	require.NoError(t, ctx.LoggerApply())

	sinks := ctx.Logger().Sinks()
	require.Len(t, sinks, 2)
	assert.Equal(t, SinkBuffer, sinks[0].Spec.Kind, "installed in attach order")
	assert.Equal(t, SinkFile, sinks[1].Spec.Kind)

	ctx.Logger().Info("info only in buffer")
	ctx.Logger().Error("error everywhere")

	buffered := ctx.FetchLogBuffer()
	assert.Contains(t, buffered, `INFO "info only in buffer"`+"\n")
	assert.Contains(t, buffered, `ERROR "error everywhere"`+"\n")

	require.NoError(t, ctx.Close())
	assert.Equal(t, "", ctx.FetchLogBuffer(), "closed logger has no sinks")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `ERROR "error everywhere"`+"\n", string(data))
}
