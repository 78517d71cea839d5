package pactffi

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryStateMachine(t *testing.T) {
	logger := NewLogger()
	r := NewRegistry(logger)
	assert.Equal(t, StateUninitialized, r.State())

	t.Run("attach before init", func(t *testing.T) {
		err := r.AttachSink("stdout", FilterInfo)
		assert.True(t, errors.Is(err, ErrNotInitialized))
		assert.Equal(t, LoggerNotInitialized, LoggerStatusOf(err))
	})

	t.Run("apply before init", func(t *testing.T) {
		err := r.Apply()
		assert.True(t, errors.Is(err, ErrNotInitialized))
	})

	r.Init()
	assert.Equal(t, StateCollecting, r.State())

	require.NoError(t, r.AttachSink("buffer", FilterDebug))
	require.NoError(t, r.AttachSink("stderr", FilterError))
	pending := r.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, SinkBuffer, pending[0].Spec.Kind)
	assert.Equal(t, FilterError, pending[1].Filter)

	require.NoError(t, r.Apply())
	assert.Equal(t, StateApplied, r.State())
	assert.Empty(t, r.Pending())
	assert.Len(t, logger.Sinks(), 2)

	t.Run("attach after apply", func(t *testing.T) {
		err := r.AttachSink("stdout", FilterInfo)
		assert.True(t, errors.Is(err, ErrAlreadyApplied))
		assert.Equal(t, LoggerAlreadyApplied, LoggerStatusOf(err))
		assert.Len(t, logger.Sinks(), 2, "installed set is unchanged")
	})

	t.Run("second apply", func(t *testing.T) {
		err := r.Apply()
		assert.True(t, errors.Is(err, ErrAlreadyApplied))
	})

	t.Run("init after apply validates again", func(t *testing.T) {
		r.Init()
		assert.Equal(t, StateCollecting, r.State())

		assert.Equal(t, LoggerUnknownSinkType, LoggerStatusOf(r.AttachSink("/tmp/foo.log", FilterInfo)))
		assert.Equal(t, LoggerInvalidFileSpec, LoggerStatusOf(r.AttachSink("file /tmp?></foo.log", FilterInfo)))
		require.NoError(t, r.AttachSink("stdout", FilterInfo))
		assert.Len(t, r.Pending(), 1)

		err := r.Apply()
		assert.True(t, errors.Is(err, ErrAlreadyApplied))
		assert.Equal(t, StateApplied, r.State())
		assert.Empty(t, r.Pending())
		assert.Len(t, logger.Sinks(), 2, "installed set is unchanged")
	})

	t.Run("attach after failed reapply", func(t *testing.T) {
		err := r.AttachSink("stdout", FilterInfo)
		assert.Equal(t, LoggerAlreadyApplied, LoggerStatusOf(err))
	})
}

func TestRegistryInitDiscardsPending(t *testing.T) {
	logger := NewLogger()
	r := NewRegistry(logger)

	r.Init()
	require.NoError(t, r.AttachSink("stdout", FilterInfo))
	require.NoError(t, r.AttachSink("file "+filepath.Join(t.TempDir(), "a.log"), FilterInfo))

	r.Init()
	assert.Empty(t, r.Pending())
	assert.Equal(t, StateCollecting, r.State())

	require.NoError(t, r.AttachSink("buffer", FilterInfo))
	require.NoError(t, r.Apply())

	sinks := logger.Sinks()
	require.Len(t, sinks, 1)
	assert.Equal(t, SinkBuffer, sinks[0].Spec.Kind)
}

func TestRegistryRejectedSinkNotAdded(t *testing.T) {
	r := NewRegistry(NewLogger())
	r.Init()

	tests := []struct {
		spec   string
		filter LevelFilter
		want   LoggerStatus
	}{
		{"carrier-pigeon", FilterInfo, LoggerUnknownSinkType},
		{"file", FilterInfo, LoggerMissingFilePath},
		{"file /tmp/bad*name.log", FilterInfo, LoggerInvalidFileSpec},
		{"file " + filepath.Join(t.TempDir(), "no", "such", "dir.log"), FilterInfo, LoggerInvalidFileSpec},
		{"stdout\xfe", FilterInfo, LoggerSpecifierNotUTF8},
		{"stdout", LevelFilter(-3), LoggerCantConstructSink},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			err := r.AttachSink(tt.spec, tt.filter)
			require.Error(t, err)
			assert.Equal(t, tt.want, LoggerStatusOf(err))
		})
	}
	assert.Empty(t, r.Pending())
}

func TestRegistryApplyWithNoSinks(t *testing.T) {
	logger := NewLogger()
	r := NewRegistry(logger)
	r.Init()

	require.NoError(t, r.Apply())
	assert.Equal(t, StateApplied, r.State())
	assert.Empty(t, logger.Sinks())
	assert.True(t, errors.Is(r.AttachSink("stdout", FilterInfo), ErrAlreadyApplied))
}

func TestRegistryConcurrentApply(t *testing.T) {
	logger := NewLogger()
	r := NewRegistry(logger)
	r.Init()
	require.NoError(t, r.AttachSink("buffer", FilterInfo))

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Apply() == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded, "exactly one apply wins")
	assert.Len(t, logger.Sinks(), 1)
}

func TestRegistryStateString(t *testing.T) {
	assert.Equal(t, "Uninitialized", StateUninitialized.String())
	assert.Equal(t, "Collecting", StateCollecting.String())
	assert.Equal(t, "Applied", StateApplied.String())
	assert.Equal(t, "RegistryState(9)", RegistryState(9).String())
}

func TestLoggerStats(t *testing.T) {
	ctx := createTestContext(t, FilterInfo)
	logger := ctx.Logger()

	logger.Info("one")
	logger.Debug("filtered")
	logger.Info("two")

	stats := logger.Stats()
	assert.Equal(t, 1, stats.Sinks)
	assert.Equal(t, uint64(2), stats.TotalLogsProcessed, "filtered records are not counted")
	assert.Zero(t, stats.TotalDropped)
}
