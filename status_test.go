package pactffi

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want LoggerStatus
	}{
		{nil, LoggerOK},
		{ErrAlreadyApplied, LoggerAlreadyApplied},
		{ErrNotInitialized, LoggerNotInitialized},
		{ErrSpecifierNotUTF8, LoggerSpecifierNotUTF8},
		{ErrUnknownSinkType, LoggerUnknownSinkType},
		{ErrMissingFilePath, LoggerMissingFilePath},
		{ErrInvalidFileSpec, LoggerInvalidFileSpec},
		{ErrCantConstructSink, LoggerCantConstructSink},
		{errors.New("disk on fire"), LoggerCantConstructSink},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, LoggerStatusOf(tt.err))
			if tt.err != nil {
				wrapped := fmt.Errorf("context: %w", tt.err)
				assert.Equal(t, tt.want, LoggerStatusOf(wrapped), "wrapped errors map the same")
			}
		})
	}

	assert.Equal(t, int32(-7), int32(LoggerCantConstructSink))
	assert.Equal(t, "Unknown", LoggerStatus(5).String())
}

func TestInsertStatusOf(t *testing.T) {
	assert.Equal(t, InsertOK, InsertStatusOf(nil))
	assert.Equal(t, InsertKeyExists, InsertStatusOf(fmtErrorf("key 'a': %w", ErrKeyExists)))
	assert.Equal(t, InsertFailed, InsertStatusOf(ErrInvalidHandle))
	assert.Equal(t, "KeyExists", InsertKeyExists.String())
	assert.Equal(t, "Failed", InsertFailed.String())
}
