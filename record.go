package pactffi

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// logRecord represents a single log entry
type logRecord struct {
	Flags           int64
	TimeStamp       time.Time
	Level           int64
	Source          string
	Args            []any
	unreportedDrops uint64 // Dropped log tracker
}

// getFlags from config
func (l *Logger) getFlags() int64 {
	var flags int64 = 0
	cfg := l.getConfig()

	if cfg.ShowLevel {
		flags |= FlagShowLevel
	}
	if cfg.ShowTimestamp {
		flags |= FlagShowTimestamp
	}
	return flags
}

// log builds a record and hands it to the installed sinks
func (l *Logger) log(flags int64, level int64, source string, args ...any) {
	if l.state.Closed.Load() {
		return
	}
	if len(l.getSinks()) == 0 {
		return
	}

	l.dispatch(logRecord{
		Flags:     flags,
		TimeStamp: time.Now(),
		Level:     level,
		Source:    source,
		Args:      args,
	})
}

// dispatch writes a record and reports earlier drops once a write succeeds
func (l *Logger) dispatch(record logRecord) {
	if !l.writeRecord(record) {
		l.handleFailedWrite(record)
		return
	}

	if record.unreportedDrops > 0 {
		return
	}

	// Get number of dropped logs and reset the counter to zero
	if droppedCount := l.state.DroppedLogs.Swap(0); droppedCount > 0 {
		dropRecord := logRecord{
			Flags:           FlagDefault,
			TimeStamp:       time.Now(),
			Level:           LevelError,
			Source:          "logger",
			Args:            []any{"Logs were dropped", "dropped_count", droppedCount},
			unreportedDrops: droppedCount,
		}
		l.dispatch(dropRecord)
	}
}

// writeRecord writes to every sink whose filter allows the record. It
// returns false if any write failed.
func (l *Logger) writeRecord(record logRecord) bool {
	cfg := l.getConfig()
	ok := true
	written := false
	for _, s := range l.getSinks() {
		if !s.filter.Allows(record.Level) {
			continue
		}
		if err := s.write(record, cfg); err != nil {
			l.internalLog("%v\n", err)
			ok = false
			continue
		}
		written = true
	}
	if written {
		l.state.TotalLogsProcessed.Add(1)
	}
	return ok
}

// handleFailedWrite restores or increments drop counter
func (l *Logger) handleFailedWrite(record logRecord) {
	// For regular record, add 1 to dropped log count
	// For drop report, restore the count
	amountToAdd := uint64(1)
	if record.unreportedDrops > 0 {
		amountToAdd = record.unreportedDrops
	} else {
		l.state.TotalDropped.Add(1)
	}
	l.state.DroppedLogs.Add(amountToAdd)
}

// internalLog handles writing internal logger diagnostics to stderr, if enabled.
func (l *Logger) internalLog(format string, args ...any) {
	cfg := l.getConfig()
	if !cfg.InternalErrorsToStderr {
		return
	}

	if !strings.HasPrefix(format, errorPrefix) {
		format = errorPrefix + format
	}

	fmt.Fprintf(os.Stderr, format, args...)
}
