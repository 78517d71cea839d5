package pactffi

import (
	"sync/atomic"
)

// State holds the logger's runtime counters and installed sinks
type State struct {
	Closed atomic.Bool

	DroppedLogs        atomic.Uint64 // Records lost since the last drop report
	TotalDropped       atomic.Uint64 // Records lost over the logger's lifetime
	TotalLogsProcessed atomic.Uint64 // Records written to at least one sink

	ActiveSinks atomic.Value // stores sinkSet
}

// sinkSet wraps the installed sinks, atomic value type change workaround
type sinkSet struct {
	sinks []*sink
}

// Stats is a snapshot of the logger counters
type Stats struct {
	Sinks              int
	DroppedLogs        uint64
	TotalDropped       uint64
	TotalLogsProcessed uint64
}

// Stats returns the current counters
func (l *Logger) Stats() Stats {
	return Stats{
		Sinks:              len(l.getSinks()),
		DroppedLogs:        l.state.DroppedLogs.Load(),
		TotalDropped:       l.state.TotalDropped.Load(),
		TotalLogsProcessed: l.state.TotalLogsProcessed.Load(),
	}
}

// Close closes file sinks and uninstalls every sink. Later records are discarded.
func (l *Logger) Close() error {
	if !l.state.Closed.CompareAndSwap(false, true) {
		return nil
	}

	sinks := l.getSinks()
	l.state.ActiveSinks.Store(sinkSet{})

	var finalErr error
	for _, s := range sinks {
		finalErr = combineErrors(finalErr, s.close())
	}
	return finalErr
}
