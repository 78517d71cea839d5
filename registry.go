package pactffi

import (
	"fmt"
	"sync"
)

// RegistryState is the phase of the logger configuration
type RegistryState int32

const (
	StateUninitialized RegistryState = iota
	StateCollecting
	StateApplied
)

func (s RegistryState) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateCollecting:
		return "Collecting"
	case StateApplied:
		return "Applied"
	default:
		return fmt.Sprintf("RegistryState(%d)", int32(s))
	}
}

// Registry collects sinks and installs them into a Logger exactly once.
// Uninitialized -> Collecting -> Applied. Init after Apply starts a new
// collection whose sinks are validated but can never be installed. It is
// safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	state   RegistryState
	applied bool // a sink set has been installed
	pending []*sink
	logger  *Logger
}

// NewRegistry creates an uninitialized registry feeding logger
func NewRegistry(logger *Logger) *Registry {
	return &Registry{logger: logger}
}

// State returns the current phase
func (r *Registry) State() RegistryState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Pending describes the sinks collected so far
func (r *Registry) Pending() []SinkInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SinkInfo, len(r.pending))
	for i, s := range r.pending {
		out[i] = s.info()
	}
	return out
}

// Init starts a new collection, discarding pending sinks. It always
// succeeds; once a configuration is applied the installed sinks stay as they
// are and a later Apply fails.
func (r *Registry) Init() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.applied {
		r.logger.LogSource(LevelDebug, "registry", "collecting after apply, installed sinks are unchanged")
	}
	r.discardPending()
	r.state = StateCollecting
}

// discardPending closes sinks that were validated but never installed
func (r *Registry) discardPending() {
	for _, s := range r.pending {
		if err := s.close(); err != nil {
			r.logger.internalLog("%v\n", err)
		}
	}
	r.pending = nil
}

// AttachSink validates spec and filter and adds the sink to the pending set
func (r *Registry) AttachSink(spec string, filter LevelFilter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateUninitialized:
		return fmtErrorf("attach sink '%s': %w", spec, ErrNotInitialized)
	case StateApplied:
		return fmtErrorf("attach sink '%s': %w", spec, ErrAlreadyApplied)
	}

	parsed, err := ParseSinkSpec(spec)
	if err != nil {
		return err
	}
	s, err := openSink(parsed, filter, r.logger.getConfig())
	if err != nil {
		return err
	}
	r.pending = append(r.pending, s)
	return nil
}

// Apply installs every pending sink into the logger and fixes the configuration
func (r *Registry) Apply() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateUninitialized:
		return fmtErrorf("apply: %w", ErrNotInitialized)
	case StateApplied:
		return fmtErrorf("apply: %w", ErrAlreadyApplied)
	}
	if r.applied {
		r.discardPending()
		r.state = StateApplied
		return fmtErrorf("apply: %w", ErrAlreadyApplied)
	}

	if err := r.logger.install(r.pending); err != nil {
		return err
	}
	count := len(r.pending)
	r.pending = nil
	r.state = StateApplied
	r.applied = true

	r.logger.LogSource(LevelDebug, "registry", "logger configuration applied", "sinks", count)
	return nil
}
