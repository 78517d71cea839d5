package pactffi

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lixenwraith/pactffi/formatter"
	"github.com/lixenwraith/pactffi/sanitizer"
)

// SinkKind is the target type named by a sink specifier
type SinkKind int

const (
	SinkStdout SinkKind = iota + 1
	SinkStderr
	SinkBuffer
	SinkFile
)

func (k SinkKind) String() string {
	switch k {
	case SinkStdout:
		return "stdout"
	case SinkStderr:
		return "stderr"
	case SinkBuffer:
		return "buffer"
	case SinkFile:
		return "file"
	default:
		return "unknown"
	}
}

// SinkSpec is a parsed sink specifier
type SinkSpec struct {
	Kind SinkKind
	Path string // SinkFile only
}

func (s SinkSpec) String() string {
	if s.Kind == SinkFile {
		return "file " + s.Path
	}
	return s.Kind.String()
}

var pathSanitizer = sanitizer.New().Policy(sanitizer.PolicyPath)

// ParseSinkSpec parses "stdout", "stderr", "buffer" or "file <path>". The
// path is everything after the first run of whitespace, so it may contain
// spaces.
func ParseSinkSpec(spec string) (SinkSpec, error) {
	if !utf8.ValidString(spec) {
		return SinkSpec{}, fmtErrorf("%w", ErrSpecifierNotUTF8)
	}

	trimmed := strings.TrimSpace(spec)
	kind, rest := trimmed, ""
	if i := strings.IndexFunc(trimmed, unicode.IsSpace); i >= 0 {
		kind, rest = trimmed[:i], strings.TrimSpace(trimmed[i:])
	}

	switch kind {
	case "stdout", "stderr", "buffer":
		if rest != "" {
			return SinkSpec{}, fmtErrorf("'%s' takes no argument: %w", kind, ErrUnknownSinkType)
		}
		switch kind {
		case "stdout":
			return SinkSpec{Kind: SinkStdout}, nil
		case "stderr":
			return SinkSpec{Kind: SinkStderr}, nil
		default:
			return SinkSpec{Kind: SinkBuffer}, nil
		}

	case "file":
		if rest == "" {
			return SinkSpec{}, fmtErrorf("%w", ErrMissingFilePath)
		}
		if r, found := pathSanitizer.Offending(rest); found {
			return SinkSpec{}, fmtErrorf("path '%s' contains illegal character %q: %w", rest, r, ErrInvalidFileSpec)
		}
		return SinkSpec{Kind: SinkFile, Path: rest}, nil

	default:
		return SinkSpec{}, fmtErrorf("'%s': %w", spec, ErrUnknownSinkType)
	}
}

// SinkInfo describes an installed sink
type SinkInfo struct {
	Spec   SinkSpec
	Filter LevelFilter
}

// sink is one destination with its level filter. Writes are serialized by mu.
type sink struct {
	spec   SinkSpec
	filter LevelFilter

	mu        sync.Mutex
	w         io.Writer
	closer    io.Closer
	buffer    *logBuffer
	formatter *formatter.Formatter
	cfg       *Config // config the formatter was built from
}

// openSink validates and opens a sink. File targets are opened for append
// once to surface permission and path errors before the sink is accepted.
func openSink(spec SinkSpec, filter LevelFilter, cfg *Config) (*sink, error) {
	if !filter.Valid() {
		return nil, fmtErrorf("level filter %d out of range: %w", int32(filter), ErrCantConstructSink)
	}

	s := &sink{spec: spec, filter: filter}
	switch spec.Kind {
	case SinkStdout:
		s.w = os.Stdout
	case SinkStderr:
		s.w = os.Stderr
	case SinkBuffer:
		s.buffer = newLogBuffer(int(cfg.BufferCapacity))
		s.w = s.buffer
	case SinkFile:
		f, err := os.OpenFile(spec.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmtErrorf("cannot open '%s' for append: %v: %w", spec.Path, err, ErrInvalidFileSpec)
		}
		_ = f.Close()

		rotator := &lumberjack.Logger{
			Filename:   spec.Path,
			MaxSize:    int(cfg.MaxSizeMB),
			MaxBackups: int(cfg.MaxBackups),
			MaxAge:     retentionDays(cfg.RetentionPeriodHrs),
			Compress:   cfg.Compress,
		}
		s.w = rotator
		s.closer = rotator
	default:
		return nil, fmtErrorf("sink kind %d: %w", spec.Kind, ErrUnknownSinkType)
	}
	return s, nil
}

// retentionDays rounds hours up to whole days, the writer's retention unit
func retentionDays(hours float64) int {
	if hours <= 0 {
		return 0
	}
	return int(math.Ceil(hours / 24))
}

func (s *sink) info() SinkInfo {
	return SinkInfo{Spec: s.spec, Filter: s.filter}
}

// write formats and writes a record if it passes the filter
func (s *sink) write(rec logRecord, cfg *Config) error {
	if !s.filter.Allows(rec.Level) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.formatter == nil || s.cfg != cfg {
		s.formatter = newRecordFormatter(cfg)
		s.cfg = cfg
	}
	data := s.formatter.Format(rec.Flags, rec.TimeStamp, rec.Level, rec.Source, rec.Args)
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("write to %s sink failed: %w", s.spec, err)
	}
	return nil
}

// contents returns a copy of a buffer sink's data
func (s *sink) contents() string {
	if s.buffer == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.String()
}

func (s *sink) close() error {
	if s.closer == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("failed to close %s sink: %w", s.spec, err)
	}
	return nil
}

// newRecordFormatter builds a formatter from the record settings of cfg
func newRecordFormatter(cfg *Config) *formatter.Formatter {
	policy := cfg.Sanitization
	if policy == "" {
		policy = cfg.Format
	}
	san := sanitizer.New().Policy(sanitizer.PolicyPreset(policy))
	return formatter.New(san).
		Type(cfg.Format).
		TimestampFormat(cfg.TimestampFormat).
		ShowTimestamp(cfg.ShowTimestamp).
		ShowLevel(cfg.ShowLevel)
}

// logBuffer keeps the most recent records up to capacity bytes. When full,
// whole records are evicted from the front.
type logBuffer struct {
	data     []byte
	capacity int
	evicted  uint64
}

func newLogBuffer(capacity int) *logBuffer {
	return &logBuffer{capacity: capacity}
}

func (b *logBuffer) Write(p []byte) (int, error) {
	if len(p) > b.capacity {
		return 0, fmt.Errorf("record of %d bytes exceeds buffer capacity %d", len(p), b.capacity)
	}
	if excess := len(b.data) + len(p) - b.capacity; excess > 0 {
		var cut int
		if i := bytes.IndexByte(b.data[excess-1:], '\n'); i >= 0 {
			cut = excess + i
		} else {
			cut = len(b.data)
		}
		b.data = append(b.data[:0], b.data[cut:]...)
		b.evicted++
	}
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *logBuffer) String() string {
	return string(b.data)
}
