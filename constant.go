package pactffi

import "fmt"

// Log level constants
const (
	LevelTrace int64 = -8
	LevelDebug int64 = -4
	LevelInfo  int64 = 0
	LevelWarn  int64 = 4
	LevelError int64 = 8
)

// Record flags for controlling output structure
const (
	FlagRaw            int64 = 0b0001
	FlagShowTimestamp  int64 = 0b0010
	FlagShowLevel      int64 = 0b0100
	FlagStructuredJSON int64 = 0b1000
	FlagDefault              = FlagShowTimestamp | FlagShowLevel
)

// Sizes
const (
	// Smallest error slot that still fits a useful message
	minErrorMaxLength = 64
)

// LevelFilter is the minimum severity a sink emits. Values match the C enum.
type LevelFilter int32

const (
	FilterOff LevelFilter = iota
	FilterError
	FilterWarn
	FilterInfo
	FilterDebug
	FilterTrace
)

// Valid reports whether f is one of the defined filters
func (f LevelFilter) Valid() bool {
	return f >= FilterOff && f <= FilterTrace
}

// Allows reports whether a record at level passes the filter
func (f LevelFilter) Allows(level int64) bool {
	switch f {
	case FilterError:
		return level >= LevelError
	case FilterWarn:
		return level >= LevelWarn
	case FilterInfo:
		return level >= LevelInfo
	case FilterDebug:
		return level >= LevelDebug
	case FilterTrace:
		return level >= LevelTrace
	default:
		return false
	}
}

func (f LevelFilter) String() string {
	switch f {
	case FilterOff:
		return "off"
	case FilterError:
		return "error"
	case FilterWarn:
		return "warn"
	case FilterInfo:
		return "info"
	case FilterDebug:
		return "debug"
	case FilterTrace:
		return "trace"
	default:
		return fmt.Sprintf("filter(%d)", int32(f))
	}
}

// Specification is the pact specification version used to read message JSON.
// Values match the C enum.
type Specification int32

const (
	SpecUnknown Specification = iota
	SpecV1
	SpecV1_1
	SpecV2
	SpecV3
	SpecV4
)

func (s Specification) String() string {
	switch s {
	case SpecUnknown:
		return "unknown"
	case SpecV1:
		return "V1"
	case SpecV1_1:
		return "V1.1"
	case SpecV2:
		return "V2"
	case SpecV3:
		return "V3"
	case SpecV4:
		return "V4"
	default:
		return fmt.Sprintf("spec(%d)", int32(s))
	}
}

// prefersPluralStates reports whether "providerStates" takes precedence over
// "providerState" when both are present
func (s Specification) prefersPluralStates() bool {
	return s <= SpecUnknown || s >= SpecV3
}
