package pactffi

import "errors"

// Sentinel errors. Operations wrap these with context; callers match with errors.Is.
var (
	ErrAlreadyApplied    = errors.New("logger configuration already applied")
	ErrNotInitialized    = errors.New("logger not initialized")
	ErrSpecifierNotUTF8  = errors.New("sink specifier is not valid UTF-8")
	ErrUnknownSinkType   = errors.New("unknown sink type")
	ErrMissingFilePath   = errors.New("missing file path")
	ErrInvalidFileSpec   = errors.New("invalid file sink path")
	ErrCantConstructSink = errors.New("cannot construct sink")
	ErrInvalidHandle     = errors.New("invalid or released handle")
	ErrDeserialization   = errors.New("message deserialization failed")
	ErrKeyExists         = errors.New("metadata key already exists")
	ErrNullArgument      = errors.New("required argument is null")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// LoggerStatus is the result code of logger_attach_sink and logger_apply
type LoggerStatus int32

const (
	LoggerOK                LoggerStatus = 0
	LoggerAlreadyApplied    LoggerStatus = -1
	LoggerNotInitialized    LoggerStatus = -2
	LoggerSpecifierNotUTF8  LoggerStatus = -3
	LoggerUnknownSinkType   LoggerStatus = -4
	LoggerMissingFilePath   LoggerStatus = -5
	LoggerInvalidFileSpec   LoggerStatus = -6
	LoggerCantConstructSink LoggerStatus = -7
)

func (s LoggerStatus) String() string {
	switch s {
	case LoggerOK:
		return "OK"
	case LoggerAlreadyApplied:
		return "AlreadyApplied"
	case LoggerNotInitialized:
		return "NotInitialized"
	case LoggerSpecifierNotUTF8:
		return "SpecifierNotUTF8"
	case LoggerUnknownSinkType:
		return "UnknownSinkType"
	case LoggerMissingFilePath:
		return "MissingFilePath"
	case LoggerInvalidFileSpec:
		return "InvalidFileSpec"
	case LoggerCantConstructSink:
		return "CantConstructSink"
	default:
		return "Unknown"
	}
}

// LoggerStatusOf maps a registry error to its C result code. Unrecognized
// errors map to CantConstructSink.
func LoggerStatusOf(err error) LoggerStatus {
	switch {
	case err == nil:
		return LoggerOK
	case errors.Is(err, ErrAlreadyApplied):
		return LoggerAlreadyApplied
	case errors.Is(err, ErrNotInitialized):
		return LoggerNotInitialized
	case errors.Is(err, ErrSpecifierNotUTF8):
		return LoggerSpecifierNotUTF8
	case errors.Is(err, ErrUnknownSinkType):
		return LoggerUnknownSinkType
	case errors.Is(err, ErrMissingFilePath):
		return LoggerMissingFilePath
	case errors.Is(err, ErrInvalidFileSpec):
		return LoggerInvalidFileSpec
	default:
		return LoggerCantConstructSink
	}
}

// InsertStatus is the result code of message_insert_metadata
type InsertStatus int32

const (
	InsertOK        InsertStatus = 0
	InsertKeyExists InsertStatus = -1
	InsertFailed    InsertStatus = -2
)

func (s InsertStatus) String() string {
	switch s {
	case InsertOK:
		return "OK"
	case InsertKeyExists:
		return "KeyExists"
	case InsertFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// InsertStatusOf maps an InsertMetadata error to its C result code
func InsertStatusOf(err error) InsertStatus {
	switch {
	case err == nil:
		return InsertOK
	case errors.Is(err, ErrKeyExists):
		return InsertKeyExists
	default:
		return InsertFailed
	}
}

// Result codes of get_error_message failures
const (
	CopyNullBuffer     = -1
	CopyBufferTooSmall = -2
)

// Result codes of the delete and set operations
const (
	ExitSuccess = 0
	ExitFailure = 1
)
