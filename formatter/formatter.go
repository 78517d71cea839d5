// Package formatter renders log records as txt, json or raw bytes for sinks.
package formatter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/lixenwraith/pactffi/sanitizer"
)

// Format flags for controlling output structure
const (
	FlagRaw            int64 = 0b0001
	FlagShowTimestamp  int64 = 0b0010
	FlagShowLevel      int64 = 0b0100
	FlagStructuredJSON int64 = 0b1000
	FlagDefault              = FlagShowTimestamp | FlagShowLevel
)

// Formatter holds the rendering options and a reusable buffer.
// A Formatter is not safe for concurrent use.
type Formatter struct {
	sanitizer       *sanitizer.Sanitizer
	format          string
	timestampFormat string
	showTimestamp   bool
	showLevel       bool
	buf             []byte
}

// New creates a txt formatter with the provided sanitizer
func New(s ...*sanitizer.Sanitizer) *Formatter {
	var san *sanitizer.Sanitizer
	if len(s) > 0 && s[0] != nil {
		san = s[0]
	} else {
		san = sanitizer.New()
	}
	return &Formatter{
		sanitizer:       san,
		format:          "txt",
		timestampFormat: time.RFC3339Nano,
		showTimestamp:   true,
		showLevel:       true,
		buf:             make([]byte, 0, 1024),
	}
}

// Type sets the output format ("txt", "json", or "raw")
func (f *Formatter) Type(format string) *Formatter {
	f.format = format
	return f
}

// TimestampFormat sets the timestamp layout; empty keeps the current one
func (f *Formatter) TimestampFormat(format string) *Formatter {
	if format != "" {
		f.timestampFormat = format
	}
	return f
}

// ShowLevel sets whether to include level in output
func (f *Formatter) ShowLevel(show bool) *Formatter {
	f.showLevel = show
	return f
}

// ShowTimestamp sets whether to include timestamp in output
func (f *Formatter) ShowTimestamp(show bool) *Formatter {
	f.showTimestamp = show
	return f
}

// Format renders a record. Zero flags fall back to the configured
// timestamp/level visibility.
func (f *Formatter) Format(flags int64, timestamp time.Time, level int64, source string, args []any) []byte {
	if flags&(FlagShowTimestamp|FlagShowLevel|FlagRaw) == 0 {
		if f.showTimestamp {
			flags |= FlagShowTimestamp
		}
		if f.showLevel {
			flags |= FlagShowLevel
		}
	}
	f.buf = f.buf[:0]

	if flags&FlagRaw != 0 {
		return f.formatRaw(args)
	}

	serializer := sanitizer.NewSerializer(f.format, f.sanitizer)
	switch f.format {
	case "raw":
		for i, arg := range args {
			f.convertValue(&f.buf, arg, serializer, i > 0)
		}
		return f.buf
	case "json":
		return f.formatJSON(flags, timestamp, level, source, args, serializer)
	default:
		return f.formatTxt(flags, timestamp, level, source, args, serializer)
	}
}

// LevelToString converts integer level values to string
func LevelToString(level int64) string {
	switch level {
	case -8:
		return "TRACE"
	case -4:
		return "DEBUG"
	case 0:
		return "INFO"
	case 4:
		return "WARN"
	case 8:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", level)
	}
}

// formatRaw writes args space separated with no sanitization
func (f *Formatter) formatRaw(args []any) []byte {
	for i, arg := range args {
		if i > 0 {
			f.buf = append(f.buf, ' ')
		}
		switch v := arg.(type) {
		case string:
			f.buf = append(f.buf, v...)
		case []byte:
			f.buf = append(f.buf, v...)
		case error:
			f.buf = append(f.buf, v.Error()...)
		case fmt.Stringer:
			f.buf = append(f.buf, v.String()...)
		default:
			f.buf = append(f.buf, fmt.Sprint(v)...)
		}
	}
	return f.buf
}

func (f *Formatter) convertValue(buf *[]byte, v any, serializer *sanitizer.Serializer, needsSpace bool) {
	if needsSpace && len(*buf) > 0 {
		*buf = append(*buf, ' ')
	}

	switch val := v.(type) {
	case string:
		serializer.WriteString(buf, val)
	case []byte:
		serializer.WriteString(buf, string(val))
	case rune:
		var runeStr [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeStr[:], val)
		serializer.WriteString(buf, string(runeStr[:n]))
	case int:
		serializer.WriteNumber(buf, strconv.FormatInt(int64(val), 10))
	case int64:
		serializer.WriteNumber(buf, strconv.FormatInt(val, 10))
	case uint32:
		serializer.WriteNumber(buf, strconv.FormatUint(uint64(val), 10))
	case uint:
		serializer.WriteNumber(buf, strconv.FormatUint(uint64(val), 10))
	case uint64:
		serializer.WriteNumber(buf, strconv.FormatUint(val, 10))
	case float64:
		serializer.WriteNumber(buf, strconv.FormatFloat(val, 'f', -1, 64))
	case bool:
		serializer.WriteBool(buf, val)
	case nil:
		serializer.WriteNil(buf)
	case time.Time:
		serializer.WriteString(buf, val.Format(f.timestampFormat))
	case error:
		serializer.WriteString(buf, val.Error())
	case fmt.Stringer:
		serializer.WriteString(buf, val.String())
	default:
		serializer.WriteComplex(buf, val)
	}
}

func (f *Formatter) formatJSON(flags int64, timestamp time.Time, level int64, source string, args []any, serializer *sanitizer.Serializer) []byte {
	f.buf = append(f.buf, '{')
	needsComma := false
	comma := func() {
		if needsComma {
			f.buf = append(f.buf, ',')
		}
		needsComma = true
	}

	if flags&FlagShowTimestamp != 0 {
		comma()
		f.buf = append(f.buf, `"time":"`...)
		f.buf = timestamp.AppendFormat(f.buf, f.timestampFormat)
		f.buf = append(f.buf, '"')
	}

	if flags&FlagShowLevel != 0 {
		comma()
		f.buf = append(f.buf, `"level":"`...)
		f.buf = append(f.buf, LevelToString(level)...)
		f.buf = append(f.buf, '"')
	}

	if source != "" {
		comma()
		f.buf = append(f.buf, `"source":`...)
		serializer.WriteString(&f.buf, source)
	}

	if flags&FlagStructuredJSON != 0 && len(args) >= 2 {
		if message, ok := args[0].(string); ok {
			if fields, ok := args[1].(map[string]any); ok {
				comma()
				f.buf = append(f.buf, `"message":`...)
				serializer.WriteString(&f.buf, message)
				f.buf = append(f.buf, `,"fields":`...)
				marshaled, err := json.Marshal(fields)
				if err != nil {
					f.buf = append(f.buf, `{"_marshal_error":`...)
					serializer.WriteString(&f.buf, err.Error())
					f.buf = append(f.buf, '}')
				} else {
					f.buf = append(f.buf, marshaled...)
				}
				f.buf = append(f.buf, '}', '\n')
				return f.buf
			}
		}
	}

	if len(args) > 0 {
		comma()
		f.buf = append(f.buf, `"fields":[`...)
		for i, arg := range args {
			if i > 0 {
				f.buf = append(f.buf, ',')
			}
			f.convertValue(&f.buf, arg, serializer, false)
		}
		f.buf = append(f.buf, ']')
	}

	f.buf = append(f.buf, '}', '\n')
	return f.buf
}

func (f *Formatter) formatTxt(flags int64, timestamp time.Time, level int64, source string, args []any, serializer *sanitizer.Serializer) []byte {
	needsSpace := false

	if flags&FlagShowTimestamp != 0 {
		f.buf = timestamp.AppendFormat(f.buf, f.timestampFormat)
		needsSpace = true
	}

	if flags&FlagShowLevel != 0 {
		if needsSpace {
			f.buf = append(f.buf, ' ')
		}
		f.buf = append(f.buf, LevelToString(level)...)
		needsSpace = true
	}

	if source != "" {
		if needsSpace {
			f.buf = append(f.buf, ' ')
		}
		f.buf = append(f.buf, '[')
		f.buf = append(f.buf, f.sanitizer.Sanitize(source)...)
		f.buf = append(f.buf, ']')
		needsSpace = true
	}

	for _, arg := range args {
		f.convertValue(&f.buf, arg, serializer, needsSpace)
		needsSpace = true
	}

	f.buf = append(f.buf, '\n')
	return f.buf
}
