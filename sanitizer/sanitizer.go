// Package sanitizer filters strings that cross the library boundary: text
// written to log sinks, file paths given as sink targets, and strings handed
// to C callers as NUL-terminated buffers.
package sanitizer

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"
)

// Filter flags for character matching
const (
	FilterNonPrintable uint64 = 1 << iota // Runes not printable per strconv.IsPrint
	FilterControl                         // unicode.IsControl
	FilterWhitespace                      // unicode.IsSpace
	FilterNul                             // The NUL rune, which terminates C strings early
	FilterPathIllegal                     // Runes rejected by at least one supported host filesystem
)

// Transform flags for character transformation
const (
	TransformStrip      uint64 = 1 << iota // Removes the character
	TransformHexEncode                     // Encodes the character's UTF-8 bytes as "<XXYY>"
	TransformJSONEscape                    // Escapes the character with JSON-style backslashes
)

// PolicyPreset names a pre-configured rule set
type PolicyPreset string

const (
	PolicyRaw     PolicyPreset = "raw"     // Passthrough
	PolicyTxt     PolicyPreset = "txt"     // Text written to log sinks
	PolicyJSON    PolicyPreset = "json"    // Strings embedded in JSON log records
	PolicyPath    PolicyPreset = "path"    // Sink file paths
	PolicyCString PolicyPreset = "cstring" // Strings copied into C memory
)

// rule is a single filter/transform pair
type rule struct {
	filter    uint64
	transform uint64
}

var policyRules = map[PolicyPreset][]rule{
	PolicyRaw:     {},
	PolicyTxt:     {{filter: FilterNonPrintable, transform: TransformHexEncode}},
	PolicyJSON:    {{filter: FilterControl, transform: TransformJSONEscape}},
	PolicyPath:    {{filter: FilterPathIllegal | FilterControl | FilterNul, transform: TransformStrip}},
	PolicyCString: {{filter: FilterNul, transform: TransformStrip}},
}

// filterOrder fixes evaluation order so a rune matching several flags behaves
// the same on every run
var filterOrder = []uint64{FilterNonPrintable, FilterControl, FilterWhitespace, FilterNul, FilterPathIllegal}

var filterCheckers = map[uint64]func(rune) bool{
	FilterNonPrintable: func(r rune) bool { return !strconv.IsPrint(r) },
	FilterControl:      unicode.IsControl,
	FilterWhitespace:   unicode.IsSpace,
	FilterNul:          func(r rune) bool { return r == 0 },
	FilterPathIllegal: func(r rune) bool {
		switch r {
		case '<', '>', '"', '|', '?', '*':
			return true
		}
		return false
	},
}

// Sanitizer applies an ordered list of rules; the first matching rule wins
type Sanitizer struct {
	rules []rule
	buf   []byte
}

// New creates a passthrough Sanitizer
func New() *Sanitizer {
	return &Sanitizer{
		rules: []rule{},
		buf:   make([]byte, 0, 256),
	}
}

// Rule appends a custom rule
func (s *Sanitizer) Rule(filter uint64, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Policy appends the rules of a preset. Unknown presets are ignored.
func (s *Sanitizer) Policy(preset PolicyPreset) *Sanitizer {
	if rules, ok := policyRules[preset]; ok {
		s.rules = append(s.rules, rules...)
	}
	return s
}

// Sanitize applies all configured rules to data
func (s *Sanitizer) Sanitize(data string) string {
	s.buf = s.buf[:0]

	for _, r := range data {
		matched := false
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				applyTransform(&s.buf, r, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			s.buf = utf8.AppendRune(s.buf, r)
		}
	}

	return string(s.buf)
}

// Offending returns the first rune in data matched by any configured rule,
// and false when data is clean
func (s *Sanitizer) Offending(data string) (rune, bool) {
	for _, r := range data {
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				return r, true
			}
		}
	}
	return 0, false
}

// Clean reports whether no configured rule matches any rune of data
func (s *Sanitizer) Clean(data string) bool {
	_, found := s.Offending(data)
	return !found
}

func matchesFilter(r rune, filterMask uint64) bool {
	for _, flag := range filterOrder {
		if filterMask&flag != 0 && filterCheckers[flag](r) {
			return true
		}
	}
	return false
}

func applyTransform(buf *[]byte, r rune, transformMask uint64) {
	switch {
	case transformMask&TransformStrip != 0:
		// dropped

	case transformMask&TransformHexEncode != 0:
		var runeBytes [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeBytes[:], r)
		*buf = append(*buf, '<')
		*buf = append(*buf, hex.EncodeToString(runeBytes[:n])...)
		*buf = append(*buf, '>')

	case transformMask&TransformJSONEscape != 0:
		switch r {
		case '\n':
			*buf = append(*buf, '\\', 'n')
		case '\r':
			*buf = append(*buf, '\\', 'r')
		case '\t':
			*buf = append(*buf, '\\', 't')
		case '\b':
			*buf = append(*buf, '\\', 'b')
		case '\f':
			*buf = append(*buf, '\\', 'f')
		default:
			if r < 0x20 || r == 0x7f {
				*buf = append(*buf, fmt.Sprintf("\\u%04x", r)...)
			} else {
				*buf = utf8.AppendRune(*buf, r)
			}
		}
	}
}

// Serializer writes values into a record buffer with format-specific quoting
type Serializer struct {
	format    string
	sanitizer *Sanitizer
}

// NewSerializer creates a Serializer for "txt", "json" or "raw"
func NewSerializer(format string, san *Sanitizer) *Serializer {
	if san == nil {
		san = New()
	}
	return &Serializer{
		format:    format,
		sanitizer: san,
	}
}

// WriteString writes s with the quoting rules of the serializer's format
func (se *Serializer) WriteString(buf *[]byte, s string) {
	switch se.format {
	case "raw":
		*buf = append(*buf, se.sanitizer.Sanitize(s)...)

	case "json":
		*buf = append(*buf, '"')
		for i := 0; i < len(s); {
			c := s[i]
			if c >= ' ' && c != '"' && c != '\\' && c < 0x7f {
				start := i
				for i < len(s) && s[i] >= ' ' && s[i] != '"' && s[i] != '\\' && s[i] < 0x7f {
					i++
				}
				*buf = append(*buf, s[start:i]...)
				continue
			}
			if c >= 0x80 {
				r, size := utf8.DecodeRuneInString(s[i:])
				if r == utf8.RuneError && size == 1 {
					*buf = append(*buf, `�`...)
				} else {
					*buf = append(*buf, s[i:i+size]...)
				}
				i += size
				continue
			}
			switch c {
			case '\\', '"':
				*buf = append(*buf, '\\', c)
			case '\n':
				*buf = append(*buf, '\\', 'n')
			case '\r':
				*buf = append(*buf, '\\', 'r')
			case '\t':
				*buf = append(*buf, '\\', 't')
			default:
				*buf = append(*buf, fmt.Sprintf("\\u%04x", c)...)
			}
			i++
		}
		*buf = append(*buf, '"')

	default: // txt
		sanitized := se.sanitizer.Sanitize(s)
		if !se.NeedsQuotes(sanitized) {
			*buf = append(*buf, sanitized...)
			return
		}
		*buf = append(*buf, '"')
		for i := 0; i < len(sanitized); i++ {
			if sanitized[i] == '"' || sanitized[i] == '\\' {
				*buf = append(*buf, '\\')
			}
			*buf = append(*buf, sanitized[i])
		}
		*buf = append(*buf, '"')
	}
}

// WriteNumber writes an already formatted number
func (se *Serializer) WriteNumber(buf *[]byte, n string) {
	*buf = append(*buf, n...)
}

// WriteBool writes a boolean value
func (se *Serializer) WriteBool(buf *[]byte, b bool) {
	*buf = strconv.AppendBool(*buf, b)
}

// WriteNil writes a nil value
func (se *Serializer) WriteNil(buf *[]byte) {
	if se.format == "raw" {
		*buf = append(*buf, "nil"...)
		return
	}
	*buf = append(*buf, "null"...)
}

// WriteComplex writes a value without a dedicated encoding. The raw format
// dumps the full structure for debugging.
func (se *Serializer) WriteComplex(buf *[]byte, v any) {
	if se.format == "raw" {
		var b bytes.Buffer
		dumper := &spew.ConfigState{
			Indent:                  " ",
			MaxDepth:                10,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		}
		dumper.Fdump(&b, v)
		*buf = append(*buf, bytes.TrimSpace(b.Bytes())...)
		return
	}
	se.WriteString(buf, fmt.Sprintf("%+v", v))
}

// NeedsQuotes reports whether s must be quoted in the serializer's format
func (se *Serializer) NeedsQuotes(s string) bool {
	switch se.format {
	case "json":
		return true
	case "txt":
		if len(s) == 0 {
			return true
		}
		for _, r := range s {
			if unicode.IsSpace(r) || !unicode.IsPrint(r) {
				return true
			}
			switch r {
			case '"', '\'', '\\', '$', '`', '!', '&', '|', ';',
				'(', ')', '<', '>', '*', '?', '[', ']', '{', '}',
				'~', '#', '%', '=':
				return true
			}
		}
		return false
	default:
		return false
	}
}
