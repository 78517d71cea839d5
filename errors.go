package pactffi

import (
	"sync"
	"unicode/utf8"

	"github.com/lixenwraith/pactffi/sanitizer"
)

// ErrorChannel holds the most recent failure message. It is shared by every
// caller of a Context and is safe for concurrent use.
type ErrorChannel struct {
	mu     sync.Mutex
	msg    string
	maxLen int
	san    *sanitizer.Sanitizer
}

// NewErrorChannel creates an empty channel that keeps at most maxLen bytes of
// a message
func NewErrorChannel(maxLen int) *ErrorChannel {
	if maxLen < minErrorMaxLength {
		maxLen = minErrorMaxLength
	}
	return &ErrorChannel{
		maxLen: maxLen,
		san:    sanitizer.New().Policy(sanitizer.PolicyCString),
	}
}

// Set stores err's text. A nil error leaves the slot unchanged.
func (e *ErrorChannel) Set(err error) {
	if err == nil {
		return
	}
	e.SetMessage(err.Error())
}

// SetMessage stores text, overwriting the previous message. NUL bytes are
// removed and the text is cut at a rune boundary to fit the size limit.
func (e *ErrorChannel) SetMessage(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	text = e.san.Sanitize(text)
	if len(text) > e.maxLen {
		cut := e.maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	e.msg = text
}

// Clear empties the slot
func (e *ErrorChannel) Clear() {
	e.mu.Lock()
	e.msg = ""
	e.mu.Unlock()
}

// Last returns the stored message
func (e *ErrorChannel) Last() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.msg
}

// CopyTo writes the stored message and a NUL terminator into buf.
// Returns the number of message bytes written, CopyNullBuffer for a nil buf,
// or CopyBufferTooSmall when buf cannot hold message plus terminator. buf is
// untouched on failure. The slot is not cleared.
func (e *ErrorChannel) CopyTo(buf []byte) int {
	if buf == nil {
		return CopyNullBuffer
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(buf) < len(e.msg)+1 {
		return CopyBufferTooSmall
	}
	n := copy(buf, e.msg)
	buf[n] = 0
	return n
}
