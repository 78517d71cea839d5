package pactffi

import (
	"fmt"
	"sync"
)

// Handle is an opaque reference to an object owned by a Store. The zero
// Handle is never valid.
//
// Layout, low to high: 32-bit slot index, 24-bit generation, 4-bit kind.
// The top four bits are always zero so the C layer can tag them.
type Handle uint64

const (
	handleIndexBits = 32
	handleGenBits   = 24
	handleKindBits  = 4

	handleGenMask  = 1<<handleGenBits - 1
	handleKindMask = 1<<handleKindBits - 1
)

// handleKind distinguishes arenas so a handle of one kind is never accepted
// by another
type handleKind uint8

const (
	kindMessage handleKind = iota + 1
	kindMetadataIter
	kindMetadataPair
	kindStateIter
)

func (k handleKind) String() string {
	switch k {
	case kindMessage:
		return "message"
	case kindMetadataIter:
		return "metadata iterator"
	case kindMetadataPair:
		return "metadata pair"
	case kindStateIter:
		return "provider state iterator"
	default:
		return "unknown"
	}
}

func makeHandle(kind handleKind, index uint32, gen uint32) Handle {
	return Handle(uint64(kind)<<(handleIndexBits+handleGenBits) |
		uint64(gen&handleGenMask)<<handleIndexBits |
		uint64(index))
}

func (h Handle) kind() handleKind {
	return handleKind(uint64(h) >> (handleIndexBits + handleGenBits) & handleKindMask)
}

func (h Handle) index() uint32 {
	return uint32(h)
}

func (h Handle) generation() uint32 {
	return uint32(uint64(h)>>handleIndexBits) & handleGenMask
}

// IsZero reports whether h is the zero handle
func (h Handle) IsZero() bool {
	return h == 0
}

func (h Handle) String() string {
	if h == 0 {
		return "handle(nil)"
	}
	return fmt.Sprintf("%s#%d.%d", h.kind(), h.index(), h.generation())
}

// slot holds one arena entry. gen is bumped on every release so stale
// handles stop matching.
type slot[T any] struct {
	value T
	gen   uint32
	live  bool
}

// arena is a generation-checked slot table. It is safe for concurrent use.
type arena[T any] struct {
	mu    sync.Mutex
	kind  handleKind
	slots []slot[T]
	free  []uint32
	live  int
}

func newArena[T any](kind handleKind) *arena[T] {
	return &arena[T]{kind: kind}
}

// insert stores v and returns its handle, reusing a released slot when one exists
func (a *arena[T]) insert(v T) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{gen: 1})
	}

	s := &a.slots[idx]
	s.value = v
	s.live = true
	a.live++
	return makeHandle(a.kind, idx, s.gen)
}

// lookup returns the slot for a live handle. Caller holds mu.
func (a *arena[T]) lookup(h Handle) (*slot[T], bool) {
	if h.kind() != a.kind {
		return nil, false
	}
	idx := h.index()
	if int(idx) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[idx]
	if !s.live || s.gen != h.generation() {
		return nil, false
	}
	return s, true
}

// get returns the value behind a live handle
func (a *arena[T]) get(h Handle) (T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.lookup(h)
	if !ok {
		var zero T
		return zero, false
	}
	return s.value, true
}

// remove releases a live handle and returns its value. A stale, foreign or
// already removed handle returns false and changes nothing.
func (a *arena[T]) remove(h Handle) (T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var zero T
	s, ok := a.lookup(h)
	if !ok {
		return zero, false
	}
	v := s.value
	s.value = zero
	s.live = false
	s.gen = (s.gen + 1) & handleGenMask
	if s.gen == 0 {
		s.gen = 1
	}
	a.free = append(a.free, h.index())
	a.live--
	return v, true
}

// len returns the number of live entries
func (a *arena[T]) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// drain releases every live entry and returns their values
func (a *arena[T]) drain() []T {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []T
	var zero T
	for i := range a.slots {
		s := &a.slots[i]
		if !s.live {
			continue
		}
		out = append(out, s.value)
		s.value = zero
		s.live = false
		s.gen = (s.gen + 1) & handleGenMask
		if s.gen == 0 {
			s.gen = 1
		}
		a.free = append(a.free, uint32(i))
	}
	a.live = 0
	return out
}
