package main

import (
	"fmt"
	"sync"

	"github.com/lixenwraith/pactffi"
	"github.com/lixenwraith/pactffi/sanitizer"
)

// handleTag marks a pointer value as a handle token. It sits above any
// address the Go heap or a C allocator hands out on 64-bit hosts.
const handleTag uint64 = 1 << 62

// tokenOf encodes h as the pointer value handed to C
func tokenOf(h pactffi.Handle) uint64 {
	if h.IsZero() {
		return 0
	}
	return uint64(h) | handleTag
}

// handleOf decodes a pointer value received from C
func handleOf(token uint64) (pactffi.Handle, error) {
	if token == 0 {
		return 0, fmt.Errorf("pactffi: %w", pactffi.ErrNullArgument)
	}
	if token&handleTag == 0 {
		return 0, fmt.Errorf("pactffi: pointer %#x is not a handle: %w", token, pactffi.ErrInvalidHandle)
	}
	return pactffi.Handle(token &^ handleTag), nil
}

// ownedSet tracks C allocations handed to the caller. Released addresses
// stay recorded as tombstones and their blocks are never returned to the
// allocator, so no address is handed out twice and a stale release is
// always reported.
type ownedSet[V any] struct {
	mu sync.Mutex
	m  map[uintptr]ownedEntry[V]
}

type ownedEntry[V any] struct {
	v    V
	live bool
}

func (s *ownedSet[V]) add(p uintptr, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = make(map[uintptr]ownedEntry[V])
	}
	s.m[p] = ownedEntry[V]{v: v, live: true}
}

// release marks p released and returns its value
func (s *ownedSet[V]) release(what string, p uintptr) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[p]
	switch {
	case !ok:
		var zero V
		return zero, fmt.Errorf("pactffi: %s %#x was not returned by this library: %w", what, p, pactffi.ErrInvalidArgument)
	case !e.live:
		var zero V
		return zero, fmt.Errorf("pactffi: %s %#x already released: %w", what, p, pactffi.ErrInvalidHandle)
	}
	s.m[p] = ownedEntry[V]{}
	return e.v, nil
}

// owns reports whether p is live
func (s *ownedSet[V]) owns(p uintptr) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[p].live
}

var cstringSanitizer = sanitizer.New().Policy(sanitizer.PolicyCString)

// checkCString rejects strings C would see truncated
func checkCString(what, s string) error {
	if !cstringSanitizer.Clean(s) {
		return fmt.Errorf("pactffi: %s contains a NUL byte: %w", what, pactffi.ErrInvalidArgument)
	}
	return nil
}
