//go:build cgo

package main

/*
#include <stdlib.h>
#include "pactffi_types.h"
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/lixenwraith/pactffi"
)

// C allocations handed to the caller. A released object keeps its outer
// block as a tombstone; only the strings it points to are freed.
var (
	ownedStrings ownedSet[struct{}]
	ownedPairs   ownedSet[pactffi.Handle]
	ownedStates  ownedSet[struct{}]
)

// newCString copies s into C memory the caller releases with
// pactffi_string_delete
func newCString(s string) *C.char {
	cs := C.CString(s)
	ownedStrings.add(uintptr(unsafe.Pointer(cs)), struct{}{})
	return cs
}

// freeCString retires cs. NULL is a no-op. The bytes stay allocated so the
// address cannot come back from a later allocation.
func freeCString(cs *C.char) error {
	if cs == nil {
		return nil
	}
	if _, err := ownedStrings.release("string", uintptr(unsafe.Pointer(cs))); err != nil {
		return err
	}
	*cs = 0
	return nil
}

// checkPair rejects a pair C would read cut short
func checkPair(pair pactffi.MetadataPair) error {
	if err := checkCString("metadata key", pair.Key); err != nil {
		return err
	}
	return checkCString("metadata value", pair.Value)
}

// newMetadataPair builds the C view of pair h
func newMetadataPair(h pactffi.Handle, pair pactffi.MetadataPair) (*C.MessageMetadataPair, error) {
	if err := checkPair(pair); err != nil {
		return nil, err
	}
	p := (*C.MessageMetadataPair)(C.malloc(C.size_t(unsafe.Sizeof(C.MessageMetadataPair{}))))
	p.key = C.CString(pair.Key)
	p.value = C.CString(pair.Value)
	ownedPairs.add(uintptr(unsafe.Pointer(p)), h)
	return p, nil
}

// releaseMetadataPair frees the key and value of p and returns the handle it
// stood for
func releaseMetadataPair(p *C.MessageMetadataPair) (pactffi.Handle, error) {
	if p == nil {
		return 0, fmt.Errorf("pactffi: metadata pair: %w", pactffi.ErrNullArgument)
	}
	h, err := ownedPairs.release("metadata pair", uintptr(unsafe.Pointer(p)))
	if err != nil {
		return 0, err
	}
	C.free(unsafe.Pointer(p.key))
	C.free(unsafe.Pointer(p.value))
	p.key = nil
	p.value = nil
	return h, nil
}

// newProviderState builds the C view of ps. Parameter values are JSON text.
func newProviderState(ps pactffi.ProviderState) (*C.ProviderState, error) {
	if err := checkCString("provider state name", ps.Name); err != nil {
		return nil, err
	}
	params := ps.SortedParams()
	for _, p := range params {
		if err := checkCString("provider state parameter", p.Key); err != nil {
			return nil, err
		}
		if err := checkCString("provider state parameter value", p.Value); err != nil {
			return nil, err
		}
	}

	out := (*C.ProviderState)(C.malloc(C.size_t(unsafe.Sizeof(C.ProviderState{}))))
	out.name = C.CString(ps.Name)
	out.params = nil
	out.params_len = 0

	if len(params) > 0 {
		size := C.size_t(len(params)) * C.size_t(unsafe.Sizeof(C.ProviderStateParamPair{}))
		out.params = (*C.ProviderStateParamPair)(C.malloc(size))
		out.params_len = C.size_t(len(params))
		dst := unsafe.Slice(out.params, len(params))
		for i, p := range params {
			dst[i].key = C.CString(p.Key)
			dst[i].value = C.CString(p.Value)
		}
	}

	ownedStates.add(uintptr(unsafe.Pointer(out)), struct{}{})
	return out, nil
}

func freeProviderState(ps *C.ProviderState) error {
	if ps == nil {
		return fmt.Errorf("pactffi: provider state: %w", pactffi.ErrNullArgument)
	}
	if _, err := ownedStates.release("provider state", uintptr(unsafe.Pointer(ps))); err != nil {
		return err
	}
	if ps.params != nil {
		for _, p := range unsafe.Slice(ps.params, int(ps.params_len)) {
			C.free(unsafe.Pointer(p.key))
			C.free(unsafe.Pointer(p.value))
		}
		C.free(unsafe.Pointer(ps.params))
	}
	C.free(unsafe.Pointer(ps.name))
	ps.name = nil
	ps.params = nil
	ps.params_len = 0
	return nil
}

// goString converts a required C string argument
func goString(what string, cs *C.char) (string, error) {
	if cs == nil {
		return "", fmt.Errorf("pactffi: %s: %w", what, pactffi.ErrNullArgument)
	}
	return C.GoString(cs), nil
}

// goStringOr converts an optional C string argument
func goStringOr(cs *C.char, def string) string {
	if cs == nil {
		return def
	}
	return C.GoString(cs)
}

// cArg copies s into C memory for a Go caller of an export. Release it with
// freeArg.
func cArg(s string) *C.char {
	return C.CString(s)
}

func freeArg(cs *C.char) {
	C.free(unsafe.Pointer(cs))
}

// cBuffer views b as a C char buffer
func cBuffer(b []byte) *C.char {
	if len(b) == 0 {
		return nil
	}
	return (*C.char)(unsafe.Pointer(&b[0]))
}

// recoverTo turns a panic in an export into its failure result
func recoverTo[T any](rc *T, failure T, op string) {
	if r := recover(); r != nil {
		*rc = failure
		pactffi.Default().ReportError(op, fmt.Errorf("pactffi: panic: %v", r))
	}
}
