//go:build cgo

package main

/*
#include <stdint.h>
#include "pactffi_types.h"

static inline Message *pactffi_message_ptr(uint64_t t) { return (Message *)(uintptr_t)t; }
static inline uint64_t pactffi_message_token(Message *m) { return (uint64_t)(uintptr_t)m; }

static inline MessageMetadataIterator *pactffi_metadata_iter_ptr(uint64_t t) { return (MessageMetadataIterator *)(uintptr_t)t; }
static inline uint64_t pactffi_metadata_iter_token(MessageMetadataIterator *it) { return (uint64_t)(uintptr_t)it; }

static inline ProviderStateIterator *pactffi_state_iter_ptr(uint64_t t) { return (ProviderStateIterator *)(uintptr_t)t; }
static inline uint64_t pactffi_state_iter_token(ProviderStateIterator *it) { return (uint64_t)(uintptr_t)it; }
*/
import "C"

import (
	"github.com/lixenwraith/pactffi"
)

// Handles reach C as tagged pointer values. See tokenOf.

func messagePtr(h pactffi.Handle) *C.Message {
	return C.pactffi_message_ptr(C.uint64_t(tokenOf(h)))
}

func messageHandle(m *C.Message) (pactffi.Handle, error) {
	return handleOf(uint64(C.pactffi_message_token(m)))
}

func metadataIterPtr(h pactffi.Handle) *C.MessageMetadataIterator {
	return C.pactffi_metadata_iter_ptr(C.uint64_t(tokenOf(h)))
}

func metadataIterHandle(it *C.MessageMetadataIterator) (pactffi.Handle, error) {
	return handleOf(uint64(C.pactffi_metadata_iter_token(it)))
}

func stateIterPtr(h pactffi.Handle) *C.ProviderStateIterator {
	return C.pactffi_state_iter_ptr(C.uint64_t(tokenOf(h)))
}

func stateIterHandle(it *C.ProviderStateIterator) (pactffi.Handle, error) {
	return handleOf(uint64(C.pactffi_state_iter_token(it)))
}
