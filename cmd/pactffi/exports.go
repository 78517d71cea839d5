//go:build cgo

package main

/*
#include <stdint.h>
#include <stdlib.h>
#include "pactffi_types.h"
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/lixenwraith/pactffi"
)

func ctx() *pactffi.Context {
	return pactffi.Default()
}

// fail reports err on the default context
func fail(op string, err error) {
	ctx().ReportError(op, err)
}

// outString hands s to C, or reports and returns NULL when C would see it cut short
func outString(op, what, s string) *C.char {
	if err := checkCString(what, s); err != nil {
		fail(op, err)
		return nil
	}
	return newCString(s)
}

// Logger

//export pactffi_logger_init
func pactffi_logger_init() {
	defer recoverTo(new(struct{}), struct{}{}, "logger_init")
	ctx().LoggerInit()
}

//export pactffi_logger_attach_sink
func pactffi_logger_attach_sink(sinkSpecifier *C.char, levelFilter C.LevelFilter) (rc C.int) {
	defer recoverTo(&rc, C.int(pactffi.LoggerCantConstructSink), "logger_attach_sink")

	if sinkSpecifier == nil {
		fail("logger_attach_sink", fmt.Errorf("pactffi: sink specifier: %w", pactffi.ErrSpecifierNotUTF8))
		return C.int(pactffi.LoggerSpecifierNotUTF8)
	}
	err := ctx().LoggerAttachSink(C.GoString(sinkSpecifier), pactffi.LevelFilter(levelFilter))
	return C.int(pactffi.LoggerStatusOf(err))
}

//export pactffi_logger_apply
func pactffi_logger_apply() (rc C.int) {
	defer recoverTo(&rc, C.int(pactffi.LoggerCantConstructSink), "logger_apply")
	return C.int(pactffi.LoggerStatusOf(ctx().LoggerApply()))
}

//export pactffi_fetch_log_buffer
func pactffi_fetch_log_buffer() (out *C.char) {
	defer recoverTo(&out, nil, "fetch_log_buffer")
	return outString("fetch_log_buffer", "log buffer", ctx().FetchLogBuffer())
}

//export pactffi_log_message
func pactffi_log_message(source, logLevel, message *C.char) {
	defer recoverTo(new(struct{}), struct{}{}, "log_message")

	msg, err := goString("message", message)
	if err != nil {
		fail("log_message", err)
		return
	}
	ctx().LogMessage(goStringOr(source, ""), goStringOr(logLevel, ""), msg)
}

// Errors and strings

//export pactffi_get_error_message
func pactffi_get_error_message(buffer *C.char, length C.int) (rc C.int) {
	defer recoverTo(&rc, C.int(pactffi.CopyBufferTooSmall), "get_error_message")

	if buffer == nil {
		return C.int(pactffi.CopyNullBuffer)
	}
	n := int(length)
	if n < 0 {
		n = 0
	}
	buf := unsafe.Slice((*byte)(unsafe.Pointer(buffer)), n)
	return C.int(ctx().CopyErrorMessage(buf))
}

// pactffi_string_delete releases a string returned by this library. NULL is
// accepted and ignored.
//
//export pactffi_string_delete
func pactffi_string_delete(s *C.char) {
	defer recoverTo(new(struct{}), struct{}{}, "string_delete")
	if err := freeCString(s); err != nil {
		fail("string_delete", err)
	}
}

// Messages

//export pactffi_message_new
func pactffi_message_new() *C.Message {
	return messagePtr(ctx().MessageNew())
}

//export pactffi_message_new_from_json
func pactffi_message_new_from_json(index C.uint32_t, jsonStr *C.char, spec C.PactSpecification) (out *C.Message) {
	defer recoverTo(&out, nil, "message_new_from_json")

	doc, err := goString("json", jsonStr)
	if err != nil {
		fail("message_new_from_json", err)
		return nil
	}
	h, err := ctx().MessageNewFromJSON(uint32(index), []byte(doc), pactffi.Specification(spec))
	if err != nil {
		return nil
	}
	return messagePtr(h)
}

//export pactffi_message_delete
func pactffi_message_delete(message *C.Message) (rc C.int) {
	defer recoverTo(&rc, pactffi.ExitFailure, "message_delete")

	h, err := messageHandle(message)
	if err != nil {
		fail("message_delete", err)
		return pactffi.ExitFailure
	}
	if ctx().MessageDelete(h) != nil {
		return pactffi.ExitFailure
	}
	return pactffi.ExitSuccess
}

//export pactffi_message_get_description
func pactffi_message_get_description(message *C.Message) (out *C.char) {
	defer recoverTo(&out, nil, "message_get_description")

	h, err := messageHandle(message)
	if err != nil {
		fail("message_get_description", err)
		return nil
	}
	desc, ok, err := ctx().MessageDescription(h)
	if err != nil || !ok {
		return nil
	}
	return outString("message_get_description", "description", desc)
}

//export pactffi_message_set_description
func pactffi_message_set_description(message *C.Message, description *C.char) (rc C.int) {
	defer recoverTo(&rc, pactffi.ExitFailure, "message_set_description")

	h, err := messageHandle(message)
	if err == nil {
		var desc string
		if desc, err = goString("description", description); err == nil {
			if ctx().MessageSetDescription(h, desc) != nil {
				return pactffi.ExitFailure
			}
			return pactffi.ExitSuccess
		}
	}
	fail("message_set_description", err)
	return pactffi.ExitFailure
}

//export pactffi_message_get_contents
func pactffi_message_get_contents(message *C.Message) (out *C.char) {
	defer recoverTo(&out, nil, "message_get_contents")

	h, err := messageHandle(message)
	if err != nil {
		fail("message_get_contents", err)
		return nil
	}
	contents, ok, err := ctx().MessageContents(h)
	if err != nil || !ok {
		return nil
	}
	return outString("message_get_contents", "contents", contents)
}

//export pactffi_message_set_contents
func pactffi_message_set_contents(message *C.Message, contents *C.char) (rc C.int) {
	defer recoverTo(&rc, pactffi.ExitFailure, "message_set_contents")

	h, err := messageHandle(message)
	if err == nil {
		var body string
		if body, err = goString("contents", contents); err == nil {
			if ctx().MessageSetContents(h, body) != nil {
				return pactffi.ExitFailure
			}
			return pactffi.ExitSuccess
		}
	}
	fail("message_set_contents", err)
	return pactffi.ExitFailure
}

//export pactffi_message_get_provider_state
func pactffi_message_get_provider_state(message *C.Message, index C.uint32_t) (out *C.ProviderState) {
	defer recoverTo(&out, nil, "message_get_provider_state")

	h, err := messageHandle(message)
	if err != nil {
		fail("message_get_provider_state", err)
		return nil
	}
	ps, ok, err := ctx().MessageProviderState(h, int(index))
	if err != nil || !ok {
		return nil
	}
	out, err = newProviderState(ps)
	if err != nil {
		fail("message_get_provider_state", err)
		return nil
	}
	return out
}

// Metadata

//export pactffi_message_find_metadata
func pactffi_message_find_metadata(message *C.Message, key *C.char) (out *C.char) {
	defer recoverTo(&out, nil, "message_find_metadata")

	h, err := messageHandle(message)
	if err != nil {
		fail("message_find_metadata", err)
		return nil
	}
	k, err := goString("key", key)
	if err != nil {
		fail("message_find_metadata", err)
		return nil
	}
	v, ok, err := ctx().MessageFindMetadata(h, k)
	if err != nil || !ok {
		return nil
	}
	return outString("message_find_metadata", "metadata value", v)
}

//export pactffi_message_insert_metadata
func pactffi_message_insert_metadata(message *C.Message, key, value *C.char) (rc C.int) {
	defer recoverTo(&rc, C.int(pactffi.InsertFailed), "message_insert_metadata")

	h, err := messageHandle(message)
	if err != nil {
		fail("message_insert_metadata", err)
		return C.int(pactffi.InsertFailed)
	}
	k, err := goString("key", key)
	if err != nil {
		fail("message_insert_metadata", err)
		return C.int(pactffi.InsertFailed)
	}
	v, err := goString("value", value)
	if err != nil {
		fail("message_insert_metadata", err)
		return C.int(pactffi.InsertFailed)
	}
	return C.int(pactffi.InsertStatusOf(ctx().MessageInsertMetadata(h, k, v)))
}

//export pactffi_message_get_metadata_iter
func pactffi_message_get_metadata_iter(message *C.Message) (out *C.MessageMetadataIterator) {
	defer recoverTo(&out, nil, "message_get_metadata_iter")

	h, err := messageHandle(message)
	if err != nil {
		fail("message_get_metadata_iter", err)
		return nil
	}
	it, err := ctx().MessageMetadataIter(h)
	if err != nil {
		return nil
	}
	return metadataIterPtr(it)
}

// pactffi_metadata_iter_next returns the next pair or NULL at the end. A pair
// C cannot represent is reported and skipped.
//
//export pactffi_metadata_iter_next
func pactffi_metadata_iter_next(iter *C.MessageMetadataIterator) (out *C.MessageMetadataPair) {
	defer recoverTo(&out, nil, "metadata_iter_next")

	it, err := metadataIterHandle(iter)
	if err != nil {
		fail("metadata_iter_next", err)
		return nil
	}
	for {
		ph, ok, err := ctx().MetadataIterNext(it)
		if err != nil || !ok {
			return nil
		}
		pair, err := ctx().MetadataPair(ph)
		if err != nil {
			return nil
		}
		if out, err = newMetadataPair(ph, pair); err == nil {
			return out
		}
		_ = ctx().MetadataPairDelete(ph)
		fail("metadata_iter_next", err)
	}
}

//export pactffi_metadata_pair_delete
func pactffi_metadata_pair_delete(pair *C.MessageMetadataPair) (rc C.int) {
	defer recoverTo(&rc, pactffi.ExitFailure, "metadata_pair_delete")

	h, err := releaseMetadataPair(pair)
	if err != nil {
		fail("metadata_pair_delete", err)
		return pactffi.ExitFailure
	}
	if ctx().MetadataPairDelete(h) != nil {
		return pactffi.ExitFailure
	}
	return pactffi.ExitSuccess
}

//export pactffi_metadata_iter_delete
func pactffi_metadata_iter_delete(iter *C.MessageMetadataIterator) (rc C.int) {
	defer recoverTo(&rc, pactffi.ExitFailure, "metadata_iter_delete")

	it, err := metadataIterHandle(iter)
	if err != nil {
		fail("metadata_iter_delete", err)
		return pactffi.ExitFailure
	}
	if ctx().MetadataIterDelete(it) != nil {
		return pactffi.ExitFailure
	}
	return pactffi.ExitSuccess
}

// Provider states

//export pactffi_message_get_provider_state_iter
func pactffi_message_get_provider_state_iter(message *C.Message) (out *C.ProviderStateIterator) {
	defer recoverTo(&out, nil, "message_get_provider_state_iter")

	h, err := messageHandle(message)
	if err != nil {
		fail("message_get_provider_state_iter", err)
		return nil
	}
	it, err := ctx().MessageProviderStateIter(h)
	if err != nil {
		return nil
	}
	return stateIterPtr(it)
}

// pactffi_provider_state_iter_next returns the next state or NULL at the end.
// A state C cannot represent is reported and skipped.
//
//export pactffi_provider_state_iter_next
func pactffi_provider_state_iter_next(iter *C.ProviderStateIterator) (out *C.ProviderState) {
	defer recoverTo(&out, nil, "provider_state_iter_next")

	it, err := stateIterHandle(iter)
	if err != nil {
		fail("provider_state_iter_next", err)
		return nil
	}
	for {
		ps, ok, err := ctx().ProviderStateIterNext(it)
		if err != nil || !ok {
			return nil
		}
		if out, err = newProviderState(ps); err == nil {
			return out
		}
		fail("provider_state_iter_next", err)
	}
}

//export pactffi_provider_state_iter_delete
func pactffi_provider_state_iter_delete(iter *C.ProviderStateIterator) (rc C.int) {
	defer recoverTo(&rc, pactffi.ExitFailure, "provider_state_iter_delete")

	it, err := stateIterHandle(iter)
	if err != nil {
		fail("provider_state_iter_delete", err)
		return pactffi.ExitFailure
	}
	if ctx().ProviderStateIterDelete(it) != nil {
		return pactffi.ExitFailure
	}
	return pactffi.ExitSuccess
}

// pactffi_provider_state_get_name returns a copy of the name, released with
// pactffi_string_delete
//
//export pactffi_provider_state_get_name
func pactffi_provider_state_get_name(ps *C.ProviderState) (out *C.char) {
	defer recoverTo(&out, nil, "provider_state_get_name")

	if ps == nil || !ownedStates.owns(uintptr(unsafe.Pointer(ps))) {
		fail("provider_state_get_name", fmt.Errorf("pactffi: provider state: %w", pactffi.ErrInvalidArgument))
		return nil
	}
	return outString("provider_state_get_name", "provider state name", C.GoString(ps.name))
}

//export pactffi_provider_state_delete
func pactffi_provider_state_delete(ps *C.ProviderState) (rc C.int) {
	defer recoverTo(&rc, pactffi.ExitFailure, "provider_state_delete")

	if err := freeProviderState(ps); err != nil {
		fail("provider_state_delete", err)
		return pactffi.ExitFailure
	}
	return pactffi.ExitSuccess
}
