// Package pactffi is the Go core behind a C boundary for contract messages.
//
// A Context owns everything a foreign caller touches: messages and the
// iterators over their metadata and provider states (addressed by
// generation-checked Handles), a diagnostic Logger whose sinks are configured
// once through a Registry, and an ErrorChannel holding the text of the last
// failure.
//
// Logger configuration is a three step state machine:
//
//	ctx.LoggerInit()
//	ctx.LoggerAttachSink("file /var/log/pact.log", pactffi.FilterDebug)
//	ctx.LoggerAttachSink("stderr", pactffi.FilterError)
//	ctx.LoggerApply()
//
// After LoggerApply the sinks are fixed for the life of the Context.
//
// The cmd/pactffi package exports the default Context as a C shared library.
package pactffi
