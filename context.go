package pactffi

import (
	"strings"
)

// Log sources used by Context operations
const (
	sourceMessage  = "message"
	sourceMetadata = "metadata"
	sourceState    = "provider_state"
	sourceLogger   = "logger"
)

// Context owns one error channel, logger, sink registry and handle store.
// The C boundary uses the process default; tests build their own.
type Context struct {
	cfg      *Config
	errors   *ErrorChannel
	logger   *Logger
	registry *Registry
	store    *Store
}

// NewContext creates a Context. A nil cfg selects the defaults.
func NewContext(cfg *Config) (*Context, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := NewLogger()
	if err := logger.ApplyConfig(cfg); err != nil {
		return nil, err
	}

	return &Context{
		cfg:      cfg.Clone(),
		errors:   NewErrorChannel(int(cfg.ErrorMaxLength)),
		logger:   logger,
		registry: NewRegistry(logger),
		store:    NewStore(),
	}, nil
}

// Config returns a copy of the configuration the Context was built with
func (c *Context) Config() *Config {
	return c.cfg.Clone()
}

// Errors returns the context's error channel
func (c *Context) Errors() *ErrorChannel {
	return c.errors
}

// Logger returns the context's logger
func (c *Context) Logger() *Logger {
	return c.logger
}

// Registry returns the context's sink registry
func (c *Context) Registry() *Registry {
	return c.registry
}

// Stats returns the live handle counts
func (c *Context) Stats() StoreStats {
	return c.store.Stats()
}

// Close releases every live handle and closes the logger's sinks
func (c *Context) Close() error {
	released := c.store.Reset()
	if n := released.Total(); n > 0 {
		c.logger.LogSource(LevelDebug, sourceMessage, "released live handles on close", "count", n)
	}
	return c.logger.Close()
}

// fail records err in the error channel and logs it under source
func (c *Context) fail(source string, op string, err error) error {
	c.errors.Set(err)
	c.logger.LogSource(LevelError, source, op, "failed", "error", strings.TrimPrefix(err.Error(), errorPrefix))
	return err
}

// ReportError stores an error raised outside the Context, such as by the C layer
func (c *Context) ReportError(op string, err error) {
	if err == nil {
		return
	}
	_ = c.fail(sourceLogger, op, err)
}

// CopyErrorMessage copies the last error into buf. See ErrorChannel.CopyTo.
func (c *Context) CopyErrorMessage(buf []byte) int {
	return c.errors.CopyTo(buf)
}

// LastError returns the last error message
func (c *Context) LastError() string {
	return c.errors.Last()
}

// LoggerInit starts collecting sinks
func (c *Context) LoggerInit() {
	c.registry.Init()
}

// LoggerAttachSink adds a sink to the pending logger configuration
func (c *Context) LoggerAttachSink(spec string, filter LevelFilter) error {
	if err := c.registry.AttachSink(spec, filter); err != nil {
		return c.fail(sourceLogger, "logger_attach_sink", err)
	}
	c.logger.LogSource(LevelTrace, sourceLogger, "sink attached", "spec", spec, "filter", filter.String())
	return nil
}

// LoggerApply installs the pending sinks
func (c *Context) LoggerApply() error {
	if err := c.registry.Apply(); err != nil {
		return c.fail(sourceLogger, "logger_apply", err)
	}
	return nil
}

// FetchLogBuffer returns what buffer sinks have captured
func (c *Context) FetchLogBuffer() string {
	return c.logger.FetchBuffer()
}

// LogMessage writes a caller supplied message through the installed sinks.
// An unrecognized level name logs at info.
func (c *Context) LogMessage(source, level, message string) {
	lvl, err := Level(level)
	if err != nil {
		lvl = LevelInfo
	}
	if source == "" {
		source = "client"
	}
	c.logger.LogSource(lvl, source, message)
}

// MessageNew creates an empty message
func (c *Context) MessageNew() Handle {
	h := c.store.AddMessage(NewMessage())
	c.logger.LogSource(LevelTrace, sourceMessage, "message created", "handle", h)
	return h
}

// MessageNewFromJSON creates a message from a JSON document. On failure no
// handle is registered.
func (c *Context) MessageNewFromJSON(index uint32, data []byte, spec Specification) (Handle, error) {
	msg, err := NewMessageFromJSON(index, data, spec)
	if err != nil {
		return 0, c.fail(sourceMessage, "message_new_from_json", err)
	}
	h := c.store.AddMessage(msg)
	c.logger.LogSource(LevelTrace, sourceMessage, "message created from JSON", "handle", h, "spec", spec.String())
	return h, nil
}

// MessageDelete releases a message. Deleting a released or unknown handle
// fails with ErrInvalidHandle.
func (c *Context) MessageDelete(h Handle) error {
	if err := c.store.RemoveMessage(h); err != nil {
		return c.fail(sourceMessage, "message_delete", err)
	}
	c.logger.LogSource(LevelTrace, sourceMessage, "message deleted", "handle", h)
	return nil
}

// message looks up a live message, reporting failures under op
func (c *Context) message(op string, h Handle) (*Message, error) {
	msg, err := c.store.Message(h)
	if err != nil {
		return nil, c.fail(sourceMessage, op, err)
	}
	return msg, nil
}

// MessageDescription returns the description, and false when none is set
func (c *Context) MessageDescription(h Handle) (string, bool, error) {
	msg, err := c.message("message_get_description", h)
	if err != nil {
		return "", false, err
	}
	desc, ok := msg.Description()
	return desc, ok, nil
}

// MessageSetDescription replaces the description
func (c *Context) MessageSetDescription(h Handle, description string) error {
	msg, err := c.message("message_set_description", h)
	if err != nil {
		return err
	}
	msg.SetDescription(description)
	return nil
}

// MessageContents returns the contents, and false when none are set
func (c *Context) MessageContents(h Handle) (string, bool, error) {
	msg, err := c.message("message_get_contents", h)
	if err != nil {
		return "", false, err
	}
	contents, ok := msg.Contents()
	return contents, ok, nil
}

// MessageSetContents replaces the contents
func (c *Context) MessageSetContents(h Handle, contents string) error {
	msg, err := c.message("message_set_contents", h)
	if err != nil {
		return err
	}
	msg.SetContents(contents)
	return nil
}

// MessageProviderState returns a copy of the state at index. An index out of
// range returns false without an error.
func (c *Context) MessageProviderState(h Handle, index int) (ProviderState, bool, error) {
	msg, err := c.message("message_get_provider_state", h)
	if err != nil {
		return ProviderState{}, false, err
	}
	ps, ok := msg.ProviderState(index)
	return ps, ok, nil
}

// MessageFindMetadata returns the value for key. An absent key returns
// false without an error.
func (c *Context) MessageFindMetadata(h Handle, key string) (string, bool, error) {
	msg, err := c.message("message_find_metadata", h)
	if err != nil {
		return "", false, err
	}
	v, ok := msg.Metadata().Find(key)
	return v, ok, nil
}

// MessageInsertMetadata adds key only if absent. An existing key keeps its
// value and ErrKeyExists is returned.
func (c *Context) MessageInsertMetadata(h Handle, key, value string) error {
	msg, err := c.message("message_insert_metadata", h)
	if err != nil {
		return err
	}
	if err := msg.Metadata().Insert(key, value); err != nil {
		return c.fail(sourceMetadata, "message_insert_metadata", err)
	}
	c.logger.LogSource(LevelTrace, sourceMetadata, "metadata inserted", "handle", h, "key", key)
	return nil
}

// MessageMetadataIter snapshots the message's metadata into a new iterator
func (c *Context) MessageMetadataIter(h Handle) (Handle, error) {
	msg, err := c.message("message_get_metadata_iter", h)
	if err != nil {
		return 0, err
	}
	return c.store.AddMetadataIter(NewMetadataIterator(msg.Metadata())), nil
}

// MetadataIterNext returns a handle to the next pair, or false at the end.
// Each returned pair must be released with MetadataPairDelete.
func (c *Context) MetadataIterNext(it Handle) (Handle, bool, error) {
	iter, err := c.store.MetadataIter(it)
	if err != nil {
		return 0, false, c.fail(sourceMetadata, "metadata_iter_next", err)
	}
	p, ok := iter.Next()
	if !ok {
		return 0, false, nil
	}
	return c.store.AddPair(p), true, nil
}

// MetadataPair returns the key and value behind a pair handle
func (c *Context) MetadataPair(p Handle) (MetadataPair, error) {
	pair, err := c.store.Pair(p)
	if err != nil {
		return MetadataPair{}, c.fail(sourceMetadata, "metadata_pair", err)
	}
	return pair, nil
}

// MetadataPairDelete releases a pair. Releasing twice fails with ErrInvalidHandle.
func (c *Context) MetadataPairDelete(p Handle) error {
	if err := c.store.RemovePair(p); err != nil {
		return c.fail(sourceMetadata, "metadata_pair_delete", err)
	}
	return nil
}

// MetadataIterDelete releases an iterator. The message is not affected.
func (c *Context) MetadataIterDelete(it Handle) error {
	if err := c.store.RemoveMetadataIter(it); err != nil {
		return c.fail(sourceMetadata, "metadata_iter_delete", err)
	}
	return nil
}

// MessageProviderStateIter snapshots the message's provider states into a new iterator
func (c *Context) MessageProviderStateIter(h Handle) (Handle, error) {
	msg, err := c.message("message_get_provider_state_iter", h)
	if err != nil {
		return 0, err
	}
	return c.store.AddStateIter(NewProviderStateIterator(msg)), nil
}

// ProviderStateIterNext returns the next state, or false at the end
func (c *Context) ProviderStateIterNext(it Handle) (ProviderState, bool, error) {
	iter, err := c.store.StateIter(it)
	if err != nil {
		return ProviderState{}, false, c.fail(sourceState, "provider_state_iter_next", err)
	}
	ps, ok := iter.Next()
	return ps, ok, nil
}

// ProviderStateIterDelete releases an iterator
func (c *Context) ProviderStateIterDelete(it Handle) error {
	if err := c.store.RemoveStateIter(it); err != nil {
		return c.fail(sourceState, "provider_state_iter_delete", err)
	}
	return nil
}
