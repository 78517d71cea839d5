package compat

import (
	"fmt"

	"github.com/lixenwraith/pactffi"
)

// Builder creates gnet and fasthttp adapters sharing one pactffi Logger.
// Without WithContext or WithLogger the process default context is used.
type Builder struct {
	logger *pactffi.Logger
	err    error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithContext routes adapter records into ctx's logger
func (b *Builder) WithContext(ctx *pactffi.Context) *Builder {
	if ctx == nil {
		b.err = fmt.Errorf("pactffi/compat: provided context cannot be nil")
		return b
	}
	b.logger = ctx.Logger()
	return b
}

// WithLogger routes adapter records into l
func (b *Builder) WithLogger(l *pactffi.Logger) *Builder {
	if l == nil {
		b.err = fmt.Errorf("pactffi/compat: provided logger cannot be nil")
		return b
	}
	b.logger = l
	return b
}

// getLogger resolves the logger the adapters write to
func (b *Builder) getLogger() (*pactffi.Logger, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.logger == nil {
		b.logger = pactffi.Default().Logger()
	}
	return b.logger, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(l, opts...), nil
}

// BuildStructuredGnet creates a gnet adapter that records "key=%v"
// arguments as structured fields
func (b *Builder) BuildStructuredGnet(opts ...GnetOption) (*StructuredGnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewStructuredGnetAdapter(l, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(l, opts...), nil
}

// GetLogger returns the logger the adapters write to
func (b *Builder) GetLogger() (*pactffi.Logger, error) {
	return b.getLogger()
}
