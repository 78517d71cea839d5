package pactffi

// Builder provides a fluent API for building a Context.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg *Config
	err error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new Context with the specified configuration.
func (b *Builder) Build() (*Context, error) {
	if b.err != nil {
		return nil, b.err
	}
	return NewContext(b.cfg)
}

// ConfigFile replaces the configuration with one loaded from a TOML file.
// Setters called afterwards override the file's values.
func (b *Builder) ConfigFile(path string) *Builder {
	if b.err != nil {
		return b
	}
	cfg, err := NewConfigFromFile(path)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg = cfg
	return b
}

// Override applies "key=value" overrides.
func (b *Builder) Override(overrides ...string) *Builder {
	if b.err != nil {
		return b
	}
	cfg, err := b.cfg.WithOverrides(overrides...)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg = cfg
	return b
}

// Format sets the output format.
func (b *Builder) Format(format string) *Builder {
	b.cfg.Format = format
	return b
}

// ShowTimestamp sets whether records carry a timestamp.
func (b *Builder) ShowTimestamp(show bool) *Builder {
	b.cfg.ShowTimestamp = show
	return b
}

// ShowLevel sets whether records carry their level.
func (b *Builder) ShowLevel(show bool) *Builder {
	b.cfg.ShowLevel = show
	return b
}

// TimestampFormat sets the timestamp layout.
func (b *Builder) TimestampFormat(format string) *Builder {
	b.cfg.TimestampFormat = format
	return b
}

// Sanitization sets the sanitizer policy for record text.
func (b *Builder) Sanitization(policy string) *Builder {
	b.cfg.Sanitization = policy
	return b
}

// MaxSizeMB sets the size at which file sinks rotate.
func (b *Builder) MaxSizeMB(size int64) *Builder {
	b.cfg.MaxSizeMB = size
	return b
}

// MaxBackups sets how many rotated files are kept.
func (b *Builder) MaxBackups(n int64) *Builder {
	b.cfg.MaxBackups = n
	return b
}

// RetentionPeriodHrs sets how long rotated files are kept.
func (b *Builder) RetentionPeriodHrs(hours float64) *Builder {
	b.cfg.RetentionPeriodHrs = hours
	return b
}

// Compress sets whether rotated files are gzipped.
func (b *Builder) Compress(compress bool) *Builder {
	b.cfg.Compress = compress
	return b
}

// BufferCapacity sets the bytes retained by each buffer sink.
func (b *Builder) BufferCapacity(size int64) *Builder {
	b.cfg.BufferCapacity = size
	return b
}

// ErrorMaxLength sets the bytes kept of the last error message.
func (b *Builder) ErrorMaxLength(size int64) *Builder {
	b.cfg.ErrorMaxLength = size
	return b
}

// InternalErrorsToStderr sets whether sink failures are echoed to stderr.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}
