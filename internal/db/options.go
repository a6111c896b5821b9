package db

import (
	"go.uber.org/zap"

	"citrine/internal/memtable"
	"citrine/internal/props"
)

// Options configures an open database.
type Options struct {
	// FlushThreshold is the memtable entry count that triggers an
	// automatic flush to an SSTable.
	FlushThreshold int

	// BlockCacheCapacity is the number of parsed data blocks the
	// shared cache holds across all open SSTables. Zero disables
	// caching.
	BlockCacheCapacity int

	// PropertyCollectors produce one fresh dispatch table per SSTable
	// build. Factories run at flush time; each table they return is
	// owned and destroyed by that build.
	PropertyCollectors []props.Factory

	// NewMemtable picks the memtable implementation.
	NewMemtable func() memtable.Memtable

	// Logger receives engine diagnostics. nil means no logging.
	Logger *zap.Logger
}

// DefaultOptions returns the configuration used when no options are
// given.
func DefaultOptions() Options {
	return Options{
		FlushThreshold:     4096,
		BlockCacheCapacity: 256,
		NewMemtable:        memtable.NewSkipMemtable,
	}
}

// Option mutates Options in the functional style.
type Option func(*Options)

// WithFlushThreshold sets the memtable size that triggers a flush.
func WithFlushThreshold(entries int) Option {
	return func(o *Options) { o.FlushThreshold = entries }
}

// WithBlockCacheCapacity sets the shared block cache size in blocks.
func WithBlockCacheCapacity(blocks int) Option {
	return func(o *Options) { o.BlockCacheCapacity = blocks }
}

// WithPropertyCollectors registers collector factories run on every
// SSTable build.
func WithPropertyCollectors(factories ...props.Factory) Option {
	return func(o *Options) { o.PropertyCollectors = append(o.PropertyCollectors, factories...) }
}

// WithMemtable picks the memtable implementation.
func WithMemtable(newMemtable func() memtable.Memtable) Option {
	return func(o *Options) { o.NewMemtable = newMemtable }
}

// WithLogger routes engine diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}
