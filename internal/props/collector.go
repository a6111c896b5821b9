// Package props implements the table-properties extension point of the
// engine: user-defined collectors observe every entry streamed into an
// SSTable during a build and emit named byte-string properties that are
// stored in the table's properties block.
//
// The engine never sees a collector's concrete type. It holds one opaque
// handle pointer and a fixed table of five dispatch functions (name, add,
// finish, need_compact, destroy). Create instantiates those functions for
// the collector's concrete type, so the pointer reinterpretation inside
// each of them is sound for exactly that type. See Table.
//
// One collector is created per table build. All calls against a single
// handle are sequential: add is invoked once per entry, finish exactly once
// after the last add, need_compact at most once after finish, and destroy
// exactly once at the end of the build. This package adds no locking of its
// own; collectors do not need to be safe for concurrent use.
package props

import "citrine/internal/common"

// Property is one named property emitted by a collector's Finish.
// Names must be unique within a single Finish result.
type Property struct {
	Name  []byte
	Value []byte
}

// Collector observes every key/value pair written into one table and
// produces summary properties at the end of the build.
//
// Add receives borrowed views: key and value are only valid for the
// duration of the call and must be copied if retained. The entryType is the
// engine's enumeration for the operation, seq is the entry's sequence
// number, and fileSize is the size of the table file after the entry was
// written.
//
// Finish is called exactly once, after the last Add. The returned slice is
// consumed immediately; the collector does not need to keep it alive.
type Collector interface {
	Add(key, value []byte, entryType common.EntryType, seq, fileSize uint64)
	Finish() []Property
}

// CompactionSuggester is optionally implemented by collectors that want to
// flag the finished table for recompaction. Collectors without it report
// false.
type CompactionSuggester interface {
	NeedCompact() bool
}

// PropertySink is the engine-owned destination for finished properties.
// Add copies both slices into engine storage; the caller retains ownership
// of its buffers.
type PropertySink interface {
	Add(name, value []byte)
}

// Factory produces one dispatch table per table build. The engine calls it
// each time a new SSTable starts and destroys the result when the build
// ends.
type Factory func() (Table, error)
