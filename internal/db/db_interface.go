package db

import "citrine/internal/manifest"

// DB is the public key/value surface of the engine.
type DB interface {
	// Put stores a key/value pair. It returns once the write is
	// durable in the WAL.
	Put(key, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key []byte) error

	// Get returns the value for key, or ok=false if the key is absent
	// or deleted.
	Get(key []byte) (value []byte, ok bool, err error)

	// Flush forces the current memtable to an SSTable, running the
	// configured property collectors over it.
	Flush() error

	// TablesNeedingCompact lists the live SSTables whose property
	// collectors flagged them for recompaction, newest first.
	TablesNeedingCompact() []manifest.FileMetadata

	// Close flushes nothing, stops the writer, and releases all file
	// handles. The WAL preserves unflushed writes for the next Open.
	Close() error
}
