package sstable

import "citrine/internal/common"

// SSTable is an open, immutable table file on disk.
type SSTable interface {
	// Get returns the entry for key. The returned entry may be a
	// tombstone; callers must check its type.
	Get(key []byte) (*common.Entry, bool, error)

	// Properties returns the table's properties block, one group per
	// collector in the order the groups were written.
	Properties() []PropertyGroup

	// Index returns the block index, one entry per data block.
	Index() []IndexEntry

	// FileNo returns the table's file number.
	FileNo() common.FileNo

	// Iterator streams every entry in key order, for inspection and
	// future compaction.
	Iterator() common.EntryIterator

	// Close releases the underlying file handle.
	Close() error
}
