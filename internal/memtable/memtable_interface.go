package memtable

import "citrine/internal/common"

// Memtable is the in-memory sorted buffer of recent mutations. Sequence
// numbers are assigned by the DB layer; the memtable only stores them.
type Memtable interface {
	// Put records or overwrites a key/value pair.
	Put(seq uint64, key, value []byte) error

	// Delete installs a tombstone for the given key.
	// Does not error if the key is missing.
	Delete(seq uint64, key []byte) error

	// Get returns the most recent entry for key, if any. The returned
	// entry may be a tombstone; callers must check its type.
	Get(key []byte) (*common.Entry, bool)

	// Len returns the number of distinct keys currently held.
	Len() int

	// Iterator returns a stable snapshot iterator over the current
	// entries in key order.
	Iterator() common.EntryIterator
}
