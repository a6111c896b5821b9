package memtable

import (
	"bytes"

	"github.com/zhangyunhao116/skipmap"

	"citrine/internal/common"
)

// SkipMemtableImpl is the default implementation, backed by a concurrent
// skip list so readers never block behind the write path.
type SkipMemtableImpl struct {
	items *skipmap.FuncMap[[]byte, *common.Entry]
}

var _ Memtable = (*SkipMemtableImpl)(nil)

// NewSkipMemtable returns the default skip-list-backed memtable.
func NewSkipMemtable() Memtable {
	return &SkipMemtableImpl{
		items: skipmap.NewFunc[[]byte, *common.Entry](func(a, b []byte) bool {
			return bytes.Compare(a, b) < 0
		}),
	}
}

// Put records or overwrites a key/value pair.
func (m *SkipMemtableImpl) Put(seq uint64, key, value []byte) error {
	m.items.Store(cloneBytes(key), &common.Entry{
		Type:  common.EntryTypePut,
		Seq:   seq,
		Key:   cloneBytes(key),
		Value: cloneBytes(value),
	})
	return nil
}

// Delete installs a tombstone for the given key.
func (m *SkipMemtableImpl) Delete(seq uint64, key []byte) error {
	m.items.Store(cloneBytes(key), &common.Entry{
		Type: common.EntryTypeDelete,
		Seq:  seq,
		Key:  cloneBytes(key),
	})
	return nil
}

// Get returns the most recent entry for key, if any.
func (m *SkipMemtableImpl) Get(key []byte) (*common.Entry, bool) {
	return m.items.Load(key)
}

// Len returns the number of distinct keys currently held.
func (m *SkipMemtableImpl) Len() int {
	return m.items.Len()
}

// Iterator returns a stable snapshot iterator in key order.
func (m *SkipMemtableImpl) Iterator() common.EntryIterator {
	var entries []*common.Entry
	m.items.Range(func(key []byte, entry *common.Entry) bool {
		entries = append(entries, entry)
		return true
	})
	return &memtableIterator{entries: entries}
}
