package memtable

import (
	"sort"
	"sync"

	"citrine/internal/common"
)

// MapMemtableImpl is the baseline Go map-backed implementation, kept for
// comparison and for tests that want the simplest possible behavior.
type MapMemtableImpl struct {
	mu    sync.RWMutex
	items map[string]*common.Entry
}

var _ Memtable = (*MapMemtableImpl)(nil)

// NewMapMemtable returns the map-backed memtable implementation.
func NewMapMemtable() Memtable {
	return &MapMemtableImpl{
		items: make(map[string]*common.Entry),
	}
}

// Put records or overwrites a key/value pair.
func (m *MapMemtableImpl) Put(seq uint64, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[string(key)] = &common.Entry{
		Type:  common.EntryTypePut,
		Seq:   seq,
		Key:   cloneBytes(key),
		Value: cloneBytes(value),
	}
	return nil
}

// Delete installs a tombstone for the given key.
func (m *MapMemtableImpl) Delete(seq uint64, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[string(key)] = &common.Entry{
		Type: common.EntryTypeDelete,
		Seq:  seq,
		Key:  cloneBytes(key),
	}
	return nil
}

// Get returns the most recent entry for key, if any.
func (m *MapMemtableImpl) Get(key []byte) (*common.Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.items[string(key)]
	return entry, ok
}

// Len returns the number of distinct keys currently held.
func (m *MapMemtableImpl) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Iterator returns a stable snapshot iterator over the current entries.
func (m *MapMemtableImpl) Iterator() common.EntryIterator {
	m.mu.RLock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]*common.Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, m.items[k])
	}
	m.mu.RUnlock()

	return &memtableIterator{entries: entries}
}

type memtableIterator struct {
	entries []*common.Entry
	index   int
}

func (it *memtableIterator) Next() (*common.Entry, error) {
	if it.index >= len(it.entries) {
		return nil, nil
	}
	entry := it.entries[it.index]
	it.index++
	return entry, nil
}

func cloneBytes(src []byte) []byte {
	if src == nil {
		return nil
	}
	out := make([]byte, len(src))
	copy(out, src)
	return out
}
