package memtable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"citrine/internal/common"
)

// Both implementations must satisfy the same behavior; every test runs
// against each.
func implementations() map[string]func() Memtable {
	return map[string]func() Memtable{
		"skip": NewSkipMemtable,
		"map":  NewMapMemtable,
	}
}

func TestMemtablePutGet(t *testing.T) {
	for name, newMemtable := range implementations() {
		t.Run(name, func(t *testing.T) {
			mt := newMemtable()

			require.NoError(t, mt.Put(1, []byte("apple"), []byte("artichoke")))

			entry, ok := mt.Get([]byte("apple"))
			require.True(t, ok)
			require.Equal(t, common.EntryTypePut, entry.Type)
			require.Equal(t, uint64(1), entry.Seq)
			require.Equal(t, []byte("artichoke"), entry.Value)

			_, ok = mt.Get([]byte("missing"))
			require.False(t, ok)
		})
	}
}

func TestMemtableOverwrite(t *testing.T) {
	for name, newMemtable := range implementations() {
		t.Run(name, func(t *testing.T) {
			mt := newMemtable()

			require.NoError(t, mt.Put(1, []byte("k"), []byte("old")))
			require.NoError(t, mt.Put(2, []byte("k"), []byte("new")))

			entry, ok := mt.Get([]byte("k"))
			require.True(t, ok)
			require.Equal(t, []byte("new"), entry.Value)
			require.Equal(t, uint64(2), entry.Seq)
			require.Equal(t, 1, mt.Len())
		})
	}
}

func TestMemtableDelete(t *testing.T) {
	for name, newMemtable := range implementations() {
		t.Run(name, func(t *testing.T) {
			mt := newMemtable()

			require.NoError(t, mt.Put(1, []byte("k"), []byte("v")))
			require.NoError(t, mt.Delete(2, []byte("k")))

			entry, ok := mt.Get([]byte("k"))
			require.True(t, ok, "tombstones stay visible to the DB layer")
			require.Equal(t, common.EntryTypeDelete, entry.Type)

			// Deleting a missing key installs a tombstone, too.
			require.NoError(t, mt.Delete(3, []byte("ghost")))
			entry, ok = mt.Get([]byte("ghost"))
			require.True(t, ok)
			require.Equal(t, common.EntryTypeDelete, entry.Type)
		})
	}
}

func TestMemtableIteratorSorted(t *testing.T) {
	for name, newMemtable := range implementations() {
		t.Run(name, func(t *testing.T) {
			mt := newMemtable()

			// Insert out of order.
			require.NoError(t, mt.Put(1, []byte("cherry"), []byte("3")))
			require.NoError(t, mt.Put(2, []byte("apple"), []byte("1")))
			require.NoError(t, mt.Delete(3, []byte("banana")))

			common.RequireMatchesIterator(t, mt.Iterator(), []*common.Entry{
				{Type: common.EntryTypePut, Seq: 2, Key: []byte("apple"), Value: []byte("1")},
				{Type: common.EntryTypeDelete, Seq: 3, Key: []byte("banana")},
				{Type: common.EntryTypePut, Seq: 1, Key: []byte("cherry"), Value: []byte("3")},
			})
		})
	}
}

func TestMemtableIteratorSnapshot(t *testing.T) {
	for name, newMemtable := range implementations() {
		t.Run(name, func(t *testing.T) {
			mt := newMemtable()
			require.NoError(t, mt.Put(1, []byte("a"), []byte("1")))

			iter := mt.Iterator()

			// Mutations after the snapshot must not appear.
			require.NoError(t, mt.Put(2, []byte("b"), []byte("2")))

			common.RequireMatchesIterator(t, iter, []*common.Entry{
				{Type: common.EntryTypePut, Seq: 1, Key: []byte("a"), Value: []byte("1")},
			})
		})
	}
}

func TestMemtableCallerDoesNotAliasStorage(t *testing.T) {
	for name, newMemtable := range implementations() {
		t.Run(name, func(t *testing.T) {
			mt := newMemtable()

			key := []byte("k")
			value := []byte("v")
			require.NoError(t, mt.Put(1, key, value))

			// Mutating the caller's buffers must not affect stored entries.
			key[0] = 'x'
			value[0] = 'y'

			entry, ok := mt.Get([]byte("k"))
			require.True(t, ok)
			require.Equal(t, []byte("v"), entry.Value)
		})
	}
}

func TestMemtableManyKeys(t *testing.T) {
	for name, newMemtable := range implementations() {
		t.Run(name, func(t *testing.T) {
			mt := newMemtable()

			const n = 500
			for i := 0; i < n; i++ {
				require.NoError(t, mt.Put(uint64(i), []byte(fmt.Sprintf("key-%04d", i)), []byte(fmt.Sprintf("v%d", i))))
			}
			require.Equal(t, n, mt.Len())

			iter := mt.Iterator()
			var prev []byte
			count := 0
			for {
				entry, err := iter.Next()
				require.NoError(t, err)
				if entry == nil {
					break
				}
				if prev != nil {
					require.Less(t, string(prev), string(entry.Key), "iterator must be key-ordered")
				}
				prev = entry.Key
				count++
			}
			require.Equal(t, n, count)
		})
	}
}
