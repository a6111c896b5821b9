package block_cache

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"citrine/internal/block"
	"citrine/internal/common"
)

func makeBlock(t *testing.T, key string) block.Block {
	t.Helper()
	var buf bytes.Buffer
	_, err := common.WriteEntry(&buf, &common.Entry{
		Type:  common.EntryTypePut,
		Seq:   1,
		Key:   []byte(key),
		Value: []byte("v"),
	})
	require.NoError(t, err)

	blk, err := block.NewBlock(buf.Bytes())
	require.NoError(t, err)
	return blk
}

func TestLRUCachePutGet(t *testing.T) {
	c := NewLRUCache(2)

	blk := makeBlock(t, "a")
	c.Put(1, 0, blk)

	got, ok := c.Get(1, 0)
	require.True(t, ok)
	require.Equal(t, blk, got)

	_, ok = c.Get(1, 1)
	require.False(t, ok)
	_, ok = c.Get(2, 0)
	require.False(t, ok)
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache(2)

	c.Put(1, 0, makeBlock(t, "a"))
	c.Put(1, 1, makeBlock(t, "b"))

	// Touch (1,0) so (1,1) becomes the eviction candidate.
	_, ok := c.Get(1, 0)
	require.True(t, ok)

	c.Put(1, 2, makeBlock(t, "c"))
	require.Equal(t, 2, c.Len())

	_, ok = c.Get(1, 1)
	require.False(t, ok, "least recently used block should have been evicted")
	_, ok = c.Get(1, 0)
	require.True(t, ok)
	_, ok = c.Get(1, 2)
	require.True(t, ok)
}

func TestLRUCacheZeroCapacity(t *testing.T) {
	c := NewLRUCache(0)
	c.Put(1, 0, makeBlock(t, "a"))
	require.Equal(t, 0, c.Len())

	_, ok := c.Get(1, 0)
	require.False(t, ok)
}
