package block

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"citrine/internal/common"
)

func encodeEntries(t *testing.T, entries []*common.Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, e := range entries {
		_, err := common.WriteEntry(&buf, e)
		require.NoError(t, err)
	}
	return buf.Bytes()
}

func TestBlockGet(t *testing.T) {
	entries := []*common.Entry{
		{Type: common.EntryTypePut, Seq: 1, Key: []byte("apple"), Value: []byte("artichoke")},
		{Type: common.EntryTypeDelete, Seq: 2, Key: []byte("banana")},
		{Type: common.EntryTypePut, Seq: 3, Key: []byte("cherry"), Value: []byte("cabbage")},
	}

	blk, err := NewBlock(encodeEntries(t, entries))
	require.NoError(t, err)
	require.Equal(t, 3, blk.Len())

	got, ok := blk.Get([]byte("apple"))
	require.True(t, ok)
	require.Equal(t, []byte("artichoke"), got.Value)

	got, ok = blk.Get([]byte("banana"))
	require.True(t, ok)
	require.Equal(t, common.EntryTypeDelete, got.Type)

	_, ok = blk.Get([]byte("durian"))
	require.False(t, ok)

	_, ok = blk.Get([]byte("aardvark"))
	require.False(t, ok)
}

func TestBlockGetManyEntries(t *testing.T) {
	var entries []*common.Entry
	for i := 0; i < BLOCK_SIZE; i++ {
		entries = append(entries, &common.Entry{
			Type:  common.EntryTypePut,
			Seq:   uint64(i),
			Key:   []byte(fmt.Sprintf("key-%04d", i)),
			Value: []byte(fmt.Sprintf("value-%d", i)),
		})
	}

	blk, err := NewBlock(encodeEntries(t, entries))
	require.NoError(t, err)
	require.Equal(t, BLOCK_SIZE, blk.Len())

	for i := 0; i < BLOCK_SIZE; i++ {
		got, ok := blk.Get([]byte(fmt.Sprintf("key-%04d", i)))
		require.True(t, ok, "key %d", i)
		require.Equal(t, uint64(i), got.Seq)
	}
}

func TestBlockEmpty(t *testing.T) {
	blk, err := NewBlock(nil)
	require.NoError(t, err)
	require.Equal(t, 0, blk.Len())

	_, ok := blk.Get([]byte("anything"))
	require.False(t, ok)
}

func TestBlockEntriesOrder(t *testing.T) {
	entries := []*common.Entry{
		{Type: common.EntryTypePut, Seq: 1, Key: []byte("a"), Value: []byte("1")},
		{Type: common.EntryTypePut, Seq: 2, Key: []byte("b"), Value: []byte("2")},
	}

	blk, err := NewBlock(encodeEntries(t, entries))
	require.NoError(t, err)

	got := blk.Entries()
	require.Len(t, got, 2)
	require.Equal(t, []byte("a"), got[0].Key)
	require.Equal(t, []byte("b"), got[1].Key)
}
