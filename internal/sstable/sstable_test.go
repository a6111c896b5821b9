package sstable

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"citrine/internal/block_cache"
	"citrine/internal/common"
	"citrine/internal/props"
)

func makeEntries(n int) []*common.Entry {
	entries := make([]*common.Entry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, &common.Entry{
			Type:  common.EntryTypePut,
			Seq:   uint64(i + 1),
			Key:   []byte(fmt.Sprintf("key-%05d", i)),
			Value: []byte(fmt.Sprintf("value-%d", i)),
		})
	}
	return entries
}

func writeTestTable(t *testing.T, entries []*common.Entry, collectors []props.Table) (string, *WriteResult) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "000001.sst")
	file, err := os.Create(path)
	require.NoError(t, err)

	result, err := WriteSSTable(file, entries, collectors)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	return path, result
}

func TestFooterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := Footer{FilterOffset: 100, PropsOffset: 200, IndexOffset: 300}

	n, err := WriteFooter(&buf, in)
	require.NoError(t, err)
	require.Equal(t, FOOTER_SIZE, n)
	require.Equal(t, FOOTER_SIZE, buf.Len())

	out, err := ReadFooter(&buf)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestFooterRejectsOutOfOrderOffsets(t *testing.T) {
	var buf bytes.Buffer
	_, err := WriteFooter(&buf, Footer{FilterOffset: 300, PropsOffset: 200, IndexOffset: 100})
	require.NoError(t, err)

	_, err = ReadFooter(&buf)
	require.Error(t, err)
}

func TestIndexRoundTripAndSearch(t *testing.T) {
	in := []IndexEntry{
		{FirstKey: []byte("b"), Offset: 0},
		{FirstKey: []byte("f"), Offset: 100},
		{FirstKey: []byte("m"), Offset: 200},
	}

	var buf bytes.Buffer
	_, err := WriteIndex(&buf, in)
	require.NoError(t, err)
	out, err := ReadIndex(&buf)
	require.NoError(t, err)
	require.Equal(t, in, out)

	require.Equal(t, -1, findBlock(out, []byte("a")), "before first block")
	require.Equal(t, 0, findBlock(out, []byte("b")))
	require.Equal(t, 0, findBlock(out, []byte("c")))
	require.Equal(t, 1, findBlock(out, []byte("f")))
	require.Equal(t, 2, findBlock(out, []byte("z")))
}

func TestPropertiesRoundTripPreservesOrder(t *testing.T) {
	in := []PropertyGroup{
		{
			Collector: []byte("second.collector"),
			Properties: []props.Property{
				{Name: []byte("z.last"), Value: []byte("1")},
				{Name: []byte("a.first"), Value: []byte("2")},
			},
		},
		{
			Collector:  []byte("empty.collector"),
			Properties: []props.Property{},
		},
	}

	var buf bytes.Buffer
	_, err := WriteProperties(&buf, in)
	require.NoError(t, err)
	out, err := ReadProperties(&buf)
	require.NoError(t, err)

	require.Len(t, out, len(in))
	for i := range in {
		require.Equal(t, in[i].Collector, out[i].Collector, "group %d", i)
		require.Len(t, out[i].Properties, len(in[i].Properties), "group %d", i)
		for j := range in[i].Properties {
			require.Equal(t, in[i].Properties[j].Name, out[i].Properties[j].Name)
			require.Equal(t, in[i].Properties[j].Value, out[i].Properties[j].Value)
		}
	}
}

func TestWriteSSTableRoundTrip(t *testing.T) {
	entries := makeEntries(200) // spans multiple data blocks

	path, result := writeTestTable(t, entries, nil)
	require.Equal(t, uint64(200), result.EntryCount)
	require.Equal(t, []byte("key-00000"), result.SmallestKey)
	require.Equal(t, []byte("key-00199"), result.LargestKey)
	require.False(t, result.NeedCompact)

	table, err := NewSSTable(path, 1, block_cache.NewLRUCache(16))
	require.NoError(t, err)
	defer table.Close()

	for _, want := range entries {
		entry, ok, err := table.Get(want.Key)
		require.NoError(t, err)
		require.True(t, ok, "key %s", want.Key)
		require.Equal(t, want.Value, entry.Value)
		require.Equal(t, want.Seq, entry.Seq)
	}

	_, ok, err := table.Get([]byte("missing-key"))
	require.NoError(t, err)
	require.False(t, ok)

	common.RequireMatchesIterator(t, table.Iterator(), entries)
}

func TestWriteSSTableEmpty(t *testing.T) {
	path, result := writeTestTable(t, nil, nil)
	require.Equal(t, uint64(0), result.EntryCount)
	require.Nil(t, result.SmallestKey)

	table, err := NewSSTable(path, 1, nil)
	require.NoError(t, err)
	defer table.Close()

	_, ok, err := table.Get([]byte("anything"))
	require.NoError(t, err)
	require.False(t, ok)
	common.RequireMatchesIterator(t, table.Iterator(), nil)
}

func TestWriteSSTableDrivesCollectors(t *testing.T) {
	before := props.LiveHandles()

	stats, err := props.EntryStatsFactory()
	require.NoError(t, err)
	ratio, err := props.DeleteRatioFactory(0.3, 1)()
	require.NoError(t, err)

	entries := []*common.Entry{
		{Type: common.EntryTypePut, Seq: 1, Key: []byte("a"), Value: []byte("1")},
		{Type: common.EntryTypeDelete, Seq: 2, Key: []byte("b")},
		{Type: common.EntryTypeDelete, Seq: 3, Key: []byte("c")},
	}

	path, result := writeTestTable(t, entries, []props.Table{stats, ratio})
	require.Equal(t, before, props.LiveHandles(), "every handle must be destroyed")

	// Two tombstones out of three entries exceeds the 0.3 threshold.
	require.True(t, result.NeedCompact)

	table, err := NewSSTable(path, 7, nil)
	require.NoError(t, err)
	defer table.Close()

	groups := table.Properties()
	require.Len(t, groups, 2)
	require.Equal(t, "citrine.entry-stats", string(groups[0].Collector), "registration order preserved")
	require.Equal(t, "citrine.delete-ratio", string(groups[1].Collector))

	statsProps := flattenGroup(groups[0])
	require.Equal(t, "3", statsProps[props.PropEntriesTotal])
	require.Equal(t, "1", statsProps[props.PropEntriesPuts])
	require.Equal(t, "2", statsProps[props.PropEntriesTombstones])

	ratioProps := flattenGroup(groups[1])
	require.Equal(t, "0.6667", ratioProps[props.PropDeleteRatio])
}

func flattenGroup(g PropertyGroup) map[string]string {
	out := map[string]string{}
	for _, p := range g.Properties {
		out[string(p.Name)] = string(p.Value)
	}
	return out
}

func TestWriteSSTableFileSizeGrowsPerEntry(t *testing.T) {
	table, err := props.EntryStatsFactory()
	require.NoError(t, err)

	entries := makeEntries(3)
	_, result := writeTestTable(t, entries, []props.Table{table})

	require.Len(t, result.Properties, 1)
	got := flattenGroup(result.Properties[0])
	// Max observed file size is the full data section, not zero.
	require.NotEqual(t, "0", got[props.PropFileMaxSize])
}

func TestWriteSSTableRejectsDuplicateCollectorNames(t *testing.T) {
	before := props.LiveHandles()

	first, err := props.EntryStatsFactory()
	require.NoError(t, err)
	second, err := props.EntryStatsFactory()
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = WriteSSTable(&buf, makeEntries(1), []props.Table{first, second})
	require.ErrorIs(t, err, ErrDuplicateCollector)
	require.Equal(t, before, props.LiveHandles(), "handles released on the error path too")
}

func TestSSTableTombstonesSurface(t *testing.T) {
	entries := []*common.Entry{
		{Type: common.EntryTypePut, Seq: 1, Key: []byte("a"), Value: []byte("1")},
		{Type: common.EntryTypeDelete, Seq: 2, Key: []byte("b")},
	}
	path, _ := writeTestTable(t, entries, nil)

	table, err := NewSSTable(path, 1, nil)
	require.NoError(t, err)
	defer table.Close()

	entry, ok, err := table.Get([]byte("b"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, common.EntryTypeDelete, entry.Type)
}

func TestSSTableUsesBlockCache(t *testing.T) {
	cache := block_cache.NewLRUCache(16)
	path, _ := writeTestTable(t, makeEntries(100), nil)

	table, err := NewSSTable(path, 3, cache)
	require.NoError(t, err)
	defer table.Close()

	require.Equal(t, 0, cache.Len())
	_, ok, err := table.Get([]byte("key-00000"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, cache.Len())

	// Second read of the same block must not add another cache entry.
	_, ok, err = table.Get([]byte("key-00001"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, cache.Len())
}
