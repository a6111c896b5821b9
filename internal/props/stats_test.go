package props

import (
	"testing"

	"github.com/stretchr/testify/require"

	"citrine/internal/common"
)

func propsByName(list []Property) map[string]string {
	m := make(map[string]string, len(list))
	for _, p := range list {
		m[string(p.Name)] = string(p.Value)
	}
	return m
}

func TestEntryStatsCollector(t *testing.T) {
	c := NewEntryStats()

	c.Add([]byte("a"), []byte("1"), common.EntryTypePut, 1, 10)
	c.Add([]byte("b"), nil, common.EntryTypeDelete, 2, 25)
	c.Add([]byte("c"), []byte("3"), common.EntryTypeMerge, 3, 40)
	c.Add([]byte("d"), nil, common.EntryTypeSingleDelete, 4, 38)

	got := propsByName(c.Finish())
	require.Equal(t, "4", got[PropEntriesTotal])
	require.Equal(t, "1", got[PropEntriesPuts])
	require.Equal(t, "2", got[PropEntriesTombstones])
	require.Equal(t, "1", got[PropEntriesMerges])
	require.Equal(t, "40", got[PropFileMaxSize])
}

func TestEntryStatsEmptyTable(t *testing.T) {
	got := propsByName(NewEntryStats().Finish())
	require.Equal(t, "0", got[PropEntriesTotal])
	require.Equal(t, "0", got[PropFileMaxSize])
}

func TestEntryStatsFactory(t *testing.T) {
	before := LiveHandles()
	tbl, err := EntryStatsFactory()
	require.NoError(t, err)
	require.Equal(t, "citrine.entry-stats", NameOf(tbl))
	require.False(t, tbl.NeedCompact(tbl.Handle), "entry stats never suggests compaction")
	tbl.Destroy(tbl.Handle)
	require.Equal(t, before, LiveHandles())
}

func TestDeleteRatioCollector(t *testing.T) {
	tests := []struct {
		name       string
		threshold  float64
		minEntries uint64
		puts       int
		deletes    int
		want       bool
	}{
		{"BelowThreshold", 0.5, 0, 9, 1, false},
		{"AtThreshold", 0.5, 0, 5, 5, true},
		{"AboveThreshold", 0.5, 0, 1, 9, true},
		{"AllDeletes", 0.5, 0, 0, 4, true},
		{"TooFewEntries", 0.5, 100, 0, 4, false},
		{"Empty", 0.5, 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewDeleteRatio(tt.threshold, tt.minEntries)
			seq := uint64(0)
			for i := 0; i < tt.puts; i++ {
				seq++
				c.Add([]byte("k"), []byte("v"), common.EntryTypePut, seq, seq)
			}
			for i := 0; i < tt.deletes; i++ {
				seq++
				c.Add([]byte("k"), nil, common.EntryTypeDelete, seq, seq)
			}
			require.Equal(t, tt.want, c.NeedCompact())
		})
	}
}

func TestDeleteRatioThroughDispatch(t *testing.T) {
	tbl, err := DeleteRatioFactory(0.5, 0)()
	require.NoError(t, err)
	defer tbl.Destroy(tbl.Handle)

	key := []byte("k")
	tbl.Add(tbl.Handle, &key[0], len(key), nil, 0, int32(common.EntryTypeDelete), 1, 5)
	tbl.Add(tbl.Handle, &key[0], len(key), nil, 0, int32(common.EntryTypeDelete), 2, 10)

	sink := &recordingSink{}
	tbl.Finish(tbl.Handle, sink)

	got := propsByName(sink.props)
	require.Equal(t, "2", got[PropEntriesTombstones])
	require.Equal(t, "2", got[PropEntriesTotal])
	require.Equal(t, "1.0000", got[PropDeleteRatio])

	require.True(t, tbl.NeedCompact(tbl.Handle))
}
