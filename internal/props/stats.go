package props

import (
	"strconv"

	"citrine/internal/common"
)

// Property names emitted by the built-in collectors. The "citrine." prefix
// keeps them out of the way of user collectors.
const (
	PropEntriesTotal      = "citrine.entries.total"
	PropEntriesPuts       = "citrine.entries.puts"
	PropEntriesTombstones = "citrine.entries.tombstones"
	PropEntriesMerges     = "citrine.entries.merges"
	PropFileMaxSize       = "citrine.file.max_size"
	PropDeleteRatio       = "citrine.deletes.ratio"
)

// EntryStatsCollector counts entries by kind and tracks the largest file
// size observed during the build. All values are encoded as decimal ASCII.
type EntryStatsCollector struct {
	total      uint64
	puts       uint64
	tombstones uint64
	merges     uint64
	maxSize    uint64
}

// NewEntryStats returns a fresh EntryStatsCollector.
func NewEntryStats() *EntryStatsCollector {
	return &EntryStatsCollector{}
}

// EntryStatsFactory builds the dispatch table for one table build.
func EntryStatsFactory() (Table, error) {
	return Create("citrine.entry-stats", NewEntryStats())
}

func (c *EntryStatsCollector) Add(key, value []byte, entryType common.EntryType, seq, fileSize uint64) {
	c.total++
	switch {
	case entryType == common.EntryTypePut:
		c.puts++
	case entryType.IsTombstone():
		c.tombstones++
	case entryType == common.EntryTypeMerge:
		c.merges++
	}
	if fileSize > c.maxSize {
		c.maxSize = fileSize
	}
}

func (c *EntryStatsCollector) Finish() []Property {
	return []Property{
		uintProperty(PropEntriesTotal, c.total),
		uintProperty(PropEntriesPuts, c.puts),
		uintProperty(PropEntriesTombstones, c.tombstones),
		uintProperty(PropEntriesMerges, c.merges),
		uintProperty(PropFileMaxSize, c.maxSize),
	}
}

// DeleteRatioCollector flags a table for recompaction when tombstones make
// up at least Threshold of its entries. Tables below MinEntries are never
// flagged, so tiny tables don't trigger churn.
type DeleteRatioCollector struct {
	Threshold  float64
	MinEntries uint64

	total      uint64
	tombstones uint64
}

// NewDeleteRatio returns a DeleteRatioCollector with the given tombstone
// ratio threshold in [0, 1].
func NewDeleteRatio(threshold float64, minEntries uint64) *DeleteRatioCollector {
	return &DeleteRatioCollector{Threshold: threshold, MinEntries: minEntries}
}

// DeleteRatioFactory builds a dispatch-table factory with the given
// threshold bound in.
func DeleteRatioFactory(threshold float64, minEntries uint64) Factory {
	return func() (Table, error) {
		return Create("citrine.delete-ratio", NewDeleteRatio(threshold, minEntries))
	}
}

func (c *DeleteRatioCollector) Add(key, value []byte, entryType common.EntryType, seq, fileSize uint64) {
	c.total++
	if entryType.IsTombstone() {
		c.tombstones++
	}
}

func (c *DeleteRatioCollector) Finish() []Property {
	return []Property{
		uintProperty(PropEntriesTombstones, c.tombstones),
		uintProperty(PropEntriesTotal, c.total),
		{
			Name:  []byte(PropDeleteRatio),
			Value: strconv.AppendFloat(nil, c.ratio(), 'f', 4, 64),
		},
	}
}

// NeedCompact implements CompactionSuggester.
func (c *DeleteRatioCollector) NeedCompact() bool {
	return c.total >= c.MinEntries && c.ratio() >= c.Threshold
}

func (c *DeleteRatioCollector) ratio() float64 {
	if c.total == 0 {
		return 0
	}
	return float64(c.tombstones) / float64(c.total)
}

func uintProperty(name string, v uint64) Property {
	return Property{
		Name:  []byte(name),
		Value: strconv.AppendUint(nil, v, 10),
	}
}
