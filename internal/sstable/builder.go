package sstable

import (
	"errors"
	"fmt"
	"io"

	"citrine/internal/block"
	"citrine/internal/common"
	"citrine/internal/filter"
	"citrine/internal/props"
)

// ErrDuplicateCollector reports two dispatch tables registered under the
// same collector name for one build.
var ErrDuplicateCollector = errors.New("duplicate property collector name")

// bloomFalsePositiveRate tunes the filter block size.
const bloomFalsePositiveRate = 0.01

// WriteResult summarizes a finished SSTable build. The DB layer copies
// most of this into the file's manifest metadata.
type WriteResult struct {
	BytesWritten int
	SmallestKey  []byte
	LargestKey   []byte
	EntryCount   uint64

	// NeedCompact is true if any collector asked for recompaction.
	NeedCompact bool

	// Properties holds what was written to the properties block: one
	// group per collector, in registration order.
	Properties []PropertyGroup
}

// WriteSSTable writes a complete table file for the given key-ordered
// entries and returns its summary.
//
// Ownership of every dispatch table in collectors transfers to this call:
// each one is fed every entry, finished into the properties block, asked
// about compaction, and destroyed exactly once, on both success and error
// paths.
//
// Layout:
//
//	+----------------------+
//	| data block 0         |  entries, BLOCK_SIZE per block
//	| data block 1         |
//	| ...                  |
//	+----------------------+
//	| filter block         |  bloom filter over all keys
//	+----------------------+
//	| properties block     |  collector output, ordered pairs
//	+----------------------+
//	| index block          |  first key + offset per data block
//	+----------------------+
//	| footer               |  FOOTER_SIZE bytes, three offsets
//	+----------------------+
func WriteSSTable(w io.Writer, entries []*common.Entry, collectors []props.Table) (*WriteResult, error) {
	destroyed := false
	destroyAll := func() {
		if destroyed {
			return
		}
		destroyed = true
		for _, t := range collectors {
			t.Destroy(t.Handle)
		}
	}
	defer destroyAll()

	names := make([]string, len(collectors))
	seen := make(map[string]struct{}, len(collectors))
	for i, t := range collectors {
		name := props.NameOf(t)
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCollector, name)
		}
		seen[name] = struct{}{}
		names[i] = name
	}

	k, m := filter.OptimalBloomFilterParams(uint64(len(entries)), bloomFalsePositiveRate)
	bloom := filter.NewBloomFilter(k, m)

	offset := uint64(0)
	var index []IndexEntry
	for i, entry := range entries {
		if i%block.BLOCK_SIZE == 0 {
			index = append(index, IndexEntry{FirstKey: entry.Key, Offset: offset})
		}

		n, err := common.WriteEntry(w, entry)
		offset += uint64(n)
		if err != nil {
			return nil, fmt.Errorf("write data block entry: %w", err)
		}

		bloom.Add(entry.Key)
		for _, t := range collectors {
			t.Add(t.Handle,
				bytePtr(entry.Key), len(entry.Key),
				bytePtr(entry.Value), len(entry.Value),
				int32(entry.Type), entry.Seq, offset)
		}
	}

	footer := Footer{FilterOffset: offset}
	n, err := filter.WriteBloomFilter(w, bloom)
	offset += uint64(n)
	if err != nil {
		return nil, fmt.Errorf("write filter block: %w", err)
	}

	footer.PropsOffset = offset
	groups := make([]PropertyGroup, len(collectors))
	needCompact := false
	for i, t := range collectors {
		sink := &propertySink{}
		t.Finish(t.Handle, sink)
		if t.NeedCompact(t.Handle) {
			needCompact = true
		}
		groups[i] = PropertyGroup{Collector: []byte(names[i]), Properties: sink.properties}
	}
	destroyAll()

	n, err = WriteProperties(w, groups)
	offset += uint64(n)
	if err != nil {
		return nil, fmt.Errorf("write properties block: %w", err)
	}

	footer.IndexOffset = offset
	n, err = WriteIndex(w, index)
	offset += uint64(n)
	if err != nil {
		return nil, fmt.Errorf("write index block: %w", err)
	}

	n, err = WriteFooter(w, footer)
	offset += uint64(n)
	if err != nil {
		return nil, fmt.Errorf("write footer: %w", err)
	}

	result := &WriteResult{
		BytesWritten: int(offset),
		EntryCount:   uint64(len(entries)),
		NeedCompact:  needCompact,
		Properties:   groups,
	}
	if len(entries) > 0 {
		result.SmallestKey = entries[0].Key
		result.LargestKey = entries[len(entries)-1].Key
	}
	return result, nil
}

// bytePtr returns a raw view over b. Empty slices yield a nil pointer,
// which the dispatch side accepts for zero-length views.
func bytePtr(b []byte) *byte {
	if len(b) == 0 {
		return nil
	}
	return &b[0]
}
