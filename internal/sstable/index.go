package sstable

import (
	"bytes"
	"fmt"
	"io"

	"citrine/internal/common"
)

// IndexEntry locates one data block. FirstKey is the smallest key in the
// block; Offset is the block's byte position from the start of the file.
// A block's end is the next block's offset, or the filter offset for the
// last block.
type IndexEntry struct {
	FirstKey []byte
	Offset   uint64
}

// WriteIndex appends the index block: a count followed by each entry.
func WriteIndex(w io.Writer, index []IndexEntry) (int, error) {
	total, err := common.WriteUint32(w, uint32(len(index)))
	if err != nil {
		return total, fmt.Errorf("write index count: %w", err)
	}
	for _, ie := range index {
		n, err := common.WriteLenPrefixedBytes(w, ie.FirstKey)
		total += n
		if err != nil {
			return total, fmt.Errorf("write index key: %w", err)
		}
		n, err = common.WriteUint64(w, ie.Offset)
		total += n
		if err != nil {
			return total, fmt.Errorf("write index offset: %w", err)
		}
	}
	return total, nil
}

// ReadIndex parses an index block.
func ReadIndex(r io.Reader) ([]IndexEntry, error) {
	count, err := common.ReadUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read index count: %w", err)
	}
	index := make([]IndexEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		key, err := common.ReadLenPrefixedBytes(r)
		if err != nil {
			return nil, fmt.Errorf("read index key %d: %w", i, err)
		}
		offset, err := common.ReadUint64(r)
		if err != nil {
			return nil, fmt.Errorf("read index offset %d: %w", i, err)
		}
		index = append(index, IndexEntry{FirstKey: key, Offset: offset})
	}
	return index, nil
}

// findBlock returns the position of the block that may contain key, or
// -1 when key sorts before the first block.
func findBlock(index []IndexEntry, key []byte) int {
	// Last block whose FirstKey <= key.
	left, right := 0, len(index)
	for left < right {
		mid := (left + right) / 2
		if bytes.Compare(index[mid].FirstKey, key) <= 0 {
			left = mid + 1
		} else {
			right = mid
		}
	}
	return left - 1
}
