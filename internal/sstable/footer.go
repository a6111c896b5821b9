package sstable

import (
	"fmt"
	"io"

	"citrine/internal/common"
)

// FOOTER_SIZE is the fixed trailer length: three uint64 offsets.
const FOOTER_SIZE = 24

// Footer is the fixed-size trailer at the end of every SSTable. The
// offsets locate the filter, properties, and index blocks; the data
// blocks always start at offset zero.
type Footer struct {
	FilterOffset uint64
	PropsOffset  uint64
	IndexOffset  uint64
}

// WriteFooter appends the footer. It must be the last write to the file.
func WriteFooter(w io.Writer, f Footer) (int, error) {
	total := 0
	for _, v := range []uint64{f.FilterOffset, f.PropsOffset, f.IndexOffset} {
		n, err := common.WriteUint64(w, v)
		total += n
		if err != nil {
			return total, fmt.Errorf("write footer: %w", err)
		}
	}
	return total, nil
}

// ReadFooter parses the trailer and sanity-checks the offset ordering.
func ReadFooter(r io.Reader) (Footer, error) {
	var f Footer
	var err error
	if f.FilterOffset, err = common.ReadUint64(r); err != nil {
		return Footer{}, fmt.Errorf("read footer: %w", err)
	}
	if f.PropsOffset, err = common.ReadUint64(r); err != nil {
		return Footer{}, fmt.Errorf("read footer: %w", err)
	}
	if f.IndexOffset, err = common.ReadUint64(r); err != nil {
		return Footer{}, fmt.Errorf("read footer: %w", err)
	}
	if f.FilterOffset > f.PropsOffset || f.PropsOffset > f.IndexOffset {
		return Footer{}, fmt.Errorf("read footer: offsets out of order (%d, %d, %d)",
			f.FilterOffset, f.PropsOffset, f.IndexOffset)
	}
	return f, nil
}
