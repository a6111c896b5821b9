package sstable

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"citrine/internal/block"
	"citrine/internal/block_cache"
	"citrine/internal/common"
	"citrine/internal/filter"
)

// sstableImpl keeps the footer, filter, properties, and index resident;
// data blocks are read on demand through the shared block cache.
type sstableImpl struct {
	fileNo common.FileNo
	file   *os.File
	footer Footer

	filter     filter.Filter
	properties []PropertyGroup
	index      []IndexEntry

	cache block_cache.BlockCache
}

var _ SSTable = (*sstableImpl)(nil)

// NewSSTable opens the table file at path. cache may be nil to disable
// block caching for this table.
func NewSSTable(path string, fileNo common.FileNo, cache block_cache.BlockCache) (SSTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sstable %s: %w", path, err)
	}

	table, err := loadSSTable(file, fileNo, cache)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("load sstable %s: %w", path, err)
	}
	return table, nil
}

func loadSSTable(file *os.File, fileNo common.FileNo, cache block_cache.BlockCache) (*sstableImpl, error) {
	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	size := stat.Size()
	if size < FOOTER_SIZE {
		return nil, fmt.Errorf("file too small for footer: %d bytes", size)
	}

	footer, err := ReadFooter(io.NewSectionReader(file, size-FOOTER_SIZE, FOOTER_SIZE))
	if err != nil {
		return nil, err
	}
	if footer.IndexOffset > uint64(size-FOOTER_SIZE) {
		return nil, fmt.Errorf("index offset %d beyond file end", footer.IndexOffset)
	}

	bloom, err := filter.ReadBloomFilter(io.NewSectionReader(file,
		int64(footer.FilterOffset), int64(footer.PropsOffset-footer.FilterOffset)))
	if err != nil {
		return nil, fmt.Errorf("filter block: %w", err)
	}

	properties, err := ReadProperties(io.NewSectionReader(file,
		int64(footer.PropsOffset), int64(footer.IndexOffset-footer.PropsOffset)))
	if err != nil {
		return nil, fmt.Errorf("properties block: %w", err)
	}

	index, err := ReadIndex(io.NewSectionReader(file,
		int64(footer.IndexOffset), size-FOOTER_SIZE-int64(footer.IndexOffset)))
	if err != nil {
		return nil, fmt.Errorf("index block: %w", err)
	}

	return &sstableImpl{
		fileNo:     fileNo,
		file:       file,
		footer:     footer,
		filter:     bloom,
		properties: properties,
		index:      index,
		cache:      cache,
	}, nil
}

func (s *sstableImpl) Get(key []byte) (*common.Entry, bool, error) {
	if !s.filter.MayContain(key) {
		return nil, false, nil
	}

	pos := findBlock(s.index, key)
	if pos < 0 {
		return nil, false, nil
	}

	blk, err := s.readBlock(pos)
	if err != nil {
		return nil, false, err
	}
	entry, ok := blk.Get(key)
	return entry, ok, nil
}

func (s *sstableImpl) Properties() []PropertyGroup {
	return s.properties
}

func (s *sstableImpl) Index() []IndexEntry {
	return s.index
}

func (s *sstableImpl) FileNo() common.FileNo {
	return s.fileNo
}

// Iterator streams the data section directly, bypassing the block cache
// so a full scan does not evict hot blocks.
func (s *sstableImpl) Iterator() common.EntryIterator {
	return &sstableIterator{
		reader: io.NewSectionReader(s.file, 0, int64(s.footer.FilterOffset)),
	}
}

func (s *sstableImpl) Close() error {
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close sstable %d: %w", s.fileNo, err)
	}
	return nil
}

// readBlock returns the parsed data block at pos, via the cache when one
// is configured.
func (s *sstableImpl) readBlock(pos int) (block.Block, error) {
	blockNo := common.BlockNo(pos)
	if s.cache != nil {
		if blk, ok := s.cache.Get(s.fileNo, blockNo); ok {
			return blk, nil
		}
	}

	start := s.index[pos].Offset
	end := s.footer.FilterOffset
	if pos+1 < len(s.index) {
		end = s.index[pos+1].Offset
	}

	raw := make([]byte, end-start)
	if _, err := s.file.ReadAt(raw, int64(start)); err != nil {
		return nil, fmt.Errorf("read block %d of sstable %d: %w", pos, s.fileNo, err)
	}
	blk, err := block.NewBlock(raw)
	if err != nil {
		return nil, fmt.Errorf("parse block %d of sstable %d: %w", pos, s.fileNo, err)
	}

	if s.cache != nil {
		s.cache.Put(s.fileNo, blockNo, blk)
	}
	return blk, nil
}

type sstableIterator struct {
	reader *io.SectionReader
	buf    *bufio.Reader
}

func (it *sstableIterator) Next() (*common.Entry, error) {
	if it.buf == nil {
		it.buf = bufio.NewReader(it.reader)
	}
	return common.ReadEntry(it.buf)
}
