package block_cache

import (
	"citrine/internal/block"
	"citrine/internal/common"
)

// BlockCache caches parsed data blocks across all open SSTables so hot
// blocks are not re-read and re-parsed on every lookup.
type BlockCache interface {
	// Get returns the cached block for (fileNo, blockNo), if present.
	Get(fileNo common.FileNo, blockNo common.BlockNo) (block.Block, bool)

	// Put inserts a parsed block, evicting the least recently used entry
	// if the cache is full.
	Put(fileNo common.FileNo, blockNo common.BlockNo, blk block.Block)

	// Len returns the number of cached blocks.
	Len() int
}
