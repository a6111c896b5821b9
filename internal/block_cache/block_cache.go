package block_cache

import (
	"container/list"
	"sync"

	"citrine/internal/block"
	"citrine/internal/common"
)

// cacheKey identifies one block within one SSTable file.
type cacheKey struct {
	fileNo  common.FileNo
	blockNo common.BlockNo
}

type cacheEntry struct {
	key cacheKey
	blk block.Block
}

// lruCache is a fixed-capacity LRU cache of parsed blocks.
type lruCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	items    map[cacheKey]*list.Element
}

var _ BlockCache = (*lruCache)(nil)

// NewLRUCache creates a block cache holding at most capacity blocks.
// A capacity of 0 disables caching.
func NewLRUCache(capacity int) BlockCache {
	return &lruCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[cacheKey]*list.Element),
	}
}

func (c *lruCache) Get(fileNo common.FileNo, blockNo common.BlockNo) (block.Block, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[cacheKey{fileNo, blockNo}]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).blk, true
}

func (c *lruCache) Put(fileNo common.FileNo, blockNo common.BlockNo, blk block.Block) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{fileNo, blockNo}
	if elem, ok := c.items[key]; ok {
		elem.Value.(*cacheEntry).blk = blk
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(&cacheEntry{key: key, blk: blk})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

func (c *lruCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
