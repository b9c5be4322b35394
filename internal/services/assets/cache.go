package assets

import (
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// cache keeps loaded assets in hash-selected shards so concurrent loads of
// different paths rarely contend
type cache struct {
	shards []cacheShard
	hits   atomic.Uint64
	misses atomic.Uint64
}

type cacheShard struct {
	mx    sync.RWMutex
	items map[string][]byte
}

func newCache(shardCount int) *cache {
	if shardCount <= 0 {
		shardCount = 16
	}
	c := &cache{shards: make([]cacheShard, shardCount)}
	for i := range c.shards {
		c.shards[i].items = make(map[string][]byte)
	}
	return c
}

func (c *cache) shard(key string) *cacheShard {
	return &c.shards[xxhash.Sum64String(key)%uint64(len(c.shards))]
}

func (c *cache) get(key string) ([]byte, bool) {
	sh := c.shard(key)
	sh.mx.RLock()
	raw, ok := sh.items[key]
	sh.mx.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return raw, ok
}

func (c *cache) put(key string, raw []byte) {
	sh := c.shard(key)
	sh.mx.Lock()
	sh.items[key] = raw
	sh.mx.Unlock()
}

func (c *cache) drop(prefix string) {
	for i := range c.shards {
		sh := &c.shards[i]
		sh.mx.Lock()
		for key := range sh.items {
			if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
				delete(sh.items, key)
			}
		}
		sh.mx.Unlock()
	}
}

func (c *cache) len() int {
	n := 0
	for i := range c.shards {
		sh := &c.shards[i]
		sh.mx.RLock()
		n += len(sh.items)
		sh.mx.RUnlock()
	}
	return n
}
