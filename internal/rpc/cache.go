package rpc

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

const (
	maxCachedCheckpoints = 256
	maxCachedNames       = 1024
)

// lruCache is a mutex-guarded lru.Cache; the groupcache one is not safe for
// concurrent use.
type lruCache struct {
	mu  sync.Mutex
	lru *lru.Cache
}

func newLRUCache(size int) *lruCache {
	return &lruCache{lru: lru.New(size)}
}

func (c *lruCache) get(key lru.Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(key)
}

func (c *lruCache) add(key lru.Key, v any) {
	c.mu.Lock()
	c.lru.Add(key, v)
	c.mu.Unlock()
}
