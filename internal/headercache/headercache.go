// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package headercache bounds an in-process cache of parsed Local File
// Header metadata, keyed by the header's offset within an archive.
//
// It caches metadata only, never payload bytes: concurrent or repeated Get
// calls for the same member still each issue their own range fetch for the
// payload, but skip redoing the 30-byte header parse.
package headercache

import (
	"hash/maphash"
	"sync"

	"github.com/dgryski/go-tinylfu"
)

// Header is the subset of a re-read Local File Header that MemberExtractor
// needs to compute a payload range.
type Header struct {
	CompressionMethod uint16
	CompressedSize    int64
	UncompressedSize  int64
	FileNameLength    int
	ExtraFieldLength  int
}

// Cache is safe for concurrent use by multiple goroutines.
type Cache struct {
	mu  sync.Mutex
	lfu *tinylfu.T[int64, Header]
}

// New returns a Cache holding at most size entries.
func New(size int) *Cache {
	return &Cache{lfu: tinylfu.New[int64, Header](size, size*10, hashOffset)}
}

// Get returns the cached header parsed at the given Local File Header
// offset, if present.
func (c *Cache) Get(offset int64) (Header, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lfu.Get(offset)
}

// Add records the header parsed at the given offset.
func (c *Cache) Add(offset int64, h Header) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lfu.Add(offset, h)
}

var seed = maphash.MakeSeed()

func hashOffset(k int64) uint64 { return maphash.Comparable(seed, k) }
