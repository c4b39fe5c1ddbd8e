// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package text

import (
	"image"
	"math"
	"slices"
	"sync"
)

// Cache is a generic thread-safe cache with a soft limit. When an insert
// pushes it past the limit, the least recently used quarter is evicted.
//
// Cache must not be copied after creation.
type Cache[K comparable, V any] struct {
	mu        sync.Mutex
	entries   map[K]*cacheEntry[V]
	softLimit int
	tick      int64
}

type cacheEntry[V any] struct {
	value V
	atime int64
}

// NewCache returns a cache evicting past softLimit entries. Zero means
// unlimited.
func NewCache[K comparable, V any](softLimit int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:   make(map[K]*cacheEntry[V]),
		softLimit: softLimit,
	}
}

// GetOrCreate returns the cached value or stores the result of create.
// create runs under the lock, so it is called at most once per key.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	if e, ok := c.entries[key]; ok {
		e.atime = c.tick
		return e.value
	}
	v := create()
	c.entries[key] = &cacheEntry[V]{value: v, atime: c.tick}
	if c.softLimit > 0 && len(c.entries) > c.softLimit {
		c.evict()
	}
	return v
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.tick = 0
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evict trims the cache to three quarters of the soft limit.
// Caller must hold c.mu.
func (c *Cache[K, V]) evict() {
	target := max(c.softLimit*3/4, 1)
	n := len(c.entries) - target
	if n <= 0 {
		return
	}
	type aged struct {
		key   K
		atime int64
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e.atime})
	}
	slices.SortFunc(all, func(a, b aged) int {
		switch {
		case a.atime < b.atime:
			return -1
		case a.atime > b.atime:
			return 1
		}
		return 0
	})
	for _, a := range all[:n] {
		delete(c.entries, a.key)
	}
}

// DefaultGlyphCacheSize is the soft limit used by NewGlyphCache(0).
const DefaultGlyphCacheSize = 4096

// glyphKey identifies one rasterization of a glyph.
type glyphKey struct {
	face *Face
	gid  GlyphID
	size uint32
	sub  uint8
}

// cachedGlyph is a rasterized glyph and its atlas slot.
type cachedGlyph struct {
	mask *image.Alpha

	slot   image.Rectangle
	epoch  uint64
	placed bool
}

// GlyphCache keeps rasterized glyph masks and their atlas placement.
type GlyphCache struct {
	cache  *Cache[glyphKey, *cachedGlyph]
	raster outlineRasterizer
	mu     sync.Mutex
}

// NewGlyphCache returns a cache holding about limit glyphs. Zero selects
// DefaultGlyphCacheSize.
func NewGlyphCache(limit int) *GlyphCache {
	if limit <= 0 {
		limit = DefaultGlyphCacheSize
	}
	return &GlyphCache{cache: NewCache[glyphKey, *cachedGlyph](limit)}
}

// Len returns the number of cached glyphs.
func (c *GlyphCache) Len() int { return c.cache.Len() }

// Clear drops every cached glyph.
func (c *GlyphCache) Clear() { c.cache.Clear() }

// glyph returns the cached rasterization, creating it on a miss. The
// result may have a nil mask for glyphs that draw nothing.
func (c *GlyphCache) glyph(face *Face, gid GlyphID, size float32, sub uint8) *cachedGlyph {
	key := glyphKey{face: face, gid: gid, size: math.Float32bits(size), sub: sub}
	return c.cache.GetOrCreate(key, func() *cachedGlyph {
		c.mu.Lock()
		defer c.mu.Unlock()
		dx := float32(sub) / subpixelSteps
		return &cachedGlyph{mask: c.raster.rasterize(face, gid, size, dx)}
	})
}

// place returns the atlas slot of g, uploading it to atlas when it is not
// there yet or the atlas was cleared since.
func (g *cachedGlyph) place(atlas *Atlas) (image.Rectangle, error) {
	if g.placed && g.epoch == atlas.Epoch() {
		return g.slot, nil
	}
	slot, err := atlas.Insert(g.mask)
	if err != nil {
		return image.Rectangle{}, err
	}
	g.slot, g.epoch, g.placed = slot, atlas.Epoch(), true
	return slot, nil
}
