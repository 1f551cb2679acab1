// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package program

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/gogpu/drawstate/draw"
	"github.com/gogpu/drawstate/internal/cache"
)

// Defaults for a new Cache.
const (
	DefaultCapacity        = 32
	DefaultHashBits        = 6
	DefaultSourceCacheSize = 64

	maxHashBits = 16
)

type entry struct {
	program  *Program
	lastUsed uint32
}

func (e *entry) desc() *draw.Descriptor { return e.program.Descriptor() }

// Cache maps descriptors to compiled programs, evicting the least recently
// used program when full.
type Cache struct {
	compiler Compiler
	capacity int
	hashBits uint
	log      *slog.Logger

	table   []*entry // indexed by scrambled checksum
	entries []*entry // sorted by descriptor
	stamp   uint32

	// source of recently evicted programs
	sources *cache.Cache[draw.Descriptor, *Source]

	stats Stats
}

// Stats are cumulative cache counters.
type Stats struct {
	Requests      uint64
	HashHits      uint64 // found through the hash table
	SearchHits    uint64 // found by binary search after a hash miss
	Misses        uint64
	Evictions     uint64
	BuildFailures uint64

	// SourceHits counts misses whose source came from the source cache.
	SourceHits uint64
	// Len is the current number of programs.
	Len int
}

// Option configures a Cache.
type Option func(*Cache)

// WithCapacity sets the maximum number of programs. Values below one are
// raised to one.
func WithCapacity(n int) Option {
	return func(c *Cache) { c.capacity = max(n, 1) }
}

// WithHashBits sets the hash table size to 1<<bits, for bits in [1, 16].
func WithHashBits(bits uint) Option {
	return func(c *Cache) { c.hashBits = min(max(bits, 1), maxHashBits) }
}

// WithLogger sets the logger, overriding the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithSourceCacheSize sets how many evicted sources are kept for fast
// rebuilds. Zero disables the source cache.
func WithSourceCacheSize(n int) Option {
	return func(c *Cache) { c.sources = cache.New[draw.Descriptor, *Source](n) }
}

// NewCache creates a cache that builds programs with compiler.
func NewCache(compiler Compiler, opts ...Option) (*Cache, error) {
	if compiler == nil {
		return nil, ErrNilCompiler
	}
	c := &Cache{
		compiler: compiler,
		capacity: DefaultCapacity,
		hashBits: DefaultHashBits,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sources == nil {
		c.sources = cache.New[draw.Descriptor, *Source](DefaultSourceCacheSize)
	}
	c.table = make([]*entry, 1<<c.hashBits)
	c.entries = make([]*entry, 0, c.capacity)
	return c, nil
}

func (c *Cache) logger() *slog.Logger {
	if c.log != nil {
		return c.log
	}
	return slogger()
}

// hashIndex folds the checksum into a table index.
func (c *Cache) hashIndex(sum uint32) int {
	h := sum ^ sum>>16
	if c.hashBits <= 8 {
		h ^= h >> 8
	}
	return int(h & (1<<c.hashBits - 1))
}

func compareEntry(e *entry, d *draw.Descriptor) int {
	return e.desc().Compare(d)
}

// Program returns the program for dc, building it on a miss. A build
// failure returns an error wrapping ErrBuildFailed and caches nothing.
func (c *Cache) Program(dc *draw.Compiled) (*Program, error) {
	c.stats.Requests++
	d := dc.Descriptor()
	slot := c.hashIndex(d.Checksum())

	e := c.table[slot]
	switch {
	case e != nil && e.desc().Equal(d):
		c.stats.HashHits++
	default:
		i, found := slices.BinarySearchFunc(c.entries, d, compareEntry)
		if found {
			e = c.entries[i]
			c.stats.SearchHits++
			break
		}
		c.stats.Misses++
		p, err := c.build(dc)
		if err != nil {
			c.stats.BuildFailures++
			c.logger().Warn("program: build failed",
				"descriptor", fmt.Sprintf("%08x", d.Checksum()), "err", err)
			return nil, err
		}
		if len(c.entries) >= c.capacity {
			c.evict()
			i, _ = slices.BinarySearchFunc(c.entries, d, compareEntry)
		}
		e = &entry{program: p}
		c.entries = slices.Insert(c.entries, i, e)
		c.logger().Debug("program: built",
			"descriptor", fmt.Sprintf("%08x", d.Checksum()), "entries", len(c.entries))
	}
	c.table[slot] = e
	c.touch(e)
	return e.program, nil
}

// touch stamps e as most recently used. When the stamp would wrap, every
// stamp restarts from zero.
func (c *Cache) touch(e *entry) {
	if c.stamp == math.MaxUint32 {
		for _, x := range c.entries {
			x.lastUsed = 0
		}
		c.stamp = 0
	}
	c.stamp++
	e.lastUsed = c.stamp
}

func (c *Cache) build(dc *draw.Compiled) (*Program, error) {
	d := dc.Descriptor()
	src, ok := c.sources.Get(*d)
	if ok {
		c.stats.SourceHits++
	} else {
		var err error
		if src, err = Synthesize(dc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBuildFailed, err)
		}
	}
	h, err := c.compiler.CompileAndLink(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBuildFailed, src.Label, err)
	}
	return &Program{handle: h, source: src, valid: true}, nil
}

// evict removes the entry with the oldest stamp. Ties go to the first in
// descriptor order.
func (c *Cache) evict() {
	victim := 0
	for i, e := range c.entries {
		if e.lastUsed < c.entries[victim].lastUsed {
			victim = i
		}
	}
	e := c.entries[victim]
	if slot := c.hashIndex(e.desc().Checksum()); c.table[slot] == e {
		c.table[slot] = nil
	}
	c.entries = slices.Delete(c.entries, victim, victim+1)
	c.sources.Set(*e.desc(), e.program.source)
	c.compiler.DestroyProgram(e.program.handle)
	e.program.invalidate()
	c.stats.Evictions++
	c.logger().Debug("program: evicted",
		"descriptor", fmt.Sprintf("%08x", e.desc().Checksum()), "lastUsed", e.lastUsed)
}

// Len returns the number of cached programs.
func (c *Cache) Len() int { return len(c.entries) }

// Capacity returns the maximum number of programs.
func (c *Cache) Capacity() int { return c.capacity }

// Stats returns the counters.
func (c *Cache) Stats() Stats {
	s := c.stats
	s.Len = len(c.entries)
	return s
}

// InvalidateViewMatrices makes every program report a changed view matrix
// on its next Uniforms call.
func (c *Cache) InvalidateViewMatrices() {
	for _, e := range c.entries {
		e.program.InvalidateViewMatrix()
	}
}

// Abandon forgets every program without releasing it, for use after the
// GPU context is lost. The cache stays usable.
func (c *Cache) Abandon() {
	n := len(c.entries)
	for _, e := range c.entries {
		e.program.invalidate()
	}
	c.reset()
	c.logger().Info("program: cache abandoned", "programs", n)
}

// Destroy releases every program through the compiler. The cache stays
// usable.
func (c *Cache) Destroy() {
	for _, e := range c.entries {
		c.compiler.DestroyProgram(e.program.handle)
		e.program.invalidate()
	}
	c.reset()
}

func (c *Cache) reset() {
	clear(c.table)
	clear(c.entries)
	c.entries = c.entries[:0]
	c.stamp = 0
}
