package kv

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/strayaworks/graphdb/pkg/config"
)

// cacheEntry holds one cached raw value, keyed by the string form of its
// store key (BadgerDB keys are themselves byte slices, which can't be map
// keys directly).
type cacheEntry struct {
	key   string
	value []byte
}

// CacheMetrics holds atomic hit/miss/byte counters for a CachedStore.
// ReadBytes and WriteBytes are lifetime totals — bytes served from cache
// on a hit, and bytes written into cache entries, respectively — and never
// decrease, even as entries are evicted or overwritten. Safe to read
// concurrently with the store's operations.
type CacheMetrics struct {
	hits       uint64
	misses     uint64
	readBytes  uint64
	writeBytes uint64
}

func (m *CacheMetrics) Hits() uint64       { return atomic.LoadUint64(&m.hits) }
func (m *CacheMetrics) Misses() uint64     { return atomic.LoadUint64(&m.misses) }
func (m *CacheMetrics) ReadBytes() uint64  { return atomic.LoadUint64(&m.readBytes) }
func (m *CacheMetrics) WriteBytes() uint64 { return atomic.LoadUint64(&m.writeBytes) }

// HitRate returns hits / (hits + misses) as a percentage, or 0 with no
// traffic yet.
func (m *CacheMetrics) HitRate() float64 {
	hits := m.Hits()
	misses := m.Misses()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// CachedStore wraps a Store with a bounded LRU cache of raw values. Reads
// fill the cache on miss (write-through-on-read); writes invalidate or
// refresh the entry so the cache never serves stale data for keys written
// through this instance.
type CachedStore struct {
	inner   Store
	mu      sync.RWMutex
	list    *list.List
	items   map[string]*list.Element
	maxSize int
	metrics CacheMetrics
}

// NewCachedStore wraps inner with an LRU cache per cfg.
func NewCachedStore(inner Store, cfg config.CacheConfig) *CachedStore {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 10_000
	}
	return &CachedStore{
		inner:   inner,
		list:    list.New(),
		items:   make(map[string]*list.Element, capacity),
		maxSize: capacity,
	}
}

func (c *CachedStore) Get(key []byte, dest any) error {
	raw, err := c.GetRaw(key)
	if err != nil {
		return err
	}
	return unmarshalInto(raw, dest, key)
}

func (c *CachedStore) GetRaw(key []byte) ([]byte, error) {
	k := string(key)

	c.mu.RLock()
	elem, ok := c.items[k]
	c.mu.RUnlock()

	if ok {
		c.mu.Lock()
		c.list.MoveToFront(elem)
		c.mu.Unlock()
		entry := elem.Value.(*cacheEntry)
		atomic.AddUint64(&c.metrics.hits, 1)
		atomic.AddUint64(&c.metrics.readBytes, uint64(len(entry.value)))
		return entry.value, nil
	}

	atomic.AddUint64(&c.metrics.misses, 1)
	raw, err := c.inner.GetRaw(key)
	if err != nil {
		return nil, err
	}
	c.fill(k, raw)
	return raw, nil
}

func (c *CachedStore) Put(key []byte, value any) error {
	data, err := marshalValue(value, key)
	if err != nil {
		return err
	}
	if err := c.inner.Put(key, value); err != nil {
		return err
	}
	c.fill(string(key), data)
	return nil
}

func (c *CachedStore) Delete(key []byte) error {
	if err := c.inner.Delete(key); err != nil {
		return err
	}
	c.invalidate(string(key))
	return nil
}

func (c *CachedStore) Exists(key []byte) (bool, error) {
	c.mu.RLock()
	_, ok := c.items[string(key)]
	c.mu.RUnlock()
	if ok {
		return true, nil
	}
	return c.inner.Exists(key)
}

// IterPrefix always scans the inner store directly: range scans touch keys
// the point-lookup cache was never asked about, so there is nothing useful
// to serve from cache here.
func (c *CachedStore) IterPrefix(prefix []byte, fn func(key, value []byte) error) error {
	return c.inner.IterPrefix(prefix, fn)
}

func (c *CachedStore) NewBatch() Batch {
	return &CachedBatch{cache: c, inner: c.inner.NewBatch()}
}

func (c *CachedStore) Close() error {
	return c.inner.Close()
}

// Metrics returns the cache's hit/miss/byte counters.
func (c *CachedStore) Metrics() *CacheMetrics {
	return &c.metrics
}

// Len returns the number of entries currently cached.
func (c *CachedStore) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.list.Len()
}

// fill inserts or refreshes a cache entry, recording its size against the
// write-bytes counter. That counter is a lifetime total of bytes written
// into the cache, not the cache's current footprint, so it is never
// decremented here or on eviction.
func (c *CachedStore) fill(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	atomic.AddUint64(&c.metrics.writeBytes, uint64(len(value)))

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.value = value
		c.list.MoveToFront(elem)
		return
	}

	for c.list.Len() >= c.maxSize {
		c.evictOldestLocked()
	}

	entry := &cacheEntry{key: key, value: value}
	elem := c.list.PushFront(entry)
	c.items[key] = elem
}

func (c *CachedStore) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.removeElementLocked(elem)
	}
}

func (c *CachedStore) evictOldestLocked() {
	elem := c.list.Back()
	if elem != nil {
		c.removeElementLocked(elem)
	}
}

func (c *CachedStore) removeElementLocked(elem *list.Element) {
	c.list.Remove(elem)
	entry := elem.Value.(*cacheEntry)
	delete(c.items, entry.key)
}

// CachedBatch stages writes against the inner batch and defers cache
// mutation until after the inner commit succeeds — a batch that fails to
// commit must leave the cache exactly as it was.
type CachedBatch struct {
	cache   *CachedStore
	inner   Batch
	puts    []cacheEntry
	deletes []string
}

func (b *CachedBatch) PutSerialized(key []byte, value []byte) error {
	if err := b.inner.PutSerialized(key, value); err != nil {
		return err
	}
	b.puts = append(b.puts, cacheEntry{key: string(key), value: append([]byte(nil), value...)})
	return nil
}

func (b *CachedBatch) Delete(key []byte) error {
	if err := b.inner.Delete(key); err != nil {
		return err
	}
	b.deletes = append(b.deletes, string(key))
	return nil
}

func (b *CachedBatch) Clear() {
	b.inner.Clear()
	b.puts = b.puts[:0]
	b.deletes = b.deletes[:0]
}

// Commit commits the inner batch, then applies the staged cache mutations:
// puts first, then deletes, so a key touched by both within the same batch
// ends up absent from the cache — matching the last-writer-wins semantics
// of the underlying store when a batch both writes and removes a key.
func (b *CachedBatch) Commit() error {
	if err := b.inner.Commit(); err != nil {
		return err
	}
	for _, p := range b.puts {
		b.cache.fill(p.key, p.value)
	}
	for _, k := range b.deletes {
		b.cache.invalidate(k)
	}
	return nil
}
