package kv

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/strayaworks/graphdb/pkg/config"
)

// operationStats counts every read and write since the store was created,
// used to compute the adaptive read ratio. The counts are not reset when
// maybeRebalance clears the routing hints, and HybridConfig.StatsWindowSize
// is not consulted.
type operationStats struct {
	reads  uint64
	writes uint64
}

// HybridStore routes reads between a primary Store and a CachedStore based
// on an adaptive read/write ratio, with a per-key routing hint map so a
// key that's proven cache-friendly keeps using the cache even during a
// window where the aggregate ratio would otherwise route to primary.
// Writes always go to the primary first; the cache write is best-effort and
// logged, never fatal, since the primary copy remains the source of truth.
type HybridStore struct {
	primary *BadgerStore
	cache   *CachedStore
	cfg     config.HybridConfig

	stats operationStats

	hintsMu sync.RWMutex
	hints   map[string]bool // true = route to cache

	opCount uint64
	logger  *log.Logger
}

// NewHybridStore builds a router in front of primary, using cache as its
// accelerated read path.
func NewHybridStore(primary *BadgerStore, cache *CachedStore, cfg config.HybridConfig) *HybridStore {
	if cfg.InitialReadRatioThreshold == 0 {
		cfg = config.DefaultHybridConfig()
	}
	return &HybridStore{
		primary: primary,
		cache:   cache,
		cfg:     cfg,
		hints:   make(map[string]bool),
		logger:  log.Default(),
	}
}

func (h *HybridStore) Get(key []byte, dest any) error {
	raw, err := h.GetRaw(key)
	if err != nil {
		return err
	}
	return unmarshalInto(raw, dest, key)
}

func (h *HybridStore) GetRaw(key []byte) ([]byte, error) {
	atomic.AddUint64(&h.stats.reads, 1)
	h.maybeRebalance()

	if h.shouldUseCache(key) {
		raw, err := h.cache.GetRaw(key)
		h.updateHint(key, err == nil)
		return raw, err
	}
	return h.primary.GetRaw(key)
}

func (h *HybridStore) Put(key []byte, value any) error {
	atomic.AddUint64(&h.stats.writes, 1)
	h.maybeRebalance()

	if err := h.primary.Put(key, value); err != nil {
		return err
	}
	if err := h.cache.Put(key, value); err != nil {
		h.logger.Printf("hybrid: cache write failed for key %q, primary copy is authoritative: %v", key, err)
	}
	return nil
}

func (h *HybridStore) Delete(key []byte) error {
	atomic.AddUint64(&h.stats.writes, 1)
	h.maybeRebalance()

	if err := h.primary.Delete(key); err != nil {
		return err
	}
	if err := h.cache.Delete(key); err != nil {
		h.logger.Printf("hybrid: cache delete failed for key %q, primary copy is authoritative: %v", key, err)
	}
	h.clearHint(key)
	return nil
}

func (h *HybridStore) Exists(key []byte) (bool, error) {
	atomic.AddUint64(&h.stats.reads, 1)
	if h.shouldUseCache(key) {
		if ok, err := h.cache.Exists(key); err == nil {
			return ok, nil
		}
	}
	return h.primary.Exists(key)
}

// IterPrefix always scans the primary directly: range scans are not the
// concern the per-key routing hints were built for.
func (h *HybridStore) IterPrefix(prefix []byte, fn func(key, value []byte) error) error {
	return h.primary.IterPrefix(prefix, fn)
}

func (h *HybridStore) NewBatch() Batch {
	return &HybridBatch{
		primaryBatch: h.primary.NewBatch(),
		cacheBatch:   h.cache.NewBatch(),
	}
}

func (h *HybridStore) Close() error {
	if err := h.cache.Close(); err != nil {
		return err
	}
	return nil
}

// readRatio returns reads / (reads + writes) over the store's lifetime.
func (h *HybridStore) readRatio() float64 {
	reads := atomic.LoadUint64(&h.stats.reads)
	writes := atomic.LoadUint64(&h.stats.writes)
	total := reads + writes
	if total == 0 {
		return 0
	}
	return float64(reads) / float64(total)
}

// shouldUseCache decides the read path for key: an existing per-key hint
// wins. Otherwise, until enough operations have been observed to trust the
// measured read ratio, it falls back to a fixed decision derived from the
// configured threshold; past that point the aggregate read ratio against
// the threshold decides.
func (h *HybridStore) shouldUseCache(key []byte) bool {
	h.hintsMu.RLock()
	hint, ok := h.hints[string(key)]
	h.hintsMu.RUnlock()
	if ok {
		return hint
	}
	if atomic.LoadUint64(&h.opCount) < h.cfg.MinOperationsForAdaptive {
		return h.cfg.InitialReadRatioThreshold > 0.5
	}
	return h.readRatio() > h.cfg.InitialReadRatioThreshold
}

func (h *HybridStore) updateHint(key []byte, cacheHit bool) {
	h.hintsMu.Lock()
	h.hints[string(key)] = cacheHit
	h.hintsMu.Unlock()
}

func (h *HybridStore) clearHint(key []byte) {
	h.hintsMu.Lock()
	delete(h.hints, string(key))
	h.hintsMu.Unlock()
}

// maybeRebalance clears all routing hints every RebalanceInterval
// operations once MinOperationsForAdaptive has been reached, so stale
// hints from an earlier access pattern don't pin routing decisions forever.
func (h *HybridStore) maybeRebalance() {
	n := atomic.AddUint64(&h.opCount, 1)
	if n < h.cfg.MinOperationsForAdaptive {
		return
	}
	if h.cfg.RebalanceInterval == 0 || n%h.cfg.RebalanceInterval != 0 {
		return
	}
	h.hintsMu.Lock()
	h.hints = make(map[string]bool)
	h.hintsMu.Unlock()
}

// HybridBatch stages writes to both the primary and cache batches, and
// commits primary first: the cache is only ever an accelerator, so its
// batch must never succeed where the primary batch failed.
type HybridBatch struct {
	primaryBatch Batch
	cacheBatch   Batch
}

func (b *HybridBatch) PutSerialized(key []byte, value []byte) error {
	if err := b.primaryBatch.PutSerialized(key, value); err != nil {
		return err
	}
	return b.cacheBatch.PutSerialized(key, value)
}

func (b *HybridBatch) Delete(key []byte) error {
	if err := b.primaryBatch.Delete(key); err != nil {
		return err
	}
	return b.cacheBatch.Delete(key)
}

func (b *HybridBatch) Clear() {
	b.primaryBatch.Clear()
	b.cacheBatch.Clear()
}

func (b *HybridBatch) Commit() error {
	if err := b.primaryBatch.Commit(); err != nil {
		return err
	}
	if err := b.cacheBatch.Commit(); err != nil {
		log.Printf("hybrid: cache batch commit failed after primary commit succeeded: %v", err)
	}
	return nil
}
