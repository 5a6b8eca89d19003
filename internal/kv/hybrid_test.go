package kv

import (
	"fmt"
	"testing"

	"github.com/strayaworks/graphdb/pkg/config"
)

func openHybridTestStore(t *testing.T, hcfg config.HybridConfig) *HybridStore {
	t.Helper()
	primary := openTestStore(t)
	cached := NewCachedStore(primary, config.DefaultCacheConfig())
	return NewHybridStore(primary, cached, hcfg)
}

func TestHybridStore_WritesAlwaysHitPrimary(t *testing.T) {
	hybrid := openHybridTestStore(t, config.DefaultHybridConfig())

	if err := hybrid.Put([]byte("node:1"), record{Name: "Alice"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	ok, err := hybrid.primary.Exists([]byte("node:1"))
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Error("primary missing key after Put, want present")
	}
}

func TestHybridStore_BelowMinOperations_UsesFixedThreshold(t *testing.T) {
	// With MinOperationsForAdaptive effectively unreachable, shouldUseCache
	// must never consult the observed read ratio: it always falls back to
	// a fixed decision derived from whether the threshold itself is above
	// or below 0.5, regardless of how reads and writes are actually mixed.
	hcfg := config.HybridConfig{
		InitialReadRatioThreshold: 0.9,
		MinOperationsForAdaptive:  1_000_000,
		StatsWindowSize:           10_000,
		RebalanceInterval:         1_000_000,
	}
	hybrid := openHybridTestStore(t, hcfg)

	if err := hybrid.Put([]byte("node:1"), record{Name: "Alice"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// One write and this read leave the observed read ratio at 0.5, below
	// the 0.9 threshold - if shouldUseCache consulted it directly, this read
	// would go to primary. The fixed threshold fallback (0.9 > 0.5) must
	// route to cache anyway.
	var got record
	if err := hybrid.Get([]byte("node:1"), &got); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if hybrid.cache.Metrics().Hits() == 0 {
		t.Error("expected the fixed-threshold fallback to route this read to cache")
	}
}

func TestHybridStore_ReadRatioRoutesToCache(t *testing.T) {
	hcfg := config.HybridConfig{
		InitialReadRatioThreshold: 0.5,
		MinOperationsForAdaptive:  0, // adaptive regime active immediately
		StatsWindowSize:           10_000,
		RebalanceInterval:         1_000_000,
	}
	hybrid := openHybridTestStore(t, hcfg)

	if err := hybrid.Put([]byte("node:1"), record{Name: "Alice"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	for i := 0; i < 10; i++ {
		var got record
		if err := hybrid.Get([]byte("node:1"), &got); err != nil {
			t.Fatalf("Get #%d: %v", i, err)
		}
	}

	if hybrid.cache.Metrics().Hits() == 0 {
		t.Error("expected at least one cache hit once read ratio crosses threshold")
	}
}

func TestHybridStore_ReadRecordsPerKeyHint(t *testing.T) {
	hybrid := openHybridTestStore(t, config.DefaultHybridConfig())

	if err := hybrid.Put([]byte("node:1"), record{Name: "Alice"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var got record
	if err := hybrid.Get([]byte("node:1"), &got); err != nil {
		t.Fatalf("Get: %v", err)
	}

	hybrid.hintsMu.RLock()
	_, ok := hybrid.hints["node:1"]
	hybrid.hintsMu.RUnlock()
	if !ok {
		t.Error("expected a routing hint to be recorded after a read")
	}
}

func TestHybridBatch_CommitsPrimaryThenCache(t *testing.T) {
	hybrid := openHybridTestStore(t, config.DefaultHybridConfig())

	batch := hybrid.NewBatch()
	for i := 0; i < 5; i++ {
		key := []byte(fmt.Sprintf("node:%d", i))
		if err := batch.PutSerialized(key, []byte(`{"name":"x"}`)); err != nil {
			t.Fatalf("PutSerialized: %v", err)
		}
	}
	if err := batch.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	for i := 0; i < 5; i++ {
		key := []byte(fmt.Sprintf("node:%d", i))
		if ok, _ := hybrid.primary.Exists(key); !ok {
			t.Errorf("primary missing key %s after batch commit", key)
		}
	}
}
