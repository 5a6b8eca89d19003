package kv

import (
	"testing"

	"github.com/strayaworks/graphdb/pkg/config"
)

func openCachedTestStore(t *testing.T, capacity int) (*BadgerStore, *CachedStore) {
	t.Helper()
	inner := openTestStore(t)
	cached := NewCachedStore(inner, config.CacheConfig{Capacity: capacity})
	return inner, cached
}

func TestCachedStore_PutFillsCache(t *testing.T) {
	_, cached := openCachedTestStore(t, 10)

	if err := cached.Put([]byte("node:1"), record{Name: "Alice"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got record
	if err := cached.Get([]byte("node:1"), &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Alice" {
		t.Errorf("Name = %q, want Alice", got.Name)
	}
	if cached.Metrics().Hits() != 1 {
		t.Errorf("Hits = %d, want 1 (Put fills the cache)", cached.Metrics().Hits())
	}
}

func TestCachedStore_ByteCountersAreMonotonic(t *testing.T) {
	_, cached := openCachedTestStore(t, 1)

	if err := cached.Put([]byte("node:1"), record{Name: "Alice"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	writeBytesAfterFirst := cached.Metrics().WriteBytes()
	if writeBytesAfterFirst == 0 {
		t.Fatal("WriteBytes() = 0 after Put, want > 0")
	}

	var got record
	if err := cached.Get([]byte("node:1"), &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cached.Metrics().ReadBytes() == 0 {
		t.Error("ReadBytes() = 0 after a cache hit, want > 0")
	}

	// Capacity 1: this Put evicts node:1 from the cache. WriteBytes must
	// still only grow, never shrink to reflect the eviction.
	if err := cached.Put([]byte("node:2"), record{Name: "Bob"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if cached.Metrics().WriteBytes() < writeBytesAfterFirst {
		t.Errorf("WriteBytes() decreased after eviction: now %d, was %d", cached.Metrics().WriteBytes(), writeBytesAfterFirst)
	}
}

func TestCachedStore_EvictsOnCapacity(t *testing.T) {
	_, cached := openCachedTestStore(t, 2)

	for _, id := range []string{"1", "2", "3"} {
		if err := cached.Put([]byte("node:"+id), record{Name: id}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	if cached.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (capacity bound)", cached.Len())
	}
}

func TestCachedStore_DeleteInvalidates(t *testing.T) {
	_, cached := openCachedTestStore(t, 10)

	if err := cached.Put([]byte("node:1"), record{Name: "Alice"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cached.Delete([]byte("node:1")); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if ok, _ := cached.Exists([]byte("node:1")); ok {
		t.Error("Exists = true after Delete, want false")
	}
}

func TestCachedBatch_DefersUntilCommit(t *testing.T) {
	_, cached := openCachedTestStore(t, 10)

	t.Run("cache stays empty until commit succeeds", func(t *testing.T) {
		batch := cached.NewBatch()
		if err := batch.PutSerialized([]byte("node:2"), []byte(`{"name":"Bob"}`)); err != nil {
			t.Fatalf("PutSerialized: %v", err)
		}

		if cached.Len() != 0 {
			t.Errorf("Len() = %d before Commit, want 0", cached.Len())
		}

		if err := batch.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		if cached.Len() != 1 {
			t.Errorf("Len() = %d after Commit, want 1", cached.Len())
		}
	})

	t.Run("put then delete of same key in one batch ends absent", func(t *testing.T) {
		batch := cached.NewBatch()
		_ = batch.PutSerialized([]byte("node:3"), []byte(`{"name":"Carl"}`))
		_ = batch.Delete([]byte("node:3"))
		if err := batch.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}

		if ok, _ := cached.Exists([]byte("node:3")); ok {
			t.Error("node:3 present in cache after put+delete in same batch")
		}
	})
}
