package kv

import (
	"errors"
	"testing"
)

type record struct {
	Name string `json:"name"`
}

func openTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBadgerStore_PutGet(t *testing.T) {
	store := openTestStore(t)

	t.Run("round trips a value", func(t *testing.T) {
		if err := store.Put([]byte("node:1"), record{Name: "Alice"}); err != nil {
			t.Fatalf("Put: %v", err)
		}

		var got record
		if err := store.Get([]byte("node:1"), &got); err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Name != "Alice" {
			t.Errorf("Name = %q, want Alice", got.Name)
		}
	})

	t.Run("missing key returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetRaw([]byte("node:missing"))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestBadgerStore_Delete(t *testing.T) {
	store := openTestStore(t)

	if err := store.Put([]byte("node:2"), record{Name: "Bob"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Delete([]byte("node:2")); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	ok, err := store.Exists([]byte("node:2"))
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("Exists = true after Delete, want false")
	}
}

func TestBadgerStore_IterPrefix(t *testing.T) {
	store := openTestStore(t)

	for _, id := range []string{"1", "2", "3"} {
		if err := store.Put([]byte("node:"+id), record{Name: id}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if err := store.Put([]byte("edge:1"), record{Name: "not-a-node"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var seen []string
	err := store.IterPrefix([]byte("node:"), func(key, value []byte) error {
		seen = append(seen, string(key))
		return nil
	})
	if err != nil {
		t.Fatalf("IterPrefix: %v", err)
	}
	if len(seen) != 3 {
		t.Errorf("len(seen) = %d, want 3: %v", len(seen), seen)
	}
}

func TestBadgerBatch_AtomicCommit(t *testing.T) {
	store := openTestStore(t)

	t.Run("all staged ops land on commit", func(t *testing.T) {
		batch := store.NewBatch()
		if err := batch.PutSerialized([]byte("a"), []byte(`{"name":"a"}`)); err != nil {
			t.Fatalf("PutSerialized: %v", err)
		}
		if err := batch.PutSerialized([]byte("b"), []byte(`{"name":"b"}`)); err != nil {
			t.Fatalf("PutSerialized: %v", err)
		}
		if err := batch.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}

		for _, k := range []string{"a", "b"} {
			if ok, _ := store.Exists([]byte(k)); !ok {
				t.Errorf("key %q missing after commit", k)
			}
		}
	})

	t.Run("clear discards staged ops", func(t *testing.T) {
		batch := store.NewBatch()
		_ = batch.PutSerialized([]byte("c"), []byte(`{"name":"c"}`))
		batch.Clear()
		if err := batch.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		if ok, _ := store.Exists([]byte("c")); ok {
			t.Error("key c present after Clear+Commit, want absent")
		}
	})

	t.Run("large batch splits across sub-transactions but stays atomic", func(t *testing.T) {
		batch := store.NewBatch()
		total := maxBatchOpsPerTxn + 500
		for i := 0; i < total; i++ {
			key := []byte{byte(i), byte(i >> 8), byte(i >> 16)}
			if err := batch.PutSerialized(key, []byte(`{"name":"x"}`)); err != nil {
				t.Fatalf("PutSerialized: %v", err)
			}
		}
		if err := batch.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}

		key0 := []byte{0, 0, 0}
		if ok, _ := store.Exists(key0); !ok {
			t.Error("first key missing after large-batch commit")
		}
		lastI := total - 1
		keyLast := []byte{byte(lastI), byte(lastI >> 8), byte(lastI >> 16)}
		if ok, _ := store.Exists(keyLast); !ok {
			t.Error("last key missing after large-batch commit")
		}
	})
}
