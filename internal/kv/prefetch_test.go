package kv

import (
	"errors"
	"fmt"
	"testing"

	"github.com/strayaworks/graphdb/pkg/config"
)

func TestPrefetchIterator_YieldsAllMatchingKeys(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("node:%03d", i)
		if err := store.Put([]byte(key), record{Name: key}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if err := store.Put([]byte("edge:1"), record{Name: "edge"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	it := NewPrefetchIterator(store, []byte("node:"), config.PrefetchConfig{
		PrefetchSize: 4,
		MaxBuffers:   2,
		BufferSize:   4,
	})
	defer it.Close()

	count := 0
	for {
		key, _, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		if len(key) < 5 || string(key[:5]) != "node:" {
			t.Errorf("unexpected key %q from prefix iterator", key)
		}
		count++
	}

	if count != 50 {
		t.Errorf("count = %d, want 50", count)
	}
}

func TestPrefetchIterator_EmptyPrefix(t *testing.T) {
	store := openTestStore(t)

	it := NewPrefetchIterator(store, []byte("nothing:"), config.DefaultPrefetchConfig())
	defer it.Close()

	_, _, ok, err := it.Next()
	if ok {
		t.Error("Next() = ok on empty prefix, want false")
	}
	if err != nil {
		t.Errorf("Next() err = %v, want nil", err)
	}
}

// failingIterStore wraps a real Store but fails its IterPrefix scan after
// yielding failAfter pairs, to exercise PrefetchIterator's error surfacing.
type failingIterStore struct {
	Store
	failAfter int
}

var errSimulatedScanFailure = errors.New("simulated scan failure")

func (f *failingIterStore) IterPrefix(prefix []byte, fn func(key, value []byte) error) error {
	n := 0
	return f.Store.IterPrefix(prefix, func(key, value []byte) error {
		if n >= f.failAfter {
			return errSimulatedScanFailure
		}
		n++
		return fn(key, value)
	})
}

func TestPrefetchIterator_SourceErrorSurfacesAfterBufferedItemsDrain(t *testing.T) {
	store := openTestStore(t)
	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("node:%03d", i)
		if err := store.Put([]byte(key), record{Name: key}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	failing := &failingIterStore{Store: store, failAfter: 3}
	it := NewPrefetchIterator(failing, []byte("node:"), config.PrefetchConfig{
		PrefetchSize: 4,
		MaxBuffers:   2,
		BufferSize:   4,
	})
	defer it.Close()

	count := 0
	var sawErr error
	for {
		_, _, ok, err := it.Next()
		if !ok {
			sawErr = err
			break
		}
		count++
	}

	if count != 3 {
		t.Errorf("count = %d, want 3 (buffered items before the simulated failure)", count)
	}
	if !errors.Is(sawErr, errSimulatedScanFailure) {
		t.Errorf("Next() final err = %v, want errSimulatedScanFailure", sawErr)
	}
}

func TestPrefetchIterator_CloseIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	it := NewPrefetchIterator(store, []byte("node:"), config.DefaultPrefetchConfig())

	if err := it.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := it.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
