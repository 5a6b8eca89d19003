// Package kv defines the generic key-value storage abstraction the graph
// layer is built on: a Store/Batch contract with one durable implementation
// (BadgerStore), an LRU read cache (CachedStore), a background range
// prefetcher (PrefetchIterator), and an adaptive router between the two
// (HybridStore).
//
// None of these types know anything about nodes or edges — pkg/graph is the
// only caller that assigns meaning to keys and values here.
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies the failure behind an Error so callers can branch on it
// with errors.As instead of string matching.
type Kind int

const (
	// KindOther covers failures that don't fit a more specific Kind.
	KindOther Kind = iota
	// KindIO covers failures from the underlying storage engine's I/O path.
	KindIO
	// KindSerialization covers encode/decode failures of stored values.
	KindSerialization
	// KindEngine covers failures surfaced by the embedded KV engine itself
	// (e.g. a corrupted value log, a closed database handle).
	KindEngine
	// KindTransaction covers failures specific to batch/transaction commit.
	KindTransaction
	// KindNotFound covers lookups against a key that does not exist.
	KindNotFound
)

// Error is the single error type returned by this package. Wrap it with
// errors.As to recover the Kind and the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Key  []byte
	Err  error
}

func (e *Error) Error() string {
	if e.Key != nil {
		return fmt.Sprintf("kv: %s (key=%q): %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("kv: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, key []byte, err error) *Error {
	return &Error{Kind: kind, Op: op, Key: key, Err: err}
}

// ErrNotFound is returned by Get when a key does not exist. Use
// errors.Is(err, ErrNotFound) to test for it through any wrapping layer.
var ErrNotFound = errors.New("kv: key not found")

// Store is the contract every layer of the storage stack (direct, cached,
// hybrid) satisfies. Implementations must be safe for concurrent use.
type Store interface {
	// Get looks up key and unmarshals its value into dest. Returns
	// ErrNotFound (wrapped) if the key does not exist.
	Get(key []byte, dest any) error

	// GetRaw looks up key and returns its raw stored bytes, or ErrNotFound.
	GetRaw(key []byte) ([]byte, error)

	// Put marshals value and stores it under key, outside of any batch.
	Put(key []byte, value any) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key []byte) error

	// Exists reports whether key is present without decoding its value.
	Exists(key []byte) (bool, error)

	// IterPrefix calls fn for every (key, value) pair whose key starts with
	// prefix, in key order. fn returning an error stops iteration early and
	// that error is returned from IterPrefix.
	IterPrefix(prefix []byte, fn func(key, value []byte) error) error

	// NewBatch starts a batch of writes that commits atomically.
	NewBatch() Batch

	// Close releases any resources held by the store.
	Close() error
}

// Batch stages a sequence of writes for atomic, all-or-nothing commit.
// A Batch is not safe for concurrent use; build it on a single goroutine
// and call Commit once.
type Batch interface {
	// PutSerialized stages value (already marshaled) under key.
	PutSerialized(key []byte, value []byte) error

	// Delete stages the removal of key.
	Delete(key []byte) error

	// Clear discards every staged operation without committing them.
	Clear()

	// Commit applies every staged operation atomically. On success, every
	// staged write is durable; on failure, none of them are visible.
	Commit() error
}

func marshalValue(value any, key []byte) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, newError(KindSerialization, "Put", key, err)
	}
	return data, nil
}

func unmarshalInto(raw []byte, dest any, key []byte) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return newError(KindSerialization, "Get", key, err)
	}
	return nil
}
