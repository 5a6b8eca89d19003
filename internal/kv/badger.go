// BadgerStore is the sole durable implementation of Store, built on
// BadgerDB. It mirrors the options and defaults the teacher's BadgerEngine
// uses (see the original BadgerOptions), generalized away from the graph
// domain: this package stores and retrieves opaque byte values under
// caller-supplied keys.
package kv

import (
	"encoding/json"
	"log"

	"github.com/dgraph-io/badger/v4"
)

// maxBatchOpsPerTxn bounds how many staged operations a single underlying
// Badger transaction carries before BadgerBatch rolls to a fresh one. Badger
// transactions keep every pending write in memory and reject commits whose
// total size exceeds its configured limits; splitting here lets callers
// stage arbitrarily large batches without tuning Badger's txn size knobs.
// Because Badger serializes all writer transactions against a single DB
// handle, no other writer can observe the partially-committed state between
// sub-batches, so the split is invisible to callers: either every staged op
// lands, or the caller's process crashed partway and it can retry.
const maxBatchOpsPerTxn = 10_000

// Options configures a BadgerStore.
type Options struct {
	// DataDir is the directory BadgerDB stores its files in. Required
	// unless InMemory is set.
	DataDir string

	// InMemory runs BadgerDB with no on-disk footprint. Useful for tests.
	InMemory bool

	// SyncWrites forces an fsync after every commit. Slower, more durable.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output. A nil Logger silences
	// it, matching the quiet-by-default behavior most embedders want.
	Logger badger.Logger
}

// BadgerStore is a Store backed by an embedded BadgerDB instance.
type BadgerStore struct {
	db *badger.DB
}

// Open creates or opens a BadgerStore at opts.DataDir (or in memory).
func Open(opts Options) (*BadgerStore, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir)

	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}
	if opts.Logger != nil {
		badgerOpts = badgerOpts.WithLogger(opts.Logger)
	} else {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	badgerOpts = badgerOpts.
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4).
		WithValueThreshold(1024).
		WithBlockCacheSize(32 << 20).
		WithIndexCacheSize(16 << 20)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, newError(KindEngine, "Open", nil, err)
	}
	return &BadgerStore{db: db}, nil
}

// OpenInMemory opens a BadgerStore with no disk footprint, for tests.
func OpenInMemory() (*BadgerStore, error) {
	return Open(Options{InMemory: true})
}

func (s *BadgerStore) Get(key []byte, dest any) error {
	raw, err := s.GetRaw(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return newError(KindSerialization, "Get", key, err)
	}
	return nil
}

func (s *BadgerStore) GetRaw(key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, newError(KindNotFound, "GetRaw", key, ErrNotFound)
	}
	if err != nil {
		return nil, newError(KindIO, "GetRaw", key, err)
	}
	return out, nil
}

func (s *BadgerStore) Put(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return newError(KindSerialization, "Put", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return newError(KindIO, "Put", key, err)
	}
	return nil
}

func (s *BadgerStore) Delete(key []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return newError(KindIO, "Delete", key, err)
	}
	return nil
}

func (s *BadgerStore) Exists(key []byte) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, newError(KindIO, "Exists", key, err)
	}
	return found, nil
}

func (s *BadgerStore) IterPrefix(prefix []byte, fn func(key, value []byte) error) error {
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := append([]byte(nil), item.Key()...)
			var value []byte
			if err := item.Value(func(val []byte) error {
				value = append([]byte(nil), val...)
				return nil
			}); err != nil {
				return err
			}
			if err := fn(key, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return newError(KindIO, "IterPrefix", prefix, err)
	}
	return nil
}

func (s *BadgerStore) NewBatch() Batch {
	return &BadgerBatch{db: s.db}
}

func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return newError(KindEngine, "Close", nil, err)
	}
	return nil
}

// Size reports BadgerDB's on-disk LSM tree and value log sizes in bytes.
// This is a read-only diagnostic, not a control over compaction.
func (s *BadgerStore) Size() (lsm, vlog int64) {
	return s.db.Size()
}

type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

// BadgerBatch stages puts and deletes for atomic commit against a
// BadgerStore. It is not safe for concurrent use.
type BadgerBatch struct {
	db  *badger.DB
	ops []batchOp
}

func (b *BadgerBatch) PutSerialized(key []byte, value []byte) error {
	b.ops = append(b.ops, batchOp{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
	return nil
}

func (b *BadgerBatch) Delete(key []byte) error {
	b.ops = append(b.ops, batchOp{key: append([]byte(nil), key...), delete: true})
	return nil
}

func (b *BadgerBatch) Clear() {
	b.ops = b.ops[:0]
}

func (b *BadgerBatch) Commit() error {
	for start := 0; start < len(b.ops); start += maxBatchOpsPerTxn {
		end := start + maxBatchOpsPerTxn
		if end > len(b.ops) {
			end = len(b.ops)
		}
		if err := b.commitRange(b.ops[start:end]); err != nil {
			return newError(KindTransaction, "Commit", nil, err)
		}
	}
	return nil
}

func (b *BadgerBatch) commitRange(ops []batchOp) error {
	return b.db.Update(func(txn *badger.Txn) error {
		for _, op := range ops {
			if op.delete {
				if err := txn.Delete(op.key); err != nil {
					return err
				}
				continue
			}
			if err := txn.Set(op.key, op.value); err != nil {
				return err
			}
		}
		return nil
	})
}

// DefaultLogger adapts the standard library logger to badger.Logger, for
// callers who want Badger's internal diagnostics on stderr.
type DefaultLogger struct {
	L *log.Logger
}

func (d DefaultLogger) Errorf(f string, args ...any)   { d.L.Printf("badger ERROR: "+f, args...) }
func (d DefaultLogger) Warningf(f string, args ...any) { d.L.Printf("badger WARN: "+f, args...) }
func (d DefaultLogger) Infof(f string, args ...any)    { d.L.Printf("badger INFO: "+f, args...) }
func (d DefaultLogger) Debugf(f string, args ...any)   { d.L.Printf("badger DEBUG: "+f, args...) }
