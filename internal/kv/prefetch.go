package kv

import (
	"sync"

	"github.com/strayaworks/graphdb/pkg/config"
	"github.com/strayaworks/graphdb/pkg/pool"
)

// PrefetchIterator scans a key prefix in the background, filling bounded
// buffers of (key, value) pairs ahead of the caller's consumption. It
// mirrors the worker-goroutine-plus-stop-channel shape the teacher uses for
// its background flush loop, generalized from a periodic flush to a
// one-shot bounded-buffer producer.
type PrefetchIterator struct {
	store  Store
	prefix []byte

	results chan []pool.Pair
	done    chan struct{}

	wg      sync.WaitGroup
	current []pool.Pair
	pos     int
	closed  bool
	mu      sync.Mutex

	// err is set by the worker goroutine at most once, strictly before it
	// closes results. The happens-before edge from that channel close to
	// Next() observing it closed makes this safe to read without its own
	// lock once results is drained.
	err error
}

// NewPrefetchIterator starts a background worker scanning prefix within
// store, buffering up to cfg.MaxBuffers batches of cfg.BufferSize pairs
// ahead of the consumer. The worker issues one fill immediately so the
// first Next call rarely blocks.
func NewPrefetchIterator(store Store, prefix []byte, cfg config.PrefetchConfig) *PrefetchIterator {
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	maxBuffers := cfg.MaxBuffers
	if maxBuffers <= 0 {
		maxBuffers = 4
	}

	it := &PrefetchIterator{
		store:   store,
		prefix:  append([]byte(nil), prefix...),
		results: make(chan []pool.Pair, maxBuffers),
		done:    make(chan struct{}),
	}

	it.wg.Add(1)
	go it.worker(bufferSize)

	return it
}

// worker fills buffers of pairs and pushes them onto the results channel
// until the prefix is exhausted or shutdown is requested. The results
// channel's buffer (cfg.MaxBuffers) is the backpressure mechanism: the
// worker blocks on send once the consumer falls MaxBuffers batches behind,
// and done lets Close interrupt a blocked send promptly.
//
// A source error terminates the stream at the boundary of the batch being
// filled when it occurs: buffers already sent (or still in flight on
// results) are delivered to the caller first, and only once those are
// drained does Next surface the error.
func (it *PrefetchIterator) worker(bufferSize int) {
	defer it.wg.Done()
	defer close(it.results)

	keys, values, snapErr := it.snapshot()
	it.err = snapErr
	sent := 0

	for sent < len(keys) {
		select {
		case <-it.done:
			return
		default:
		}

		batch := pool.GetPairBatch()
		for sent < len(keys) && len(batch) < bufferSize {
			batch = append(batch, pool.Pair{Key: keys[sent], Value: values[sent]})
			sent++
		}

		select {
		case it.results <- batch:
		case <-it.done:
			pool.PutPairBatch(batch)
			return
		}
	}
}

// snapshot scans the whole prefix up front. The scan itself runs inside the
// worker goroutine, off the caller's path; buffering it this way keeps the
// channel protocol identical regardless of how the underlying Store chooses
// to implement IterPrefix (BadgerStore holds a read transaction open for
// the duration of the scan). A non-nil error means the scan stopped early;
// whatever was collected before the error is still returned and delivered.
func (it *PrefetchIterator) snapshot() (keys, values [][]byte, err error) {
	err = it.store.IterPrefix(it.prefix, func(key, value []byte) error {
		keys = append(keys, append([]byte(nil), key...))
		values = append(values, append([]byte(nil), value...))
		return nil
	})
	return keys, values, err
}

// Next returns the next (key, value) pair. ok is false once the prefix has
// been fully consumed; err is non-nil only then, and only if the
// underlying scan failed partway through — already-buffered pairs are
// always delivered first.
func (it *PrefetchIterator) Next() (key, value []byte, ok bool, err error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	for it.pos >= len(it.current) {
		batch, open := <-it.results
		if !open {
			return nil, nil, false, it.err
		}
		if it.current != nil {
			pool.PutPairBatch(it.current)
		}
		it.current = batch
		it.pos = 0
		if len(batch) == 0 {
			return nil, nil, false, it.err
		}
	}

	pair := it.current[it.pos]
	it.pos++
	return pair.Key, pair.Value, true, nil
}

// Close stops the background worker and releases its buffers. Safe to call
// more than once.
func (it *PrefetchIterator) Close() error {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.closed {
		return nil
	}
	it.closed = true
	close(it.done)
	it.wg.Wait()
	for range it.results {
		// drain any buffer left in flight after shutdown
	}
	if it.current != nil {
		pool.PutPairBatch(it.current)
		it.current = nil
	}
	return nil
}
