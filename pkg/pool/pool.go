// Package pool provides object pooling for the storage stack to reduce
// allocations on hot paths: key/value scratch buffers, string building for
// key encoding, and the (key, value) batch buffers the prefetching iterator
// fills in its background worker.
//
// Usage:
//
//	// Get a buffer from the pool
//	buf := pool.GetByteBuffer()
//	defer pool.PutByteBuffer(buf)
package pool

import (
	"sync"
)

// PoolConfig configures object pooling behavior.
type PoolConfig struct {
	// Enabled controls whether pooling is active
	Enabled bool

	// MaxSize is the largest capacity a []Pair batch may have and still be
	// returned to the pair pool; the other pools use fixed size cutoffs
	MaxSize int
}

var globalConfig = PoolConfig{
	Enabled: true,
	MaxSize: 1000,
}

// Configure sets global pool configuration.
// Should be called early during initialization.
func Configure(config PoolConfig) {
	globalConfig = config
	initPools()
}

// initPools reinitializes all pools with their New functions.
func initPools() {
	byteBufferPool = sync.Pool{
		New: func() any {
			return make([]byte, 0, 1024)
		},
	}
	stringBuilderPool = sync.Pool{
		New: func() any {
			return &PooledStringBuilder{buf: make([]byte, 0, 256)}
		},
	}
	pairBatchPool = sync.Pool{
		New: func() any {
			return make([]Pair, 0, 64)
		},
	}
}

// IsEnabled returns whether pooling is enabled.
func IsEnabled() bool {
	return globalConfig.Enabled
}

// =============================================================================
// Byte Buffer Pool (key/value scratch space)
// =============================================================================

var byteBufferPool = sync.Pool{
	New: func() any {
		return make([]byte, 0, 1024)
	},
}

// GetByteBuffer returns a byte buffer from the pool.
// The returned slice has length 0 but may have capacity.
// Call PutByteBuffer when done.
func GetByteBuffer() []byte {
	if !globalConfig.Enabled {
		return make([]byte, 0, 1024)
	}
	return byteBufferPool.Get().([]byte)[:0]
}

// PutByteBuffer returns a byte buffer to the pool.
func PutByteBuffer(buf []byte) {
	if !globalConfig.Enabled {
		return
	}
	if cap(buf) > 1024*1024 { // Don't pool huge buffers (>1MB)
		return
	}
	byteBufferPool.Put(buf[:0])
}

// =============================================================================
// String Builder Pool (key encoding)
// =============================================================================

var stringBuilderPool = sync.Pool{
	New: func() any {
		return &PooledStringBuilder{buf: make([]byte, 0, 256)}
	},
}

// PooledStringBuilder is a poolable string builder, used for assembling
// keys like "node_edges:<id>:outgoing" without per-call allocation.
type PooledStringBuilder struct {
	buf []byte
}

// WriteString appends a string to the builder.
func (b *PooledStringBuilder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteByte appends a byte to the builder.
func (b *PooledStringBuilder) WriteByte(c byte) {
	b.buf = append(b.buf, c)
}

// Write appends raw bytes to the builder.
func (b *PooledStringBuilder) Write(p []byte) {
	b.buf = append(b.buf, p...)
}

// Bytes returns the built bytes without copying.
func (b *PooledStringBuilder) Bytes() []byte {
	return b.buf
}

// String returns the built string.
func (b *PooledStringBuilder) String() string {
	return string(b.buf)
}

// Len returns current length.
func (b *PooledStringBuilder) Len() int {
	return len(b.buf)
}

// Reset clears the builder for reuse.
func (b *PooledStringBuilder) Reset() {
	b.buf = b.buf[:0]
}

// GetStringBuilder returns a string builder from the pool.
func GetStringBuilder() *PooledStringBuilder {
	if !globalConfig.Enabled {
		return &PooledStringBuilder{buf: make([]byte, 0, 256)}
	}
	b := stringBuilderPool.Get().(*PooledStringBuilder)
	b.Reset()
	return b
}

// PutStringBuilder returns a string builder to the pool.
func PutStringBuilder(b *PooledStringBuilder) {
	if !globalConfig.Enabled || b == nil {
		return
	}
	if cap(b.buf) > 64*1024 { // Don't pool huge buffers
		return
	}
	b.Reset()
	stringBuilderPool.Put(b)
}

// =============================================================================
// Pair Batch Pool (prefetching iterator fill buffers)
// =============================================================================

// Pair is a raw (key, value) byte pair, the unit the prefetching iterator's
// background worker fills and the unit a prefix scan yields.
type Pair struct {
	Key   []byte
	Value []byte
}

var pairBatchPool = sync.Pool{
	New: func() any {
		return make([]Pair, 0, 64)
	},
}

// GetPairBatch returns a []Pair from the pool with length 0.
func GetPairBatch() []Pair {
	if !globalConfig.Enabled {
		return make([]Pair, 0, 64)
	}
	return pairBatchPool.Get().([]Pair)[:0]
}

// PutPairBatch returns a []Pair to the pool, clearing references first.
func PutPairBatch(p []Pair) {
	if !globalConfig.Enabled {
		return
	}
	if cap(p) > globalConfig.MaxSize {
		return
	}
	for i := range p {
		p[i] = Pair{}
	}
	pairBatchPool.Put(p[:0])
}
