// Package pool provides the buffer pool used on the render path.
package pool

import (
	"bytes"
	"sync"
)

// maxPooledCap bounds the buffers kept for reuse.
const maxPooledCap = 64 * 1024

// BufferPool is a pool of bytes.Buffer for reducing allocations.
var BufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// GetBuffer retrieves a buffer from the pool, resetting it for use.
func GetBuffer() *bytes.Buffer {
	buf := BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool.
// Buffers larger than 64KB are discarded to avoid holding too much memory.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledCap {
		return
	}
	BufferPool.Put(buf)
}
