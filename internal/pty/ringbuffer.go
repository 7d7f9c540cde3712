package pty

import "sync"

// RingBuffer keeps the last size bytes written to it
type RingBuffer struct {
	mu    sync.RWMutex
	data  []byte
	size  int
	write int
	full  bool
}

// NewRingBuffer creates a new ring buffer with the given size
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		data: make([]byte, size),
		size: size,
	}
}

// Write appends p, overwriting the oldest bytes once the buffer is full
func (rb *RingBuffer) Write(p []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if len(p) >= rb.size {
		copy(rb.data, p[len(p)-rb.size:])
		rb.write = 0
		rb.full = true
		return
	}

	n := copy(rb.data[rb.write:], p)
	if n < len(p) {
		copy(rb.data, p[n:])
	}
	next := rb.write + len(p)
	if next >= rb.size {
		rb.full = true
	}
	rb.write = next % rb.size
}

// String returns the buffered bytes from oldest to newest
func (rb *RingBuffer) String() string {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if !rb.full {
		return string(rb.data[:rb.write])
	}
	return string(rb.data[rb.write:]) + string(rb.data[:rb.write])
}

// Reset empties the buffer
func (rb *RingBuffer) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.write = 0
	rb.full = false
}
