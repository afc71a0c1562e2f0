// Package queue carries foreground commands into the audio goroutine.
package queue

import (
	"errors"
	"sync"
	"sync/atomic"
)

var ErrFull = errors.New("queue: full")

// Ring is a bounded FIFO with any number of producers and exactly one
// consumer. Producers are serialized by a mutex; the consumer never locks.
type Ring[T any] struct {
	mu          sync.Mutex
	items       []T
	mask        uint32
	read, write atomic.Uint32
}

// New returns a ring holding size items. size must be a power of 2.
func New[T any](size int) *Ring[T] {
	if size <= 0 || size&(size-1) != 0 {
		panic("queue size must be a power of 2")
	}
	return &Ring[T]{
		items: make([]T, size),
		mask:  uint32(size - 1),
	}
}

// Push appends v, or returns ErrFull without blocking.
func (r *Ring[T]) Push(v T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	write := r.write.Load()
	if write-r.read.Load() == uint32(len(r.items)) {
		return ErrFull
	}
	r.items[write&r.mask] = v
	r.write.Store(write + 1)
	return nil
}

// Drain hands every queued item to f in push order. Drains must not overlap;
// a consumer shared between goroutines serializes its calls.
func (r *Ring[T]) Drain(f func(T)) int {
	read := r.read.Load()
	write := r.write.Load()
	n := 0
	for read != write {
		f(r.items[read&r.mask])
		read++
		n++
	}
	r.read.Store(read)
	return n
}

// Len is a snapshot of the number of queued items.
func (r *Ring[T]) Len() int {
	return int(r.write.Load() - r.read.Load())
}

func (r *Ring[T]) Cap() int { return len(r.items) }
