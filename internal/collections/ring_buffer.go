package collections

import "sync"

// RingBuffer is a bounded FIFO. Pushing into a full buffer evicts the oldest value.
type RingBuffer[T any] struct {
	capacity int
	data     []T
	head     int
	size     int
	mu       sync.RWMutex
}

// NewRingBuffer creates a ring buffer holding at most capacity values.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}

	return &RingBuffer[T]{
		capacity: capacity,
		data:     make([]T, capacity),
		head:     0,
		size:     0,
		mu:       sync.RWMutex{},
	}
}

// Push appends value and returns the evicted value, if any.
func (r *RingBuffer[T]) Push(value T) (evicted T, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == r.capacity {
		evicted = r.data[r.head]
		r.data[r.head] = value
		r.head = (r.head + 1) % r.capacity

		return evicted, true
	}

	r.data[(r.head+r.size)%r.capacity] = value
	r.size++

	return evicted, false
}

func (r *RingBuffer[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.size
}

func (r *RingBuffer[T]) Cap() int {
	return r.capacity
}

// Last returns the most recently pushed value.
func (r *RingBuffer[T]) Last() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zero T
	if r.size == 0 {
		return zero, false
	}

	return r.data[(r.head+r.size-1)%r.capacity], true
}

// Values returns a copy of the contents, oldest first.
func (r *RingBuffer[T]) Values() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.data[(r.head+i)%r.capacity]
	}

	return out
}

// Recent returns a copy of the n most recent values, oldest first.
func (r *RingBuffer[T]) Recent(n int) []T {
	values := r.Values()
	if n >= len(values) {
		return values
	}

	if n <= 0 {
		return []T{}
	}

	return values[len(values)-n:]
}

// Reset empties the buffer.
func (r *RingBuffer[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	for i := range r.data {
		r.data[i] = zero
	}

	r.head = 0
	r.size = 0
}
