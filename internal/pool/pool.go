package pool

import "sync"

// Resettable is a constraint for types that have a Reset() method.
type Resettable interface {
	Reset()
}

// Poolable is a constraint for types that can be pooled (must be resettable and comparable).
type Poolable interface {
	Resettable
	comparable
}

// Pool is a bounded object pool for reusing values of type T.
// Values are reset on Put, so callers always receive a clean value from Get.
type Pool[T Poolable] struct {
	mu      sync.Mutex
	items   chan T
	newItem func() T
	created int
}

// New creates a Pool that keeps at most capacity idle values.
// newItem builds a value when the pool is empty; a nil newItem makes Get
// return the zero value of T instead.
func New[T Poolable](capacity int, newItem func() T) *Pool[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Pool[T]{
		items:   make(chan T, capacity),
		newItem: newItem,
	}
}

// Get retrieves an idle value or builds a new one.
func (p *Pool[T]) Get() T {
	select {
	case item := <-p.items:
		return item
	default:
	}

	if p.newItem == nil {
		var zero T
		return zero
	}

	p.mu.Lock()
	p.created++
	p.mu.Unlock()

	return p.newItem()
}

// Put resets item and returns it to the pool. Zero values are ignored and
// the item is dropped when the pool is full.
func (p *Pool[T]) Put(item T) {
	var zero T
	if item == zero {
		return
	}
	item.Reset()

	select {
	case p.items <- item:
	default:
	}
}

// Idle returns the number of values waiting in the pool.
func (p *Pool[T]) Idle() int {
	return len(p.items)
}

// Created returns how many values Get had to build.
func (p *Pool[T]) Created() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}
