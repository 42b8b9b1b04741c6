// Package cell provides a single-slot, latest-value broadcast channel.
//
// A [Cell] holds exactly one current value. Writers replace or modify it;
// every [Receiver] subscribed to the cell is woken when the value changes and
// always observes the newest value. Receivers that fall behind skip the
// intermediate values instead of queueing them.
package cell

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by [Receiver.Next] once the cell has been closed and
// the receiver has observed the final value.
var ErrClosed = errors.New("cell closed")

// Cell is a versioned value with condition-based wakeups.
type Cell[T any] struct {
	mu      sync.Mutex
	value   T
	version uint64
	notify  chan struct{}
	closed  bool
	clone   func(T) T
}

// Option configures a Cell.
type Option[T any] func(*Cell[T])

// WithClone makes Modify operate on a copy of the current value, so values
// previously handed out by Get or Next are never mutated in place.
func WithClone[T any](clone func(T) T) Option[T] {
	return func(c *Cell[T]) {
		c.clone = clone
	}
}

// New creates a cell seeded with v.
func New[T any](v T, opts ...Option[T]) *Cell[T] {
	c := &Cell[T]{
		value:  v,
		notify: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the current value without marking anything as seen.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.value
}

// Version returns the number of changes published so far.
func (c *Cell[T]) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.version
}

// Set replaces the value and notifies all receivers, even when v equals the
// current value.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.value = v
	c.bump()
}

// SetIf calls fn with a pointer to a working copy of the value. The copy is
// stored and receivers are notified only when fn reports a change.
func (c *Cell[T]) SetIf(fn func(v *T) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	v := c.copyValue()
	if !fn(&v) {
		return false
	}

	c.value = v
	c.bump()

	return true
}

// Modify applies fn to the value and notifies all receivers unconditionally.
func (c *Cell[T]) Modify(fn func(v *T)) {
	c.SetIf(func(v *T) bool {
		fn(v)
		return true
	})
}

// Subscribe returns a receiver that has already seen the current value.
func (c *Cell[T]) Subscribe() *Receiver[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &Receiver[T]{cell: c, seen: c.version}
}

// Close wakes every receiver. Later writes are ignored.
func (c *Cell[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.notify)
}

// Closed reports whether Close has been called.
func (c *Cell[T]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

// bump advances the version and wakes waiters. Caller holds mu.
func (c *Cell[T]) bump() {
	c.version++
	close(c.notify)
	c.notify = make(chan struct{})
}

// copyValue returns the value to mutate. Caller holds mu.
func (c *Cell[T]) copyValue() T {
	if c.clone != nil {
		return c.clone(c.value)
	}

	return c.value
}

// Receiver observes changes of a Cell. A Receiver must not be shared between
// goroutines; call Cell.Subscribe once per consumer instead.
type Receiver[T any] struct {
	cell *Cell[T]
	seen uint64
}

// Next blocks until the cell holds a value this receiver has not seen yet
// and returns it. Values published while the receiver was not waiting are
// coalesced into the latest one.
func (r *Receiver[T]) Next(ctx context.Context) (T, error) {
	for {
		r.cell.mu.Lock()
		if r.cell.version != r.seen {
			r.seen = r.cell.version
			v := r.cell.value
			r.cell.mu.Unlock()

			return v, nil
		}

		if r.cell.closed {
			r.cell.mu.Unlock()

			var zero T

			return zero, ErrClosed
		}

		wait := r.cell.notify
		r.cell.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			var zero T

			return zero, ctx.Err()
		}
	}
}

// Get returns the current value without marking it as seen.
func (r *Receiver[T]) Get() T {
	return r.cell.Get()
}

// MarkChanged makes the next call to Next return immediately with the
// current value.
func (r *Receiver[T]) MarkChanged() {
	r.cell.mu.Lock()
	defer r.cell.mu.Unlock()

	r.seen = r.cell.version - 1
}

// HasChanged reports whether Next would return without blocking.
func (r *Receiver[T]) HasChanged() bool {
	r.cell.mu.Lock()
	defer r.cell.mu.Unlock()

	return r.cell.version != r.seen
}
