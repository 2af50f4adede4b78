// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reactive

import (
	"sync"
)

// A Source is a readable, observable value.
//
// Subscribe registers fn to be called with the new value after every
// change, and returns a function that removes the registration. The
// returned function is safe to call more than once.
type Source[T any] interface {
	Get() T
	Subscribe(fn func(T)) (unsubscribe func())
}

// An AnySource is a type-erased view of a Source, used where the value
// type is not known statically (for example a request payload).
type AnySource interface {
	Any() any
	SubscribeAny(fn func()) (unsubscribe func())
}

// A Cell is a mutable, observable container for a value of type T. Its
// zero value is an empty cell holding the zero value of T, ready to use.
//
// Cell is safe for concurrent use by multiple goroutines.
type Cell[T any] struct {
	mu    sync.RWMutex
	value T
	subs  []subscriber[T]
	next  uint64
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// NewCell returns a cell holding v.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set stores v and notifies subscribers in registration order.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	subs := c.snapshot()
	c.mu.Unlock()
	notify(subs, v)
}

// Update replaces the value with fn(current) atomically with respect to
// other writers, then notifies subscribers.
func (c *Cell[T]) Update(fn func(T) T) {
	c.mu.Lock()
	v := fn(c.value)
	c.value = v
	subs := c.snapshot()
	c.mu.Unlock()
	notify(subs, v)
}

// Subscribe registers fn to receive every value written to the cell
// after this call returns.
func (c *Cell[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		panic("fetchx/reactive: nil subscriber")
	}

	c.mu.Lock()
	c.next++
	id := c.next
	c.subs = append(c.subs, subscriber[T]{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { c.unsubscribe(id) })
	}
}

// Any returns the current value as an interface value.
func (c *Cell[T]) Any() any {
	return c.Get()
}

// SubscribeAny registers fn to be called after every write.
func (c *Cell[T]) SubscribeAny(fn func()) func() {
	if fn == nil {
		panic("fetchx/reactive: nil subscriber")
	}
	return c.Subscribe(func(_ T) { fn() })
}

func (c *Cell[T]) unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.subs {
		if c.subs[i].id == id {
			c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
			return
		}
	}
}

func (c *Cell[T]) snapshot() []subscriber[T] {
	if len(c.subs) == 0 {
		return nil
	}
	subs := make([]subscriber[T], len(c.subs))
	copy(subs, c.subs)
	return subs
}

func notify[T any](subs []subscriber[T], v T) {
	for _, s := range subs {
		s.fn(v)
	}
}

// Static returns a Source whose value never changes. Subscribing to it
// is allowed but the subscriber is never called.
func Static[T any](v T) Source[T] {
	return static[T]{v}
}

type static[T any] struct {
	value T
}

func (s static[T]) Get() T {
	return s.value
}

func (s static[T]) Subscribe(_ func(T)) func() {
	return func() {}
}

// Map returns a Source derived from src by applying fn. The derived
// value is recomputed on every Get and on every change of src.
func Map[T, U any](src Source[T], fn func(T) U) Source[U] {
	if src == nil {
		panic("fetchx/reactive: nil source")
	}
	if fn == nil {
		panic("fetchx/reactive: nil map function")
	}
	return mapped[T, U]{src: src, fn: fn}
}

type mapped[T, U any] struct {
	src Source[T]
	fn  func(T) U
}

func (m mapped[T, U]) Get() U {
	return m.fn(m.src.Get())
}

func (m mapped[T, U]) Subscribe(fn func(U)) func() {
	return m.src.Subscribe(func(v T) {
		fn(m.fn(v))
	})
}
