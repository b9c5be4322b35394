// Package pool offers typed wrappers over sync.Pool.
package pool

import "sync"

type Pool[T any] struct {
	pool sync.Pool
}

func New[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

// NewHot is New with hotSize values generated up front
func NewHot[T any](generate func() T, hotSize int) *Pool[T] {
	p := New[T](generate)
	for i := 0; i < hotSize; i++ {
		p.pool.Put(generate())
	}
	return p
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	p.pool.Put(value)
}

// Slices recycles slice backing arrays. Returned slices are cleared, so
// pooled memory holds no references; slices grown past maxCap are left to
// the collector.
type Slices[E any] struct {
	pool   *Pool[*[]E]
	maxCap int
}

func NewSlices[E any](initCap, maxCap int) *Slices[E] {
	if maxCap < initCap {
		maxCap = initCap
	}
	return &Slices[E]{
		pool: New(func() *[]E {
			s := make([]E, 0, initCap)
			return &s
		}),
		maxCap: maxCap,
	}
}

// Get returns an empty slice
func (s *Slices[E]) Get() []E {
	return (*s.pool.Get())[:0]
}

func (s *Slices[E]) Put(v []E) {
	if v == nil || cap(v) > s.maxCap {
		return
	}
	clear(v)
	v = v[:0]
	s.pool.Put(&v)
}
