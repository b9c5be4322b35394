// Package input provides an in-memory Input that averages cursor samples
// pushed by a window or network layer.
package input

import (
	"sync"

	"github.com/zeusync/zeuscore/internal/core/engine"
)

var _ engine.Input = (*Cursor)(nil)

// DefaultWindow is the number of samples averaged when none is given
const DefaultWindow = 8

type point struct{ x, y float64 }

// Cursor averages the most recent samples in a fixed window
type Cursor struct {
	mu      sync.Mutex
	samples []point
	next    int
	n       int
}

func NewCursor(window int) *Cursor {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Cursor{samples: make([]point, window)}
}

// Push records a cursor position
func (c *Cursor) Push(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samples[c.next] = point{x, y}
	c.next = (c.next + 1) % len(c.samples)
	if c.n < len(c.samples) {
		c.n++
	}
}

// Cursor returns the mean of the window, (0, 0) when empty
func (c *Cursor) Cursor() (avgX, avgY float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n == 0 {
		return 0, 0
	}
	for i := 0; i < c.n; i++ {
		avgX += c.samples[i].x
		avgY += c.samples[i].y
	}
	return avgX / float64(c.n), avgY / float64(c.n)
}

func (c *Cursor) ResetCursor() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n, c.next = 0, 0
}

// Samples is the number of positions in the window
func (c *Cursor) Samples() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
