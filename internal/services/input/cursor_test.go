package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorAverage(t *testing.T) {
	c := NewCursor(4)
	x, y := c.Cursor()
	assert.Zero(t, x)
	assert.Zero(t, y)

	c.Push(2, 4)
	c.Push(4, 8)
	x, y = c.Cursor()
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 6.0, y)
}

func TestCursorWindowSlides(t *testing.T) {
	c := NewCursor(2)
	c.Push(100, 100)
	c.Push(1, 1)
	c.Push(3, 3)

	assert.Equal(t, 2, c.Samples())
	x, _ := c.Cursor()
	assert.Equal(t, 2.0, x)
}

func TestCursorReset(t *testing.T) {
	c := NewCursor(0)
	c.Push(5, 5)
	c.ResetCursor()
	assert.Zero(t, c.Samples())
	x, y := c.Cursor()
	assert.Zero(t, x)
	assert.Zero(t, y)
}
