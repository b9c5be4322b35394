package server

import (
	"sync"

	"github.com/zeusync/zeuscore/internal/core/events/bus"
)

// History keeps the most recent notices so new feed clients can catch up
type History struct {
	mu    sync.RWMutex
	items []bus.Event
	next  int
	full  bool
}

func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{items: make([]bus.Event, size)}
}

func (h *History) Append(ev bus.Event) {
	h.mu.Lock()
	h.items[h.next] = ev
	h.next = (h.next + 1) % len(h.items)
	if h.next == 0 {
		h.full = true
	}
	h.mu.Unlock()
}

// Get returns the retained notices, oldest first
func (h *History) Get() []bus.Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.full {
		return append([]bus.Event(nil), h.items[:h.next]...)
	}
	out := make([]bus.Event, 0, len(h.items))
	out = append(out, h.items[h.next:]...)
	return append(out, h.items[:h.next]...)
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.full {
		return len(h.items)
	}
	return h.next
}
