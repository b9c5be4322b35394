package entity

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/zeusync/zeuscore/internal/core/event"
	"github.com/zeusync/zeuscore/internal/core/value"
	"github.com/zeusync/zeuscore/pkg/pool"
)

// batches is shared by every mailbox; taken batches go back once drained
var batches = pool.NewSlices[Message](16, 1024)

type MessageKind uint8

const (
	// MessageEvent is delivered to every interested component
	MessageEvent MessageKind = iota
	// MessageScoped targets one entity or a pair; its event gains "entity"
	// and "other" data entries on delivery.
	MessageScoped
	// MessageKill terminates the actor. Anything queued behind it is dropped.
	MessageKill
)

func (k MessageKind) String() string {
	switch k {
	case MessageEvent:
		return "event"
	case MessageScoped:
		return "scoped"
	case MessageKill:
		return "kill"
	}
	return "unknown"
}

// Message is one mailbox item
type Message struct {
	Kind   MessageKind
	Event  event.Event
	Target ID
	Other  ID
}

func EventMessage(ev event.Event) Message { return Message{Kind: MessageEvent, Event: ev} }

func ScopedMessage(ev event.Event, target, other ID) Message {
	return Message{Kind: MessageScoped, Event: ev, Target: target, Other: other}
}

func KillMessage() Message { return Message{Kind: MessageKill} }

// delivered returns the event as components see it
func (m Message) delivered() event.Event {
	if m.Kind != MessageScoped {
		return m.Event
	}
	return m.Event.
		With("entity", value.Int(int64(m.Target))).
		With("other", value.Int(int64(m.Other)))
}

// Mailbox is an entity's private FIFO. Posters take the lock normally; the
// owning actor only ever tries it, so a busy poster never stalls a frame.
type Mailbox struct {
	mu     sync.Mutex
	items  []Message
	closed bool

	// killed is set by the first kill posted anywhere in the queue
	killed atomic.Bool
	// urgent counts kills posted at the front
	urgent   atomic.Uint64
	killCh   chan struct{}
	killOnce sync.Once
}

func newMailbox() *Mailbox {
	return &Mailbox{killCh: make(chan struct{})}
}

// Post appends msg. It reports false once the mailbox is closed.
func (m *Mailbox) Post(msg Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.items = append(m.items, msg)
	if msg.Kind == MessageKill {
		m.markKilled(false)
	}
	return true
}

// PostFront puts msg ahead of everything already queued
func (m *Mailbox) PostFront(msg Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.items = append(m.items, Message{})
	copy(m.items[1:], m.items)
	m.items[0] = msg
	if msg.Kind == MessageKill {
		m.markKilled(true)
	}
	return true
}

func (m *Mailbox) markKilled(front bool) {
	if front {
		m.urgent.Add(1)
	}
	m.killed.Store(true)
	m.killOnce.Do(func() { close(m.killCh) })
}

// Killed reports whether a kill has been posted
func (m *Mailbox) Killed() bool { return m.killed.Load() }

// Len is the number of queued items
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// take empties the queue, spinning at most spin times on the lock. ok is
// false when the lock stayed contended; the items then stay queued. gen is
// the urgent kill count at the moment of the take.
func (m *Mailbox) take(spin int) (batch []Message, gen uint64, ok bool) {
	if spin < 1 {
		spin = 1
	}
	for i := 0; i < spin; i++ {
		if m.mu.TryLock() {
			if len(m.items) > 0 {
				batch, m.items = m.items, batches.Get()
			}
			gen = m.urgent.Load()
			m.mu.Unlock()
			return batch, gen, true
		}
		runtime.Gosched()
	}
	return nil, 0, false
}

// recycle returns a drained batch to the shared pool
func recycle(batch []Message) {
	batches.Put(batch)
}

// preempted reports whether a front kill arrived after the take that
// returned gen
func (m *Mailbox) preempted(gen uint64) bool {
	return m.urgent.Load() != gen
}

// close rejects further posts and discards whatever is still queued
func (m *Mailbox) close() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	dropped := len(m.items)
	recycle(m.items)
	m.items = nil
	return dropped
}
