// Package entity implements the entity actor: a game object with its own
// paced goroutine, a private mailbox, and a list of components built from
// value definitions.
package entity

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/zeuscore/internal/core/engine"
	"github.com/zeusync/zeuscore/internal/core/geom"
	"github.com/zeusync/zeuscore/internal/core/observability/log"
)

// ID identifies an entity for the lifetime of the process
type ID uint64

func (id ID) String() string { return strconv.FormatUint(uint64(id), 10) }

type State int32

const (
	StateSpawned State = iota
	StateRunning
	StateDraining
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateSpawned:
		return "spawned"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// Options tune the actor loop
type Options struct {
	// TargetFrame is the frame period the actor paces itself to
	TargetFrame time.Duration
	// MailboxSpin bounds the TryLock attempts per iteration
	MailboxSpin int
	// DedicatedThread locks the actor goroutine to its own OS thread
	DedicatedThread bool
}

func DefaultOptions() Options {
	return Options{
		TargetFrame:     time.Second / 60,
		MailboxSpin:     64,
		DedicatedThread: true,
	}
}

// Params are the inputs of New. The transform slot must already be
// allocated in Arena; the entity does not release it.
type Params struct {
	ID       ID
	Name     string
	Arena    *Arena
	Slot     Slot
	Services *engine.Services
	Options  Options
}

type Entity struct {
	id       ID
	name     string
	arena    *Arena
	slot     Slot
	services *engine.Services
	log      log.Log
	opts     Options

	mu         sync.RWMutex
	components []attached
	sealed     bool

	mailbox *Mailbox
	state   atomic.Int32
	started atomic.Bool
	done    chan struct{}

	statsMu    sync.Mutex
	fps        FrameStats
	frames     atomic.Uint64
	dispatched atomic.Uint64
	failures   atomic.Uint64
}

func New(p Params) *Entity {
	opts := p.Options
	if opts.TargetFrame <= 0 {
		opts.TargetFrame = DefaultOptions().TargetFrame
	}
	if opts.MailboxSpin <= 0 {
		opts.MailboxSpin = DefaultOptions().MailboxSpin
	}
	services := p.Services
	if services == nil {
		services = &engine.Services{}
	}

	return &Entity{
		id:       p.ID,
		name:     p.Name,
		arena:    p.Arena,
		slot:     p.Slot,
		services: services,
		log: services.Logger().With(
			log.String("component", "entity"),
			log.Uint64("entity_id", uint64(p.ID)),
			log.String("entity", p.Name),
		),
		opts:    opts,
		mailbox: newMailbox(),
		done:    make(chan struct{}),
	}
}

func (e *Entity) ID() ID { return e.id }

func (e *Entity) Name() string { return e.name }

func (e *Entity) Services() *engine.Services { return e.services }

// Log is the entity-scoped logger
func (e *Entity) Log() log.Log { return e.log }

func (e *Entity) State() State { return State(e.state.Load()) }

func (e *Entity) setState(s State) { e.state.Store(int32(s)) }

// Done is closed when the actor loop has returned
func (e *Entity) Done() <-chan struct{} { return e.done }

func (e *Entity) Slot() Slot { return e.slot }

func (e *Entity) Arena() *Arena { return e.arena }

func (e *Entity) Transform() (Transform, error) { return e.arena.Get(e.slot) }

func (e *Entity) SetTransform(t Transform) error { return e.arena.Set(e.slot, t) }

func (e *Entity) UpdateTransform(fn func(*Transform)) error { return e.arena.Update(e.slot, fn) }

// World is the entity's transform composed with all of its ancestors
func (e *Entity) World() (geom.Mat4, error) { return e.arena.World(e.slot) }

// Post queues msg at the back of the mailbox
func (e *Entity) Post(msg Message) bool { return e.mailbox.Post(msg) }

// PostFront queues msg ahead of everything already waiting
func (e *Entity) PostFront(msg Message) bool { return e.mailbox.PostFront(msg) }

// Kill asks the actor to stop after its current handler
func (e *Entity) Kill() bool { return e.mailbox.PostFront(KillMessage()) }

func (e *Entity) Mailbox() *Mailbox { return e.mailbox }

// Components lists attached component names in attach order
func (e *Entity) Components() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, len(e.components))
	for i, c := range e.components {
		names[i] = c.componentName()
	}
	return names
}

func (e *Entity) attach(c attached) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sealed {
		return ErrTerminated
	}
	e.components = append(e.components, c)
	return nil
}

func (e *Entity) snapshot() []attached {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]attached(nil), e.components...)
}

// seal stops further attaches and hands back the final list
func (e *Entity) seal() []attached {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sealed = true
	list := e.components
	e.components = nil
	return list
}

// Stats is a point-in-time view of an entity
type Stats struct {
	ID         ID      `json:"id"`
	Name       string  `json:"name"`
	State      string  `json:"state"`
	AverageFPS float64 `json:"average_fps"`
	Frames     uint64  `json:"frames"`
	Dispatched uint64  `json:"dispatched"`
	Failures   uint64  `json:"failures"`
	Components int     `json:"components"`
	Queued     int     `json:"queued"`
}

func (e *Entity) Stats() Stats {
	e.statsMu.Lock()
	avg := e.fps.Average()
	e.statsMu.Unlock()

	e.mu.RLock()
	n := len(e.components)
	e.mu.RUnlock()

	return Stats{
		ID:         e.id,
		Name:       e.name,
		State:      e.State().String(),
		AverageFPS: avg,
		Frames:     e.frames.Load(),
		Dispatched: e.dispatched.Load(),
		Failures:   e.failures.Load(),
		Components: n,
		Queued:     e.mailbox.Len(),
	}
}
