// Package supervisor owns the table of live entities. It spawns entity
// actors, routes broadcast and scoped events to their mailboxes, publishes
// the process status, and runs the shutdown protocol.
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/zeuscore/internal/core/engine"
	"github.com/zeusync/zeuscore/internal/core/entity"
	"github.com/zeusync/zeuscore/internal/core/event"
	"github.com/zeusync/zeuscore/internal/core/events/bus"
	"github.com/zeusync/zeuscore/internal/core/geom"
	"github.com/zeusync/zeuscore/internal/core/observability/log"
	"github.com/zeusync/zeuscore/internal/core/value"
)

const source = "supervisor"

type Options struct {
	Entity entity.Options
}

func DefaultOptions() Options {
	return Options{Entity: entity.DefaultOptions()}
}

// SpawnParams place a new entity. A zero Rotation means identity and a nil
// Scale means unit scale. Parent 0 spawns a root.
type SpawnParams struct {
	Name     string
	Position geom.Vec3
	Rotation geom.Quat
	Scale    *geom.Vec3
	Parent   entity.ID
}

func (p SpawnParams) transform() entity.Transform {
	t := entity.IdentityTransform()
	t.Position = p.Position
	if p.Rotation != (geom.Quat{}) {
		t.Rotation = p.Rotation
	}
	if p.Scale != nil {
		t.Scale = *p.Scale
	}
	return t
}

type System struct {
	opts     Options
	services *engine.Services
	bus      bus.EventBus
	log      log.Log
	arena    *entity.Arena

	status    atomic.Int32
	ready     chan struct{}
	readyOnce sync.Once
	nextID    atomic.Uint64

	cmdMu   sync.Mutex
	cmds    []command
	wake    chan struct{}
	running atomic.Bool
	exited  chan struct{}

	mu           sync.RWMutex
	live         map[entity.ID]*entity.Entity
	order        []entity.ID
	joins        map[entity.ID]<-chan struct{}
	shuttingDown bool

	shutdownMu sync.Mutex
	killed     bool
	group      errgroup.Group

	spawned    atomic.Uint64
	terminated atomic.Uint64
	processed  atomic.Uint64
}

// New builds a supervisor. notices may be nil.
func New(opts Options, services *engine.Services, notices bus.EventBus) *System {
	if services == nil {
		services = &engine.Services{}
	}
	return &System{
		opts:     opts,
		services: services,
		bus:      notices,
		log:      services.Logger().With(log.String("component", "supervisor")),
		arena:    entity.NewArena(),
		ready:    make(chan struct{}),
		wake:     make(chan struct{}, 1),
		exited:   make(chan struct{}),
		live:     make(map[entity.ID]*entity.Entity),
		joins:    make(map[entity.ID]<-chan struct{}),
	}
}

func (s *System) Status() Status { return Status(s.status.Load()) }

// Ready is closed once the status first becomes Running, or when shutdown
// begins
func (s *System) Ready() <-chan struct{} { return s.ready }

func (s *System) Arena() *entity.Arena { return s.arena }

// Running reports whether the command loop is accepting commands
func (s *System) Running() bool { return s.accepting() == nil }

func (s *System) Services() *engine.Services { return s.services }

// Run processes commands until the status reaches Stopping or ctx is
// cancelled. It does not shut entities down; call Shutdown for that.
func (s *System) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		close(s.exited)
		s.rejectPending()
	}()

	s.log.Info("command loop started")
	for {
		select {
		case <-s.wake:
		case <-ctx.Done():
			s.log.Info("command loop cancelled")
			return ctx.Err()
		}

		for _, cmd := range s.takeCommands() {
			s.process(cmd)
		}

		if st := s.Status(); st >= StatusStopping {
			s.log.Info("command loop stopped", log.Stringer("status", st))
			return nil
		}
	}
}

// rejectPending answers spawns still queued when the loop exits
func (s *System) rejectPending() {
	for _, cmd := range s.takeCommands() {
		if cmd.kind == cmdSpawn {
			cmd.reply <- spawnResult{err: ErrShuttingDown}
		}
	}
}

func (s *System) process(cmd command) {
	s.processed.Add(1)
	switch cmd.kind {
	case cmdSpawn:
		e, err := s.spawn(cmd.spawn)
		cmd.reply <- spawnResult{e: e, err: err}
	case cmdBroadcast:
		for _, e := range s.Entities() {
			e.Post(entity.EventMessage(cmd.event))
		}
	case cmdScoped:
		s.deliverScoped(cmd.target, cmd.other, cmd.event)
		if cmd.pair {
			s.deliverScoped(cmd.other, cmd.target, cmd.event)
		}
	case cmdStatus:
		s.applyStatus(cmd.status)
	}
}

func (s *System) deliverScoped(target, other entity.ID, ev event.Event) {
	e, ok := s.Entity(target)
	if !ok {
		s.log.Debug("scoped event target gone", log.Uint64("entity_id", uint64(target)))
		return
	}
	e.Post(entity.ScopedMessage(ev, target, other))
}

// Spawn creates an entity and starts its actor. The actor waits for the
// readiness gate before its first frame, so components can be attached to
// the returned entity before it runs.
func (s *System) Spawn(ctx context.Context, p SpawnParams) (*entity.Entity, error) {
	if err := s.accepting(); err != nil {
		return nil, err
	}

	reply := make(chan spawnResult, 1)
	s.enqueue(command{kind: cmdSpawn, spawn: p, reply: reply})

	select {
	case r := <-reply:
		return r.e, r.err
	case <-s.exited:
		select {
		case r := <-reply:
			return r.e, r.err
		default:
			return nil, ErrShuttingDown
		}
	case <-ctx.Done():
		// the loop may still create the entity; it lives on until shutdown
		return nil, ctx.Err()
	}
}

func (s *System) accepting() error {
	if !s.running.Load() {
		return ErrNotRunning
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.shuttingDown {
		return ErrShuttingDown
	}
	select {
	case <-s.exited:
		return ErrNotRunning
	default:
	}
	return nil
}

func (s *System) spawn(p SpawnParams) (*entity.Entity, error) {
	e, err := s.register(p)
	if err != nil {
		return nil, err
	}

	// s.mu is released; notice handlers may read the table
	s.log.Debug("entity spawned", log.Uint64("entity_id", uint64(e.ID())), log.String("name", p.Name))
	s.notify(NoticeSpawned, e.ID(), map[string]any{"name": p.Name, "parent": uint64(p.Parent)})
	return e, nil
}

// register adds a new entity to the table and starts its actor
func (s *System) register(p SpawnParams) (*entity.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shuttingDown {
		return nil, ErrShuttingDown
	}

	parentSlot := entity.NoSlot
	if p.Parent != 0 {
		parent, ok := s.live[p.Parent]
		if !ok {
			return nil, fmt.Errorf("parent %d: %w", p.Parent, ErrUnknownEntity)
		}
		parentSlot = parent.Slot()
	}
	slot, err := s.arena.Alloc(p.transform(), parentSlot)
	if err != nil {
		return nil, fmt.Errorf("spawn %q: %w", p.Name, err)
	}

	id := entity.ID(s.nextID.Add(1))
	e := entity.New(entity.Params{
		ID:       id,
		Name:     p.Name,
		Arena:    s.arena,
		Slot:     slot,
		Services: s.services,
		Options:  s.opts.Entity,
	})
	s.live[id] = e
	s.order = append(s.order, id)
	s.joins[id] = e.Done()
	s.spawned.Add(1)

	s.group.Go(func() error {
		err := e.Run(s.ready)
		s.reap(e)
		return err
	})
	return e, nil
}

// reap drops a terminated entity from the table and frees its transform.
// During shutdown the table is left for Shutdown to clear once every actor
// has been joined.
func (s *System) reap(e *entity.Entity) {
	id := e.ID()
	s.mu.Lock()
	if _, ok := s.live[id]; ok && !s.shuttingDown {
		delete(s.live, id)
		delete(s.joins, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	s.arena.Release(e.Slot())
	s.terminated.Add(1)
	s.notify(NoticeTerminated, id, map[string]any{"name": e.Name()})
}

// Broadcast posts ev to every live entity
func (s *System) Broadcast(ev event.Event) error {
	if err := s.accepting(); err != nil {
		return err
	}
	s.enqueue(command{kind: cmdBroadcast, event: ev})
	return nil
}

// SendTo posts ev to one entity. The delivered event carries "entity" and
// "other" (0) entries.
func (s *System) SendTo(id entity.ID, ev event.Event) error {
	if err := s.accepting(); err != nil {
		return err
	}
	if _, ok := s.Entity(id); !ok {
		return fmt.Errorf("send to %d: %w", id, ErrUnknownEntity)
	}
	s.enqueue(command{kind: cmdScoped, event: ev, target: id})
	return nil
}

// SendPair posts ev to both a and b; each sees itself as "entity" and its
// counterpart as "other".
func (s *System) SendPair(a, b entity.ID, ev event.Event) error {
	if err := s.accepting(); err != nil {
		return err
	}
	for _, id := range []entity.ID{a, b} {
		if _, ok := s.Entity(id); !ok {
			return fmt.Errorf("send pair %d/%d: %w", a, b, ErrUnknownEntity)
		}
	}
	s.enqueue(command{kind: cmdScoped, event: ev, target: a, other: b, pair: true})
	return nil
}

// SetStatus queues a status change. Running opens the readiness gate;
// Stopping ends the command loop.
func (s *System) SetStatus(st Status) error {
	if !s.running.Load() {
		return ErrNotRunning
	}
	select {
	case <-s.exited:
		return ErrNotRunning
	default:
	}
	s.enqueue(command{kind: cmdStatus, status: st})
	return nil
}

// applyStatus stores st. Once Stopping is reached the status only moves
// forward.
func (s *System) applyStatus(st Status) {
	var prev Status
	for {
		prev = Status(s.status.Load())
		if prev >= StatusStopping && st < prev {
			s.log.Debug("status change ignored", log.Stringer("from", prev), log.Stringer("to", st))
			return
		}
		if s.status.CompareAndSwap(int32(prev), int32(st)) {
			break
		}
	}
	if st == StatusRunning {
		s.openGate()
	}
	if prev != st {
		s.log.Info("status changed", log.Stringer("from", prev), log.Stringer("to", st))
		s.notify(NoticeStatusChanged, 0, map[string]any{"from": prev.String(), "to": st.String()})
	}
}

func (s *System) openGate() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// Despawn kills one entity. It returns once the kill is queued; the entity
// leaves the table when its actor exits.
func (s *System) Despawn(id entity.ID) error {
	e, ok := s.Entity(id)
	if !ok {
		return fmt.Errorf("despawn %d: %w", id, ErrUnknownEntity)
	}
	e.Kill()
	return nil
}

// AttachComponent builds the component registered under name on entity id.
// Failures are published as component.failed notices.
func (s *System) AttachComponent(id entity.ID, reg *entity.Registry, name string, def value.Value) (any, error) {
	e, ok := s.Entity(id)
	if !ok {
		return nil, fmt.Errorf("attach %s to %d: %w", name, id, ErrUnknownEntity)
	}
	h, err := reg.Attach(e, name, def)
	if err != nil {
		s.log.Warn("component construction failed",
			log.Uint64("entity_id", uint64(id)),
			log.String("component_name", name),
			log.Error(err),
		)
		s.notify(NoticeComponentFailed, id, map[string]any{"component": name, "error": err.Error()})
		return nil, err
	}
	return h, nil
}

// Entities lists live entities in spawn order
func (s *System) Entities() []*entity.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Entity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.live[id])
	}
	return out
}

func (s *System) Entity(id entity.ID) (*entity.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.live[id]
	return e, ok
}

// Shutdown stops accepting spawns, opens the readiness gate, puts a kill at
// the front of every mailbox, and waits for every actor to exit. It may be
// called again after a ctx timeout to keep waiting.
func (s *System) Shutdown(ctx context.Context) error {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()

	if s.Status() == StatusStopped && s.killed {
		return nil
	}

	s.mu.Lock()
	s.shuttingDown = true
	joins := make(map[entity.ID]<-chan struct{}, len(s.joins))
	for id, done := range s.joins {
		joins[id] = done
	}
	targets := make([]*entity.Entity, 0, len(s.order))
	for _, id := range s.order {
		targets = append(targets, s.live[id])
	}
	s.mu.Unlock()

	if !s.killed {
		s.killed = true
		s.setStatusNow(StatusStopping)
		s.openGate()
		for _, e := range targets {
			e.Kill()
		}
		s.log.Info("shutdown started", log.Int("entities", len(targets)))
	}

	for id, done := range joins {
		select {
		case <-done:
		case <-ctx.Done():
			return fmt.Errorf("shutdown: waiting for entity %d: %w", id, ctx.Err())
		}
	}

	err := s.group.Wait()

	s.mu.Lock()
	clear(s.live)
	clear(s.joins)
	s.order = nil
	s.mu.Unlock()

	s.setStatusNow(StatusStopped)
	s.log.Info("shutdown complete",
		log.Uint64("spawned", s.spawned.Load()),
		log.Uint64("terminated", s.terminated.Load()),
	)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// setStatusNow applies st directly and wakes the loop so it can observe it
func (s *System) setStatusNow(st Status) {
	s.applyStatus(st)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *System) notify(typ string, id entity.ID, data map[string]any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(bus.NewEvent(typ, source, uint64(id), data)); err != nil {
		s.log.Warn("notice handler failed", log.String("type", typ), log.Error(err))
	}
}

// Stats summarises the supervisor
type Stats struct {
	Status     string `json:"status"`
	Live       int    `json:"live"`
	Spawned    uint64 `json:"spawned"`
	Terminated uint64 `json:"terminated"`
	Commands   uint64 `json:"commands"`
	Transforms int    `json:"transforms"`
}

func (s *System) Stats() Stats {
	s.mu.RLock()
	live := len(s.live)
	s.mu.RUnlock()
	return Stats{
		Status:     s.Status().String(),
		Live:       live,
		Spawned:    s.spawned.Load(),
		Terminated: s.terminated.Load(),
		Commands:   s.processed.Load(),
		Transforms: s.arena.Len(),
	}
}
