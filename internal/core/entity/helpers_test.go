package entity

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuscore/internal/core/event"
	"github.com/zeusync/zeuscore/internal/core/value"
)

// recorder remembers every event it is handed
type recorder struct {
	mask     atomic.Uint32
	mu       sync.Mutex
	seen     []event.Event
	failOn   event.Flag
	panicOn  event.Flag
	block    chan struct{}
	blocked  chan struct{}
	detached atomic.Int32
}

func newRecorder(mask event.Flag) *recorder {
	r := &recorder{}
	r.mask.Store(uint32(mask))
	return r
}

func (r *recorder) setMask(mask event.Flag) { r.mask.Store(uint32(mask)) }

func (r *recorder) Interests() event.Flag { return event.Flag(r.mask.Load()) }

func (r *recorder) HandleEvent(ev event.Event) error {
	if r.panicOn&ev.Flag != 0 {
		panic("recorder: " + ev.String())
	}
	r.mu.Lock()
	r.seen = append(r.seen, ev)
	r.mu.Unlock()

	if r.block != nil && ev.Flag == event.FlagCustom {
		select {
		case r.blocked <- struct{}{}:
		default:
		}
		<-r.block
	}
	if r.failOn&ev.Flag != 0 {
		return errors.New("recorder: refused " + ev.String())
	}
	return nil
}

func (r *recorder) OnDetach() { r.detached.Add(1) }

func (r *recorder) count(flag event.Flag) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.seen {
		if ev.Flag == flag {
			n++
		}
	}
	return n
}

func (r *recorder) customNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, ev := range r.seen {
		if ev.Flag == event.FlagCustom {
			names = append(names, ev.Name)
		}
	}
	return names
}

func (r *recorder) events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.seen...)
}

// recorderFactory hands out a prepared recorder. When mask is read from the
// definition it overrides the recorder's initial mask.
type recorderFactory struct {
	name string
	rec  *recorder
	err  error
}

func (f recorderFactory) Name() string {
	if f.name == "" {
		return "recorder"
	}
	return f.name
}

func (f recorderFactory) DefaultDefinition() value.Value {
	return value.Object().Set("mask", value.String("INIT|UPDATE")).Build()
}

func (f recorderFactory) Construct(_ *Entity, def value.Value) (*recorder, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, err := value.RequiredString(def, "mask")
	if err != nil {
		return nil, err
	}
	mask, err := event.ParseFlag(s)
	if err != nil {
		return nil, err
	}
	f.rec.setMask(mask)
	return f.rec, nil
}

func testOptions() Options {
	return Options{TargetFrame: time.Millisecond, MailboxSpin: 16}
}

func newTestEntity(t *testing.T) *Entity {
	t.Helper()
	arena := NewArena()
	slot, err := arena.Alloc(IdentityTransform(), NoSlot)
	require.NoError(t, err)
	return New(Params{ID: 1, Name: "test", Arena: arena, Slot: slot, Options: testOptions()})
}

func maskDef(mask string) value.Value {
	return value.Object().Set("mask", value.String(mask)).Build()
}

// start runs the actor and returns a channel carrying Run's result
func start(e *Entity, ready <-chan struct{}) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ready) }()
	return errCh
}

func openGate() chan struct{} {
	ready := make(chan struct{})
	close(ready)
	return ready
}

func waitDone(t *testing.T, e *Entity) {
	t.Helper()
	select {
	case <-e.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("actor did not terminate")
	}
}
