package entity

import (
	"sync"

	"github.com/zeusync/zeuscore/internal/core/event"
	"github.com/zeusync/zeuscore/internal/core/value"
)

// Component is a unit of entity behavior. Interests is queried on every
// dispatch, so a component may change its mask at runtime.
type Component interface {
	Interests() event.Flag
	HandleEvent(ev event.Event) error
}

// Detacher is implemented by components that hold resources beyond the
// actor's lifetime. OnDetach runs once, on the actor goroutine, when the
// actor terminates.
type Detacher interface {
	OnDetach()
}

// Factory builds components of one type from a definition
type Factory[T Component] interface {
	Name() string
	DefaultDefinition() value.Value
	Construct(e *Entity, def value.Value) (T, error)
}

// Handle guards one component instance. The entity's component list and the
// caller of AddComponent share the same handle.
type Handle[T Component] struct {
	mu   sync.Mutex
	name string
	c    T
}

func (h *Handle[T]) Name() string { return h.name }

// With runs fn with exclusive access to the component
func (h *Handle[T]) With(fn func(c T)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.c)
}

// attached is the type-erased view the entity keeps of each handle
type attached interface {
	componentName() string
	deliver(ev event.Event) (handled bool, err error)
	detach() error
}

func (h *Handle[T]) componentName() string { return h.name }

// deliver runs the handler if the component is interested in ev. Panics are
// returned as *PanicError.
func (h *Handle[T]) deliver(ev event.Event) (handled bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Component: h.name, Value: r}
		}
	}()

	if h.c.Interests()&ev.Flag == 0 {
		return false, nil
	}
	return true, h.c.HandleEvent(ev)
}

func (h *Handle[T]) detach() (err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Component: h.name, Value: r}
		}
	}()

	if d, ok := any(h.c).(Detacher); ok {
		d.OnDetach()
	}
	return nil
}

// AddComponent constructs a component from def and attaches it to e. A Null
// def selects f.DefaultDefinition(). The component receives INIT, if it is
// interested, before it becomes visible in the entity's list; any failure up
// to that point returns *ConstructError and leaves the list untouched.
// Side effects of Construct are not rolled back.
func AddComponent[T Component](e *Entity, f Factory[T], def value.Value) (*Handle[T], error) {
	name := f.Name()
	if e.State() == StateTerminated {
		return nil, &ConstructError{Component: name, Entity: e.ID(), Err: ErrTerminated}
	}
	if def.IsNull() {
		def = f.DefaultDefinition()
	}

	c, err := f.Construct(e, def)
	if err != nil {
		return nil, &ConstructError{Component: name, Entity: e.ID(), Err: err}
	}

	h := &Handle[T]{name: name, c: c}
	handled, err := h.deliver(event.New(event.FlagInit))
	if err != nil {
		return nil, &ConstructError{Component: name, Entity: e.ID(), Err: err}
	}
	if handled {
		e.dispatched.Add(1)
	}

	if err = e.attach(h); err != nil {
		// raced with termination; the actor will never detach it
		_ = h.detach()
		return nil, &ConstructError{Component: name, Entity: e.ID(), Err: err}
	}
	return h, nil
}
