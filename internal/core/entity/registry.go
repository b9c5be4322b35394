package entity

import (
	"fmt"
	"slices"
	"sync"

	"github.com/zeusync/zeuscore/internal/core/value"
)

// AnyFactory is a Factory with its component type erased. Attach returns the
// *Handle[T] as any.
type AnyFactory interface {
	Name() string
	DefaultDefinition() value.Value
	Attach(e *Entity, def value.Value) (any, error)
}

type erased[T Component] struct {
	Factory[T]
}

func (f erased[T]) Attach(e *Entity, def value.Value) (any, error) {
	h, err := AddComponent(e, f.Factory, def)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Erase wraps f so it can live in a Registry
func Erase[T Component](f Factory[T]) AnyFactory {
	return erased[T]{Factory: f}
}

// Registry maps component type names to factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]AnyFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]AnyFactory)}
}

// Register adds f under f.Name()
func Register[T Component](r *Registry, f Factory[T]) error {
	return r.Add(Erase(f))
}

func (r *Registry) Add(f AnyFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := f.Name()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateFactory, name)
	}
	r.factories[name] = f
	return nil
}

func (r *Registry) Lookup(name string) (AnyFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Attach constructs the component registered under name on e
func (r *Registry) Attach(e *Entity, name string, def value.Value) (any, error) {
	f, ok := r.Lookup(name)
	if !ok {
		return nil, &ConstructError{Component: name, Entity: e.ID(), Err: ErrUnknownComponent}
	}
	return f.Attach(e, def)
}

// Names lists registered factories in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
