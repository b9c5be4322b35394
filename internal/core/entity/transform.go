package entity

import (
	"fmt"
	"sync"

	"github.com/zeusync/zeuscore/internal/core/geom"
)

// Transform is an entity's local placement relative to its parent
type Transform struct {
	Position geom.Vec3
	Rotation geom.Quat
	Scale    geom.Vec3
}

func IdentityTransform() Transform {
	return Transform{Rotation: geom.IdentityQuat(), Scale: geom.One}
}

func (t Transform) Matrix() geom.Mat4 {
	return geom.Compose(t.Position, t.Rotation, t.Scale)
}

// Slot indexes a transform in an Arena
type Slot int32

const NoSlot Slot = -1

type arenaNode struct {
	local  Transform
	parent Slot
	live   bool
}

// Arena stores every entity transform in one slice. Parent links are slot
// indices, so hierarchies carry no pointers and world matrices are found by
// walking indices up to the root.
type Arena struct {
	mu    sync.RWMutex
	nodes []arenaNode
	free  []Slot
	live  int
}

func NewArena() *Arena {
	return &Arena{}
}

// Alloc stores t under parent, which must be live or NoSlot
func (a *Arena) Alloc(t Transform, parent Slot) (Slot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if parent != NoSlot && !a.liveLocked(parent) {
		return NoSlot, fmt.Errorf("parent %d: %w", parent, ErrBadSlot)
	}

	node := arenaNode{local: t, parent: parent, live: true}
	a.live++
	if n := len(a.free); n > 0 {
		s := a.free[n-1]
		a.free = a.free[:n-1]
		a.nodes[s] = node
		return s, nil
	}
	a.nodes = append(a.nodes, node)
	return Slot(len(a.nodes) - 1), nil
}

func (a *Arena) Get(s Slot) (Transform, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.liveLocked(s) {
		return Transform{}, ErrBadSlot
	}
	return a.nodes[s].local, nil
}

func (a *Arena) Set(s Slot, t Transform) error {
	return a.Update(s, func(cur *Transform) { *cur = t })
}

// Update edits the local transform in place while the arena is locked.
// fn must not call back into the arena.
func (a *Arena) Update(s Slot, fn func(*Transform)) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.liveLocked(s) {
		return ErrBadSlot
	}
	fn(&a.nodes[s].local)
	return nil
}

func (a *Arena) Parent(s Slot) (Slot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.liveLocked(s) {
		return NoSlot, ErrBadSlot
	}
	return a.nodes[s].parent, nil
}

// SetParent relinks child under parent (NoSlot detaches it). A link that
// would make child its own ancestor returns ErrCycle.
func (a *Arena) SetParent(child, parent Slot) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.liveLocked(child) {
		return fmt.Errorf("child %d: %w", child, ErrBadSlot)
	}
	if parent != NoSlot {
		if !a.liveLocked(parent) {
			return fmt.Errorf("parent %d: %w", parent, ErrBadSlot)
		}
		for p := parent; p != NoSlot; p = a.nodes[p].parent {
			if p == child {
				return ErrCycle
			}
		}
	}
	a.nodes[child].parent = parent
	return nil
}

// World composes local transforms from s up to its root
func (a *Arena) World(s Slot) (geom.Mat4, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.liveLocked(s) {
		return geom.Mat4{}, ErrBadSlot
	}
	world := a.nodes[s].local.Matrix()
	for p := a.nodes[s].parent; p != NoSlot; p = a.nodes[p].parent {
		world = a.nodes[p].local.Matrix().Mul(world)
	}
	return world, nil
}

// Release frees s. Children of s become roots so no link ever points at a
// reused slot.
func (a *Arena) Release(s Slot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.liveLocked(s) {
		return
	}
	for i := range a.nodes {
		if a.nodes[i].live && a.nodes[i].parent == s {
			a.nodes[i].parent = NoSlot
		}
	}
	a.nodes[s] = arenaNode{parent: NoSlot}
	a.free = append(a.free, s)
	a.live--
}

// Len reports the number of live slots
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.live
}

func (a *Arena) liveLocked(s Slot) bool {
	return s >= 0 && int(s) < len(a.nodes) && a.nodes[s].live
}
