package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuscore/internal/core/geom"
)

func at(x, y, z float32) Transform {
	t := IdentityTransform()
	t.Position = geom.Vec3{X: x, Y: y, Z: z}
	return t
}

func TestArenaWorldChase(t *testing.T) {
	a := NewArena()
	root, err := a.Alloc(at(10, 0, 0), NoSlot)
	require.NoError(t, err)
	mid, err := a.Alloc(at(0, 2, 0), root)
	require.NoError(t, err)
	leaf, err := a.Alloc(at(0, 0, 3), mid)
	require.NoError(t, err)

	world, err := a.World(leaf)
	require.NoError(t, err)
	assert.Equal(t, geom.Vec3{X: 10, Y: 2, Z: 3}, world.Translation())

	require.NoError(t, a.Update(root, func(t *Transform) { t.Position.X = -1 }))
	world, _ = a.World(leaf)
	assert.Equal(t, geom.Vec3{X: -1, Y: 2, Z: 3}, world.Translation())
}

func TestArenaRotatedParent(t *testing.T) {
	a := NewArena()
	parent := IdentityTransform()
	parent.Rotation = geom.Angles{Yaw: 90}.Quat()
	p, _ := a.Alloc(parent, NoSlot)
	c, _ := a.Alloc(at(0, 0, -1), p)

	world, err := a.World(c)
	require.NoError(t, err)
	got := world.Translation()
	assert.InDelta(t, -1, got.X, 1e-5)
	assert.InDelta(t, 0, got.Z, 1e-5)
}

func TestArenaRejectsCycles(t *testing.T) {
	a := NewArena()
	x, _ := a.Alloc(IdentityTransform(), NoSlot)
	y, _ := a.Alloc(IdentityTransform(), x)
	z, _ := a.Alloc(IdentityTransform(), y)

	assert.ErrorIs(t, a.SetParent(x, z), ErrCycle)
	assert.ErrorIs(t, a.SetParent(x, x), ErrCycle)
	require.NoError(t, a.SetParent(z, x))

	p, err := a.Parent(z)
	require.NoError(t, err)
	assert.Equal(t, x, p)
}

func TestArenaReleaseDetachesChildren(t *testing.T) {
	a := NewArena()
	parent, _ := a.Alloc(at(5, 0, 0), NoSlot)
	child, _ := a.Alloc(at(1, 0, 0), parent)

	a.Release(parent)
	assert.Equal(t, 1, a.Len())

	p, err := a.Parent(child)
	require.NoError(t, err)
	assert.Equal(t, NoSlot, p)

	_, err = a.Get(parent)
	assert.ErrorIs(t, err, ErrBadSlot)
	_, err = a.Alloc(IdentityTransform(), parent)
	assert.ErrorIs(t, err, ErrBadSlot)

	reused, err := a.Alloc(IdentityTransform(), NoSlot)
	require.NoError(t, err)
	assert.Equal(t, parent, reused)

	world, _ := a.World(child)
	assert.Equal(t, geom.Vec3{X: 1}, world.Translation())
}
