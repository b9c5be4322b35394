package value

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuscore/internal/core/geom"
)

func TestTypedAccessorsRejectOtherKinds(t *testing.T) {
	s := String("x")

	_, ok := s.AsVec3()
	assert.False(t, ok)
	_, ok = s.AsQuat()
	assert.False(t, ok)
	_, ok = s.AsInt32()
	assert.False(t, ok)
	_, ok = s.AsFloat32()
	assert.False(t, ok)
	_, ok = Int(1).AsString()
	assert.False(t, ok)
	_, ok = Null().Get("anything")
	assert.False(t, ok)
}

func TestIntegerRanges(t *testing.T) {
	_, ok := Int(-1).AsUint32()
	assert.False(t, ok)
	_, ok = Int(1 << 40).AsInt32()
	assert.False(t, ok)

	u, ok := Int(1 << 31).AsUint32()
	assert.True(t, ok)
	assert.Equal(t, uint32(1<<31), u)

	f, ok := Int(4).AsFloat32()
	assert.True(t, ok)
	assert.Equal(t, float32(4), f)
}

func TestObjectBuilderReplacesDuplicates(t *testing.T) {
	v := Object().Set("a", Int(1)).Set("b", Int(2)).Set("a", Int(3)).Build()
	assert.Equal(t, 2, v.Len())

	a, _ := v.Get("a")
	i, _ := a.AsInt32()
	assert.Equal(t, int32(3), i)

	first, _ := v.Index(0)
	assert.Equal(t, "a", first.Name())
}

func TestValuesAreImmutable(t *testing.T) {
	items := []Value{Int(1), Int(2)}
	arr := Array(items...)
	items[0] = Int(99)

	got, _ := arr.Index(0)
	assert.True(t, Equal(Int(1), got))

	copied, _ := arr.AsArray()
	copied[1] = Int(42)
	got, _ = arr.Index(1)
	assert.True(t, Equal(Int(2), got))
}

func TestLookupPaths(t *testing.T) {
	v := MustParse(`{a: [ {b: [10, 20]} ], "c": {d: 1}}`)

	got, ok := v.Lookup("a[0].b[1]")
	require.True(t, ok)
	assert.True(t, Equal(Int(20), got))

	got, ok = v.Lookup("a.0.b.0")
	require.True(t, ok)
	assert.True(t, Equal(Int(10), got))

	_, ok = v.Lookup("a[3]")
	assert.False(t, ok)
	_, ok = v.Lookup("a[x]")
	assert.False(t, ok)
	_, ok = v.Lookup("c.missing")
	assert.False(t, ok)

	self, ok := v.Lookup("")
	assert.True(t, ok)
	assert.True(t, Equal(v, self))
}

func TestRequiredFields(t *testing.T) {
	def := MustParse(`{layer: 2, fov: 60, name: "cam", up: Vec3(0, 1, 0)}`)

	layer, err := RequiredInt32(def, "layer")
	require.NoError(t, err)
	assert.Equal(t, int32(2), layer)

	fov, err := RequiredFloat32(def, "fov")
	require.NoError(t, err)
	assert.Equal(t, float32(60), fov)

	up, err := RequiredVec3(def, "up")
	require.NoError(t, err)
	assert.Equal(t, geom.Up, up)

	_, err = RequiredVec3(def, "down")
	assert.True(t, errors.Is(err, ErrMissingField))

	_, err = RequiredInt32(def, "name")
	var ferr *FieldError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, ErrWrongKind, ferr.Err)
	assert.Equal(t, KindString, ferr.Got)

	near, err := OptionalFloat32(def, "near", 0.1)
	require.NoError(t, err)
	assert.Equal(t, float32(0.1), near)

	_, err = OptionalFloat32(def, "name", 0.1)
	assert.True(t, errors.Is(err, ErrWrongKind))
}
