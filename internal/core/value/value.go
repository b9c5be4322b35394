// Package value implements the definition tree used to parameterize component
// construction: a tagged union of scalars, geometry literals, arrays and named
// fields, plus a parser for its textual form.
//
// Values are immutable once built. Constructors copy their inputs and
// accessors return copies, so a single tree can be shared read-only between
// goroutines.
package value

import (
	"github.com/zeusync/zeuscore/internal/core/geom"
)

// Kind is the tag of a Value
type Kind uint8

const (
	KindNull Kind = iota
	KindVec3
	KindVec4
	KindAngles
	KindQuat
	KindMat3
	KindMat4
	KindInt
	KindFloat
	KindString
	KindArray
	KindComponent
)

var kindNames = [...]string{
	KindNull:      "null",
	KindVec3:      "vec3",
	KindVec4:      "vec4",
	KindAngles:    "angles",
	KindQuat:      "quat",
	KindMat3:      "mat3",
	KindMat4:      "mat4",
	KindInt:       "int",
	KindFloat:     "float",
	KindString:    "string",
	KindArray:     "array",
	KindComponent: "component",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is one node of a definition tree. The zero Value is Null.
type Value struct {
	kind  Kind
	i     int64
	f     float64
	s     string // string payload or component name
	nums  []float32
	items []Value
	inner *Value
}

// Null returns the empty value
func Null() Value { return Value{} }

func Int(i int64) Value { return Value{kind: KindInt, i: i} }

func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

func String(s string) Value { return Value{kind: KindString, s: s} }

func Vec3(v geom.Vec3) Value {
	return Value{kind: KindVec3, nums: []float32{v.X, v.Y, v.Z}}
}

func Vec4(v geom.Vec4) Value {
	return Value{kind: KindVec4, nums: []float32{v.X, v.Y, v.Z, v.W}}
}

func Angles(a geom.Angles) Value {
	return Value{kind: KindAngles, nums: []float32{a.Yaw, a.Pitch, a.Roll}}
}

func Quat(q geom.Quat) Value {
	return Value{kind: KindQuat, nums: []float32{q.X, q.Y, q.Z, q.W}}
}

func Mat3(m geom.Mat3) Value {
	return Value{kind: KindMat3, nums: append([]float32(nil), m[:]...)}
}

func Mat4(m geom.Mat4) Value {
	return Value{kind: KindMat4, nums: append([]float32(nil), m[:]...)}
}

// Array wraps items in an array node
func Array(items ...Value) Value {
	return Value{kind: KindArray, items: append([]Value{}, items...)}
}

// Component names v
func Component(name string, v Value) Value {
	inner := v
	return Value{kind: KindComponent, s: name, inner: &inner}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Len reports the number of elements of an array, 0 otherwise
func (v Value) Len() int {
	if v.kind != KindArray {
		return 0
	}
	return len(v.items)
}

// Name returns the component name, or "" for any other kind
func (v Value) Name() string {
	if v.kind != KindComponent {
		return ""
	}
	return v.s
}

// Equal reports whether a and b describe the same tree
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindComponent:
		return a.s == b.s && Equal(*a.inner, *b.inner)
	case KindArray:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	default:
		if len(a.nums) != len(b.nums) {
			return false
		}
		for i := range a.nums {
			if a.nums[i] != b.nums[i] {
				return false
			}
		}
		return true
	}
}
