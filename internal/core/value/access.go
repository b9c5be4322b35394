package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/zeusync/zeuscore/internal/core/geom"
)

// Get resolves a direct child by name.
//
// On an array it scans the elements for a component with that name and
// returns the component's payload. The first match wins; later siblings with
// the same name are unreachable through Get. On a component node the lookup
// is applied to its payload.
func (v Value) Get(name string) (Value, bool) {
	switch v.kind {
	case KindComponent:
		return v.inner.Get(name)
	case KindArray:
		for _, item := range v.items {
			if item.kind == KindComponent && item.s == name {
				return *item.inner, true
			}
		}
	}
	return Value{}, false
}

// Index returns the i-th element of an array (or of a component's array
// payload).
func (v Value) Index(i int) (Value, bool) {
	if v.kind == KindComponent {
		return v.inner.Index(i)
	}
	if v.kind != KindArray || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// Lookup resolves a dotted path. Each segment is a name, a name followed by
// one or more [n] index suffixes, or a bare index:
//
//	mesh.layers[1].name
//	items.0.name
func (v Value) Lookup(path string) (Value, bool) {
	if path == "" {
		return v, true
	}
	cur := v
	for _, seg := range strings.Split(path, ".") {
		name, indexes, ok := splitSegment(seg)
		if !ok {
			return Value{}, false
		}
		if name != "" {
			if n, err := strconv.Atoi(name); err == nil {
				if cur, ok = cur.Index(n); !ok {
					return Value{}, false
				}
			} else if cur, ok = cur.Get(name); !ok {
				return Value{}, false
			}
		}
		for _, idx := range indexes {
			if cur, ok = cur.Index(idx); !ok {
				return Value{}, false
			}
		}
	}
	return cur, true
}

func splitSegment(seg string) (string, []int, bool) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, nil, seg != ""
	}
	name, rest := seg[:open], seg[open:]
	var indexes []int
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, false
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, n)
		rest = rest[end+1:]
	}
	return name, indexes, true
}

// AsArray returns a copy of the elements of an array
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return append([]Value(nil), v.items...), true
}

// AsComponent splits a component node into its name and payload
func (v Value) AsComponent() (string, Value, bool) {
	if v.kind != KindComponent {
		return "", Value{}, false
	}
	return v.s, *v.inner, true
}

func (v Value) AsVec3() (geom.Vec3, bool) {
	if v.kind != KindVec3 {
		return geom.Vec3{}, false
	}
	return geom.Vec3{X: v.nums[0], Y: v.nums[1], Z: v.nums[2]}, true
}

func (v Value) AsVec4() (geom.Vec4, bool) {
	if v.kind != KindVec4 {
		return geom.Vec4{}, false
	}
	return geom.Vec4{X: v.nums[0], Y: v.nums[1], Z: v.nums[2], W: v.nums[3]}, true
}

func (v Value) AsAngles() (geom.Angles, bool) {
	if v.kind != KindAngles {
		return geom.Angles{}, false
	}
	return geom.Angles{Yaw: v.nums[0], Pitch: v.nums[1], Roll: v.nums[2]}, true
}

func (v Value) AsQuat() (geom.Quat, bool) {
	if v.kind != KindQuat {
		return geom.Quat{}, false
	}
	return geom.Quat{X: v.nums[0], Y: v.nums[1], Z: v.nums[2], W: v.nums[3]}, true
}

func (v Value) AsMat3() (geom.Mat3, bool) {
	var m geom.Mat3
	if v.kind != KindMat3 {
		return m, false
	}
	copy(m[:], v.nums)
	return m, true
}

func (v Value) AsMat4() (geom.Mat4, bool) {
	var m geom.Mat4
	if v.kind != KindMat4 {
		return m, false
	}
	copy(m[:], v.nums)
	return m, true
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) AsInt64() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

func (v Value) AsInt32() (int32, bool) {
	if v.kind != KindInt || v.i < math.MinInt32 || v.i > math.MaxInt32 {
		return 0, false
	}
	return int32(v.i), true
}

func (v Value) AsUint32() (uint32, bool) {
	if v.kind != KindInt || v.i < 0 || v.i > math.MaxUint32 {
		return 0, false
	}
	return uint32(v.i), true
}

// AsFloat64 accepts float and integer nodes
func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

// AsFloat32 accepts float and integer nodes
func (v Value) AsFloat32() (float32, bool) {
	f, ok := v.AsFloat64()
	return float32(f), ok
}
