// Package geom holds the small set of vector, rotation and matrix value types
// that entity transforms and component definitions are expressed in.
package geom

import "math"

// Vec3 is a 3-component vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 is a 4-component vector
type Vec4 struct {
	X, Y, Z, W float32
}

// Angles are Euler angles in degrees
type Angles struct {
	Yaw, Pitch, Roll float32
}

// Quat is a rotation quaternion
type Quat struct {
	X, Y, Z, W float32
}

// Mat3 is a column-major 3x3 matrix
type Mat3 [9]float32

// Mat4 is a column-major 4x4 matrix
type Mat4 [16]float32

var (
	Up      = Vec3{Y: 1}
	Forward = Vec3{Z: -1}
	One     = Vec3{X: 1, Y: 1, Z: 1}
)

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Len() float32 { return float32(math.Sqrt(float64(v.Dot(v)))) }

// Normalize returns v scaled to unit length, or v unchanged when it is zero
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

func (a Angles) Add(o Angles) Angles {
	return Angles{a.Yaw + o.Yaw, a.Pitch + o.Pitch, a.Roll + o.Roll}
}

func (a Angles) Scale(s float32) Angles {
	return Angles{a.Yaw * s, a.Pitch * s, a.Roll * s}
}

// Quat converts yaw (around Y), pitch (around X) and roll (around Z), applied
// in that order, into a quaternion.
func (a Angles) Quat() Quat {
	yaw := AxisAngle(Vec3{Y: 1}, a.Yaw)
	pitch := AxisAngle(Vec3{X: 1}, a.Pitch)
	roll := AxisAngle(Vec3{Z: 1}, a.Roll)
	return yaw.Mul(pitch).Mul(roll)
}

// IdentityQuat is the zero rotation
func IdentityQuat() Quat { return Quat{W: 1} }

// AxisAngle builds a rotation of deg degrees around axis
func AxisAngle(axis Vec3, deg float32) Quat {
	half := float64(deg) * math.Pi / 360
	s := float32(math.Sin(half))
	n := axis.Normalize()
	return Quat{n.X * s, n.Y * s, n.Z * s, float32(math.Cos(half))}
}

// Mul returns the rotation q followed by o applied in q's local frame
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

func (q Quat) Normalize() Quat {
	l := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if l == 0 {
		return IdentityQuat()
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Rotate applies q to v
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Identity4 returns the 4x4 identity matrix
func Identity4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Identity3 returns the 3x3 identity matrix
func Identity3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Compose builds the local matrix translate * rotate * scale
func Compose(pos Vec3, rot Quat, scale Vec3) Mat4 {
	x, y, z, w := rot.X, rot.Y, rot.Z, rot.W
	return Mat4{
		(1 - 2*(y*y+z*z)) * scale.X, 2 * (x*y + z*w) * scale.X, 2 * (x*z - y*w) * scale.X, 0,
		2 * (x*y - z*w) * scale.Y, (1 - 2*(x*x+z*z)) * scale.Y, 2 * (y*z + x*w) * scale.Y, 0,
		2 * (x*z + y*w) * scale.Z, 2 * (y*z - x*w) * scale.Z, (1 - 2*(x*x+y*y)) * scale.Z, 0,
		pos.X, pos.Y, pos.Z, 1,
	}
}

// Mul returns m * o
func (m Mat4) Mul(o Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * o[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// Translation returns the translation column of m
func (m Mat4) Translation() Vec3 { return Vec3{m[12], m[13], m[14]} }

// Perspective builds a right-handed projection with fovY in degrees
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := float32(1 / math.Tan(float64(fovY)*math.Pi/360))
	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) / (near - far)
	m[11] = -1
	m[14] = 2 * far * near / (near - far)
	return m
}
