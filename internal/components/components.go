// Package components holds the built-in component types: camera, spinner,
// mesh and script.
package components

import (
	"errors"

	"github.com/zeusync/zeuscore/internal/core/entity"
	"github.com/zeusync/zeuscore/internal/core/geom"
)

var (
	ErrEmptyMesh = errors.New("components: mesh asset is empty")
	ErrNoScript  = errors.New("components: script needs source or asset")
)

// Register adds every built-in factory to reg
func Register(reg *entity.Registry) error {
	return errors.Join(
		entity.Register[*Camera](reg, CameraFactory{}),
		entity.Register[*Spinner](reg, SpinnerFactory{}),
		entity.Register[*Mesh](reg, MeshFactory{}),
		entity.Register[*Script](reg, ScriptFactory{}),
	)
}

// basis extracts the up and forward directions of a world matrix
func basis(world geom.Mat4) (up, forward geom.Vec3) {
	up = geom.Vec3{X: world[4], Y: world[5], Z: world[6]}.Normalize()
	forward = geom.Vec3{X: -world[8], Y: -world[9], Z: -world[10]}.Normalize()
	return up, forward
}
