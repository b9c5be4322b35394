package components

import (
	"github.com/zeusync/zeuscore/internal/core/engine"
	"github.com/zeusync/zeuscore/internal/core/entity"
	"github.com/zeusync/zeuscore/internal/core/event"
	"github.com/zeusync/zeuscore/internal/core/geom"
	"github.com/zeusync/zeuscore/internal/core/value"
)

// Camera registers a render camera and keeps it aligned with its entity's
// world transform every frame. With a non-zero look_speed it also turns its
// entity by the averaged cursor offset, in degrees per cursor unit, and
// resets the cursor window after each frame.
type Camera struct {
	e          *entity.Entity
	render     engine.Renderer
	input      engine.Input
	id         engine.CameraID
	layer      uint32
	projection geom.Mat4
	lookSpeed  float32
}

type CameraFactory struct{}

func (CameraFactory) Name() string { return "camera" }

func (CameraFactory) DefaultDefinition() value.Value {
	return value.Object().
		Set("layer", value.Int(0)).
		Set("fov", value.Float(70)).
		Set("aspect", value.Float(16.0/9.0)).
		Set("near", value.Float(0.1)).
		Set("far", value.Float(1000)).
		Set("look_speed", value.Float(0)).
		Build()
}

func (CameraFactory) Construct(e *entity.Entity, def value.Value) (*Camera, error) {
	render := e.Services().Render
	if render == nil {
		return nil, engine.ErrNoRenderer
	}

	layer, err := value.RequiredUint32(def, "layer")
	if err != nil {
		return nil, err
	}
	fov, err := value.OptionalFloat32(def, "fov", 70)
	if err != nil {
		return nil, err
	}
	aspect, err := value.OptionalFloat32(def, "aspect", 16.0/9.0)
	if err != nil {
		return nil, err
	}
	near, err := value.OptionalFloat32(def, "near", 0.1)
	if err != nil {
		return nil, err
	}
	far, err := value.OptionalFloat32(def, "far", 1000)
	if err != nil {
		return nil, err
	}
	lookSpeed, err := value.OptionalFloat32(def, "look_speed", 0)
	if err != nil {
		return nil, err
	}

	id, err := render.RegisterCamera(layer)
	if err != nil {
		return nil, err
	}
	return &Camera{
		e:          e,
		render:     render,
		input:      e.Services().Input,
		id:         id,
		layer:      layer,
		projection: geom.Perspective(fov, aspect, near, far),
		lookSpeed:  lookSpeed,
	}, nil
}

func (c *Camera) ID() engine.CameraID { return c.id }

func (c *Camera) Layer() uint32 { return c.layer }

func (c *Camera) Interests() event.Flag { return event.FlagInit | event.FlagUpdate }

func (c *Camera) HandleEvent(ev event.Event) error {
	if ev.Flag == event.FlagUpdate {
		if err := c.look(); err != nil {
			return err
		}
	}
	world, err := c.e.World()
	if err != nil {
		return err
	}
	up, forward := basis(world)
	return c.render.UpdateCamera(c.id, c.projection, world, up, forward)
}

// look yaws around world up and pitches around the local right axis, so
// the camera never rolls
func (c *Camera) look() error {
	if c.lookSpeed == 0 || c.input == nil {
		return nil
	}
	x, y := c.input.Cursor()
	c.input.ResetCursor()
	if x == 0 && y == 0 {
		return nil
	}
	yaw := geom.Angles{Yaw: -float32(x) * c.lookSpeed}.Quat()
	pitch := geom.Angles{Pitch: -float32(y) * c.lookSpeed}.Quat()
	return c.e.UpdateTransform(func(t *entity.Transform) {
		t.Rotation = yaw.Mul(t.Rotation).Mul(pitch).Normalize()
	})
}
