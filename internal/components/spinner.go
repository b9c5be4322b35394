package components

import (
	"github.com/zeusync/zeuscore/internal/core/entity"
	"github.com/zeusync/zeuscore/internal/core/event"
	"github.com/zeusync/zeuscore/internal/core/geom"
	"github.com/zeusync/zeuscore/internal/core/value"
)

// Spinner rotates its entity at a constant angular speed in degrees per
// second
type Spinner struct {
	e     *entity.Entity
	speed geom.Angles
}

type SpinnerFactory struct{}

func (SpinnerFactory) Name() string { return "spinner" }

func (SpinnerFactory) DefaultDefinition() value.Value {
	return value.Object().Set("speed", value.Angles(geom.Angles{Yaw: 90})).Build()
}

func (SpinnerFactory) Construct(e *entity.Entity, def value.Value) (*Spinner, error) {
	speed, err := value.RequiredAngles(def, "speed")
	if err != nil {
		return nil, err
	}
	return &Spinner{e: e, speed: speed}, nil
}

func (s *Spinner) Interests() event.Flag { return event.FlagUpdate }

func (s *Spinner) HandleEvent(ev event.Event) error {
	step := s.speed.Scale(float32(ev.FrameTime())).Quat()
	return s.e.UpdateTransform(func(t *entity.Transform) {
		t.Rotation = t.Rotation.Mul(step).Normalize()
	})
}
