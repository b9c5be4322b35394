// Package engine declares the collaborators the entity core consumes:
// rendering, asset loading and input. Concrete implementations live under
// internal/services.
package engine

import (
	"github.com/zeusync/zeuscore/internal/core/geom"
	"github.com/zeusync/zeuscore/internal/core/observability/log"
)

// CameraID identifies a camera registered with a Renderer
type CameraID uint32

// Shader is an opaque program handed to the renderer
type Shader struct {
	Name   string
	Source []byte
}

// RenderData is the per-draw payload passed to RenderShader
type RenderData struct {
	Transform geom.Mat4
	Buffer    []byte
}

type Renderer interface {
	RegisterCamera(layer uint32) (CameraID, error)
	UpdateCamera(id CameraID, projection, transform geom.Mat4, up, forward geom.Vec3) error
	RegisterShader(layer uint32, shader Shader) error
	RenderShader(layer uint32, shader string, data RenderData) error
}

// Assets resolves paths of the form ASSET:<pack>/<relative path>
type Assets interface {
	Load(path string) ([]byte, error)
}

type Input interface {
	// Cursor returns the cursor position averaged over the current window
	Cursor() (avgX, avgY float64)
	ResetCursor()
}

// Services is the explicit context object shared by the supervisor and every
// entity. Any field may be nil when a deployment has no such collaborator.
type Services struct {
	Render Renderer
	Assets Assets
	Input  Input
	Log    log.Log
}

// Logger returns s.Log or a no-op logger
func (s *Services) Logger() log.Log {
	if s == nil || s.Log == nil {
		return log.NewNop()
	}
	return s.Log
}
