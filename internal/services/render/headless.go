// Package render provides a headless Renderer that records camera state and
// draw calls instead of talking to a GPU.
package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/zeuscore/internal/core/engine"
	"github.com/zeusync/zeuscore/internal/core/geom"
	"github.com/zeusync/zeuscore/internal/core/observability/log"
)

var (
	ErrUnknownCamera = errors.New("render: unknown camera")
	ErrUnknownShader = errors.New("render: unknown shader")
	ErrBadShader     = errors.New("render: shader needs a name")
)

var _ engine.Renderer = (*Headless)(nil)

// CameraState is the last update a camera received
type CameraState struct {
	ID         engine.CameraID
	Layer      uint32
	Projection geom.Mat4
	Transform  geom.Mat4
	Up         geom.Vec3
	Forward    geom.Vec3
	Updates    uint64
}

type shaderKey struct {
	layer uint32
	hash  uint64
}

type shaderEntry struct {
	shader engine.Shader
	draws  uint64
	last   engine.RenderData
}

type Headless struct {
	mu         sync.RWMutex
	cameras    map[engine.CameraID]*CameraState
	nextCamera engine.CameraID
	shaders    map[shaderKey]*shaderEntry
	log        log.Log
}

func NewHeadless(logger log.Log) *Headless {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Headless{
		cameras: make(map[engine.CameraID]*CameraState),
		shaders: make(map[shaderKey]*shaderEntry),
		log:     logger.With(log.String("component", "render")),
	}
}

func keyOf(layer uint32, name string) shaderKey {
	return shaderKey{layer: layer, hash: xxhash.Sum64String(name)}
}

func (h *Headless) RegisterCamera(layer uint32) (engine.CameraID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextCamera++
	id := h.nextCamera
	h.cameras[id] = &CameraState{
		ID:         id,
		Layer:      layer,
		Projection: geom.Identity4(),
		Transform:  geom.Identity4(),
		Up:         geom.Up,
		Forward:    geom.Forward,
	}
	h.log.Debug("camera registered", log.Uint32("camera_id", uint32(id)), log.Uint32("layer", layer))
	return id, nil
}

func (h *Headless) UpdateCamera(id engine.CameraID, projection, transform geom.Mat4, up, forward geom.Vec3) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.cameras[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownCamera, id)
	}
	c.Projection, c.Transform, c.Up, c.Forward = projection, transform, up, forward
	c.Updates++
	return nil
}

// RegisterShader adds shader to layer, replacing one of the same name
func (h *Headless) RegisterShader(layer uint32, shader engine.Shader) error {
	if shader.Name == "" {
		return ErrBadShader
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shaders[keyOf(layer, shader.Name)] = &shaderEntry{shader: shader}
	return nil
}

func (h *Headless) RenderShader(layer uint32, shader string, data engine.RenderData) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.shaders[keyOf(layer, shader)]
	if !ok || entry.shader.Name != shader {
		return fmt.Errorf("%w: %s on layer %d", ErrUnknownShader, shader, layer)
	}
	entry.draws++
	entry.last = data
	return nil
}

// Camera returns a copy of the camera's state
func (h *Headless) Camera(id engine.CameraID) (CameraState, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.cameras[id]
	if !ok {
		return CameraState{}, false
	}
	return *c, true
}

// Draws reports how often shader was rendered on layer, and the last payload
func (h *Headless) Draws(layer uint32, shader string) (uint64, engine.RenderData) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	entry, ok := h.shaders[keyOf(layer, shader)]
	if !ok {
		return 0, engine.RenderData{}
	}
	return entry.draws, entry.last
}

type Stats struct {
	Cameras int    `json:"cameras"`
	Shaders int    `json:"shaders"`
	Draws   uint64 `json:"draws"`
}

func (h *Headless) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s := Stats{Cameras: len(h.cameras), Shaders: len(h.shaders)}
	for _, e := range h.shaders {
		s.Draws += e.draws
	}
	return s
}
