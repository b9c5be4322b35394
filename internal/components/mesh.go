package components

import (
	"fmt"

	"github.com/zeusync/zeuscore/internal/core/engine"
	"github.com/zeusync/zeuscore/internal/core/entity"
	"github.com/zeusync/zeuscore/internal/core/event"
	"github.com/zeusync/zeuscore/internal/core/value"
)

// Mesh loads vertex data from an asset and draws it with a shader each frame
type Mesh struct {
	e      *entity.Entity
	render engine.Renderer
	layer  uint32
	shader string
	data   []byte
}

type MeshFactory struct{}

func (MeshFactory) Name() string { return "mesh" }

func (MeshFactory) DefaultDefinition() value.Value {
	return value.Object().
		Set("asset", value.String("ASSET:core/meshes/cube.obj")).
		Set("shader", value.String("lit")).
		Set("layer", value.Int(0)).
		Build()
}

func decodeMesh(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyMesh
	}
	return raw, nil
}

// Construct loads the mesh and, when shader_asset is given, registers the
// shader program it names
func (MeshFactory) Construct(e *entity.Entity, def value.Value) (*Mesh, error) {
	svc := e.Services()
	if svc.Render == nil {
		return nil, engine.ErrNoRenderer
	}

	path, err := value.RequiredString(def, "asset")
	if err != nil {
		return nil, err
	}
	shader, err := value.RequiredString(def, "shader")
	if err != nil {
		return nil, err
	}
	layer, err := value.RequiredUint32(def, "layer")
	if err != nil {
		return nil, err
	}
	shaderAsset, err := value.OptionalString(def, "shader_asset", "")
	if err != nil {
		return nil, err
	}

	data, err := engine.LoadAsset(svc.Assets, path, decodeMesh)
	if err != nil {
		return nil, err
	}

	if shaderAsset != "" {
		source, err := engine.LoadAsset(svc.Assets, shaderAsset, func(b []byte) ([]byte, error) { return b, nil })
		if err != nil {
			return nil, err
		}
		if err = svc.Render.RegisterShader(layer, engine.Shader{Name: shader, Source: source}); err != nil {
			return nil, fmt.Errorf("register shader %s: %w", shader, err)
		}
	}

	return &Mesh{e: e, render: svc.Render, layer: layer, shader: shader, data: data}, nil
}

func (m *Mesh) Interests() event.Flag { return event.FlagUpdate }

func (m *Mesh) HandleEvent(event.Event) error {
	world, err := m.e.World()
	if err != nil {
		return err
	}
	return m.render.RenderShader(m.layer, m.shader, engine.RenderData{Transform: world, Buffer: m.data})
}
