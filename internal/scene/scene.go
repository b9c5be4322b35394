// Package scene loads YAML scene files and instantiates their entities
// through the supervisor. Component definitions are written in the
// definition language and attached by registered factory name.
package scene

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/zeuscore/internal/core/entity"
	"github.com/zeusync/zeuscore/internal/core/geom"
	"github.com/zeusync/zeuscore/internal/core/observability/log"
	"github.com/zeusync/zeuscore/internal/core/supervisor"
	"github.com/zeusync/zeuscore/internal/core/value"
)

var (
	ErrDuplicateName = errors.New("scene: duplicate entity name")
	ErrUnknownParent = errors.New("scene: unknown parent")
	ErrParentCycle   = errors.New("scene: parent cycle")
	ErrBadTransform  = errors.New("scene: bad transform")
	ErrNoType        = errors.New("scene: component has no type")
)

type Scene struct {
	Name     string       `yaml:"name"`
	Entities []EntitySpec `yaml:"entities"`
}

type EntitySpec struct {
	Name string `yaml:"name"`
	// Position and Scale hold Vec3 literals; Scale also takes a single
	// number. Rotation takes Quat or Ang3.
	Position   string          `yaml:"position,omitempty"`
	Rotation   string          `yaml:"rotation,omitempty"`
	Scale      string          `yaml:"scale,omitempty"`
	Parent     string          `yaml:"parent,omitempty"`
	Components []ComponentSpec `yaml:"components,omitempty"`
}

type ComponentSpec struct {
	Type string `yaml:"type"`
	// Def is definition-language text; empty selects the factory default
	Def string `yaml:"def,omitempty"`
}

// Spawner is the part of the supervisor a scene needs
type Spawner interface {
	Spawn(ctx context.Context, p supervisor.SpawnParams) (*entity.Entity, error)
	AttachComponent(id entity.ID, reg *entity.Registry, name string, def value.Value) (any, error)
}

// Decode reads a scene document and validates it
func Decode(r io.Reader) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("scene: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	s, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks names, parents, transforms and component definitions
// without spawning anything
func (s *Scene) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(s.Entities))
	for i, spec := range s.Entities {
		if spec.Name != "" {
			if seen[spec.Name] {
				errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateName, spec.Name))
			}
			seen[spec.Name] = true
		}
		if _, err := spec.params(); err != nil {
			errs = append(errs, fmt.Errorf("entity %d (%s): %w", i, spec.Name, err))
		}
		for j, c := range spec.Components {
			if c.Type == "" {
				errs = append(errs, fmt.Errorf("entity %d (%s) component %d: %w", i, spec.Name, j, ErrNoType))
				continue
			}
			if _, err := value.Parse(c.Def); err != nil {
				errs = append(errs, fmt.Errorf("entity %d (%s) component %s: %w", i, spec.Name, c.Type, err))
			}
		}
	}
	if _, err := s.order(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// order returns entity indices with every parent ahead of its children
func (s *Scene) order() ([]int, error) {
	byName := make(map[string]int, len(s.Entities))
	for i, spec := range s.Entities {
		if spec.Name != "" {
			if _, ok := byName[spec.Name]; !ok {
				byName[spec.Name] = i
			}
		}
	}

	const (
		unvisited = iota
		visiting
		visited
	)
	state := make([]int, len(s.Entities))
	out := make([]int, 0, len(s.Entities))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case visited:
			return nil
		case visiting:
			return fmt.Errorf("%w at %q", ErrParentCycle, s.Entities[i].Name)
		}
		state[i] = visiting
		if parent := s.Entities[i].Parent; parent != "" {
			p, ok := byName[parent]
			if !ok {
				return fmt.Errorf("%w: %q (entity %q)", ErrUnknownParent, parent, s.Entities[i].Name)
			}
			if err := visit(p); err != nil {
				return err
			}
		}
		state[i] = visited
		out = append(out, i)
		return nil
	}

	for i := range s.Entities {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (spec EntitySpec) params() (supervisor.SpawnParams, error) {
	p := supervisor.SpawnParams{Name: spec.Name}

	if spec.Position != "" {
		v, err := value.Parse(spec.Position)
		if err != nil {
			return p, fmt.Errorf("%w: position: %w", ErrBadTransform, err)
		}
		pos, ok := v.AsVec3()
		if !ok {
			return p, fmt.Errorf("%w: position must be Vec3, got %s", ErrBadTransform, v.Kind())
		}
		p.Position = pos
	}

	if spec.Rotation != "" {
		v, err := value.Parse(spec.Rotation)
		if err != nil {
			return p, fmt.Errorf("%w: rotation: %w", ErrBadTransform, err)
		}
		if q, ok := v.AsQuat(); ok {
			p.Rotation = q.Normalize()
		} else if a, ok := v.AsAngles(); ok {
			p.Rotation = a.Quat()
		} else {
			return p, fmt.Errorf("%w: rotation must be Quat or Ang3, got %s", ErrBadTransform, v.Kind())
		}
	}

	if spec.Scale != "" {
		v, err := value.Parse(spec.Scale)
		if err != nil {
			return p, fmt.Errorf("%w: scale: %w", ErrBadTransform, err)
		}
		if sc, ok := v.AsVec3(); ok {
			p.Scale = &sc
		} else if f, ok := v.AsFloat32(); ok {
			p.Scale = &geom.Vec3{X: f, Y: f, Z: f}
		} else {
			return p, fmt.Errorf("%w: scale must be Vec3 or a number, got %s", ErrBadTransform, v.Kind())
		}
	}
	return p, nil
}

// Instantiate spawns every entity, parents first, and attaches its
// components. A failed component does not stop the scene; all failures come
// back joined. Entities whose spawn fails take their descendants with them.
// The returned map holds the ids of named entities that were spawned.
func (s *Scene) Instantiate(ctx context.Context, sys Spawner, reg *entity.Registry, logger log.Log) (map[string]entity.ID, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	order, err := s.order()
	if err != nil {
		return nil, err
	}

	ids := make(map[string]entity.ID, len(s.Entities))
	failed := make(map[string]bool)
	var errs []error

	for _, i := range order {
		spec := s.Entities[i]
		if spec.Parent != "" && failed[spec.Parent] {
			failed[spec.Name] = true
			errs = append(errs, fmt.Errorf("entity %q: parent %q was not spawned", spec.Name, spec.Parent))
			continue
		}

		p, err := spec.params()
		if err != nil {
			failed[spec.Name] = true
			errs = append(errs, fmt.Errorf("entity %q: %w", spec.Name, err))
			continue
		}
		if spec.Parent != "" {
			p.Parent = ids[spec.Parent]
		}

		e, err := sys.Spawn(ctx, p)
		if err != nil {
			failed[spec.Name] = true
			errs = append(errs, fmt.Errorf("entity %q: %w", spec.Name, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if spec.Name != "" {
			ids[spec.Name] = e.ID()
		}

		for _, c := range spec.Components {
			def, err := value.Parse(c.Def)
			if err != nil {
				errs = append(errs, fmt.Errorf("entity %q component %s: %w", spec.Name, c.Type, err))
				continue
			}
			if _, err = sys.AttachComponent(e.ID(), reg, c.Type, def); err != nil {
				errs = append(errs, fmt.Errorf("entity %q: %w", spec.Name, err))
			}
		}
	}

	logger.Info("scene instantiated",
		log.String("scene", s.Name),
		log.Int("entities", len(ids)),
		log.Int("errors", len(errs)),
	)
	return ids, errors.Join(errs...)
}
