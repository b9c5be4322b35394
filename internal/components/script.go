package components

import (
	"fmt"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"

	"github.com/zeusync/zeuscore/internal/core/engine"
	"github.com/zeusync/zeuscore/internal/core/entity"
	"github.com/zeusync/zeuscore/internal/core/event"
	"github.com/zeusync/zeuscore/internal/core/geom"
	"github.com/zeusync/zeuscore/internal/core/observability/log"
	"github.com/zeusync/zeuscore/internal/core/value"
)

// Script runs Lua handlers. The chunk may define on_event(ev) and
// on_detach(); it can call:
//
//	entity_id()          -> number
//	set_interests(flags) -- e.g. "UPDATE|CUSTOM"
//	position()           -> x, y, z
//	move(dx, dy, dz)
//	log(msg)
//
// Each script owns its own VM. The VM is only touched under the component's
// handle lock, so it is never used by two goroutines at once.
type Script struct {
	e         *entity.Entity
	vm        *lua.LState
	interests atomic.Uint32
	log       log.Log
}

type ScriptFactory struct{}

func (ScriptFactory) Name() string { return "script" }

func (ScriptFactory) DefaultDefinition() value.Value {
	return value.Object().
		Set("interests", value.String("INIT")).
		Set("source", value.String("function on_event(ev) end")).
		Build()
}

func (ScriptFactory) Construct(e *entity.Entity, def value.Value) (*Script, error) {
	flags, err := value.OptionalString(def, "interests", "INIT|UPDATE")
	if err != nil {
		return nil, err
	}
	mask, err := event.ParseFlag(flags)
	if err != nil {
		return nil, err
	}

	source, err := value.OptionalString(def, "source", "")
	if err != nil {
		return nil, err
	}
	asset, err := value.OptionalString(def, "asset", "")
	if err != nil {
		return nil, err
	}
	name := "inline"
	if source == "" {
		if asset == "" {
			return nil, ErrNoScript
		}
		source, err = engine.LoadAsset(e.Services().Assets, asset, func(b []byte) (string, error) { return string(b), nil })
		if err != nil {
			return nil, err
		}
		name = asset
	}

	s := &Script{
		e:   e,
		vm:  lua.NewState(lua.Options{SkipOpenLibs: false}),
		log: e.Log().With(log.String("script", name)),
	}
	s.interests.Store(uint32(mask))
	s.installAPI()

	fn, err := s.vm.LoadString(source)
	if err != nil {
		s.vm.Close()
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	s.vm.Push(fn)
	if err = s.vm.PCall(0, lua.MultRet, nil); err != nil {
		s.vm.Close()
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	return s, nil
}

func (s *Script) installAPI() {
	s.vm.SetGlobal("entity_id", s.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(s.e.ID()))
		return 1
	}))
	s.vm.SetGlobal("set_interests", s.vm.NewFunction(func(L *lua.LState) int {
		mask, err := event.ParseFlag(L.CheckString(1))
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		s.interests.Store(uint32(mask))
		return 0
	}))
	s.vm.SetGlobal("position", s.vm.NewFunction(func(L *lua.LState) int {
		t, err := s.e.Transform()
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(lua.LNumber(t.Position.X))
		L.Push(lua.LNumber(t.Position.Y))
		L.Push(lua.LNumber(t.Position.Z))
		return 3
	}))
	s.vm.SetGlobal("move", s.vm.NewFunction(func(L *lua.LState) int {
		d := geom.Vec3{
			X: float32(L.CheckNumber(1)),
			Y: float32(L.CheckNumber(2)),
			Z: float32(L.CheckNumber(3)),
		}
		if err := s.e.UpdateTransform(func(t *entity.Transform) { t.Position = t.Position.Add(d) }); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	}))
	s.vm.SetGlobal("log", s.vm.NewFunction(func(L *lua.LState) int {
		s.log.Info(L.CheckString(1))
		return 0
	}))
}

func (s *Script) Interests() event.Flag { return event.Flag(s.interests.Load()) }

func (s *Script) HandleEvent(ev event.Event) error {
	fn := s.vm.GetGlobal("on_event")
	if fn == lua.LNil {
		return nil
	}
	return s.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, s.eventTable(ev))
}

func (s *Script) eventTable(ev event.Event) *lua.LTable {
	t := s.vm.NewTable()
	t.RawSetString("flag", lua.LString(ev.Flag.String()))
	t.RawSetString("name", lua.LString(ev.Name))
	t.RawSetString("frame_time", lua.LNumber(ev.FrameTime()))
	data := s.vm.NewTable()
	for k, v := range ev.Data {
		data.RawSetString(k, s.toLua(v))
	}
	t.RawSetString("data", data)
	return t
}

func (s *Script) toLua(v value.Value) lua.LValue {
	switch v.Kind() {
	case value.KindNull:
		return lua.LNil
	case value.KindInt, value.KindFloat:
		f, _ := v.AsFloat64()
		return lua.LNumber(f)
	case value.KindString:
		str, _ := v.AsString()
		return lua.LString(str)
	case value.KindVec3:
		vec, _ := v.AsVec3()
		t := s.vm.NewTable()
		t.RawSetString("x", lua.LNumber(vec.X))
		t.RawSetString("y", lua.LNumber(vec.Y))
		t.RawSetString("z", lua.LNumber(vec.Z))
		return t
	case value.KindArray:
		items, _ := v.AsArray()
		t := s.vm.NewTable()
		for _, item := range items {
			if name, inner, ok := item.AsComponent(); ok {
				t.RawSetString(name, s.toLua(inner))
				continue
			}
			t.Append(s.toLua(item))
		}
		return t
	case value.KindComponent:
		_, inner, _ := v.AsComponent()
		return s.toLua(inner)
	default:
		return lua.LString(value.Format(v))
	}
}

// OnDetach runs on_detach if the script defines it, then closes the VM
func (s *Script) OnDetach() {
	defer s.vm.Close()
	fn := s.vm.GetGlobal("on_detach")
	if fn == lua.LNil {
		return
	}
	if err := s.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
		s.log.Warn("on_detach failed", log.Error(err))
	}
}
