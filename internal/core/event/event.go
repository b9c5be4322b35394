// Package event defines the events delivered to entity components and the
// interest mask components use to select them.
package event

import (
	"fmt"
	"maps"
	"strings"

	"github.com/zeusync/zeuscore/internal/core/value"
)

// Flag is a bitmask of event kinds
type Flag uint32

const (
	FlagInit Flag = 1 << iota
	FlagUpdate
	FlagRespawn
	FlagEnterArea
	FlagLeaveArea
	FlagCustom

	FlagNone Flag = 0
	FlagAll       = FlagInit | FlagUpdate | FlagRespawn | FlagEnterArea | FlagLeaveArea | FlagCustom
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagInit, "INIT"},
	{FlagUpdate, "UPDATE"},
	{FlagRespawn, "RESPAWN"},
	{FlagEnterArea, "ENTER_AREA"},
	{FlagLeaveArea, "LEAVE_AREA"},
	{FlagCustom, "CUSTOM"},
}

// Has reports whether every bit of other is set in f
func (f Flag) Has(other Flag) bool { return other != 0 && f&other == other }

func (f Flag) String() string {
	if f == FlagNone {
		return "NONE"
	}
	var parts []string
	rest := f
	for _, n := range flagNames {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
			rest &^= n.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseFlag reads a single flag name or a "|" separated list of them,
// case-insensitively.
func ParseFlag(s string) (Flag, error) {
	var out Flag
	for _, part := range strings.Split(s, "|") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "NONE" || part == "" {
			continue
		}
		found := false
		for _, n := range flagNames {
			if n.name == part {
				out |= n.flag
				found = true
				break
			}
		}
		if !found {
			return FlagNone, fmt.Errorf("event: unknown flag %q", part)
		}
	}
	return out, nil
}

// FrameTimeKey is the data entry carrying the frame time in seconds
const FrameTimeKey = "frame_time"

// Event is one delivery to a component. Data values must not be mutated
// after the event is posted; helpers that add entries copy the map.
type Event struct {
	Flag Flag
	// Name distinguishes CUSTOM events; empty for the built-in kinds.
	Name string
	Data map[string]value.Value
}

func New(flag Flag) Event { return Event{Flag: flag} }

// Custom builds a CUSTOM event
func Custom(name string, data map[string]value.Value) Event {
	return Event{Flag: FlagCustom, Name: name, Data: data}
}

// With returns a copy of e with key set to v
func (e Event) With(key string, v value.Value) Event {
	data := make(map[string]value.Value, len(e.Data)+1)
	maps.Copy(data, e.Data)
	data[key] = v
	e.Data = data
	return e
}

func (e Event) WithFrameTime(seconds float64) Event {
	return e.With(FrameTimeKey, value.Float(seconds))
}

// Get returns the data entry for key
func (e Event) Get(key string) (value.Value, bool) {
	v, ok := e.Data[key]
	return v, ok
}

// FrameTime returns the frame_time entry, or 0 when absent
func (e Event) FrameTime() float64 {
	f, _ := e.Data[FrameTimeKey].AsFloat64()
	return f
}

func (e Event) String() string {
	if e.Name != "" {
		return e.Flag.String() + "(" + e.Name + ")"
	}
	return e.Flag.String()
}
