package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuscore/internal/core/event"
	"github.com/zeusync/zeuscore/internal/core/value"
)

func TestConstructionFailureLeavesListUnchanged(t *testing.T) {
	e := newTestEntity(t)
	_, err := AddComponent(e, recorderFactory{name: "kept", rec: newRecorder(0)}, value.Null())
	require.NoError(t, err)
	before := e.Components()

	boom := errors.New("no camera slot")
	_, err = AddComponent(e, recorderFactory{name: "broken", err: boom}, value.Null())
	var cerr *ConstructError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "broken", cerr.Component)
	assert.Equal(t, ID(1), cerr.Entity)
	assert.ErrorIs(t, err, boom)

	_, err = AddComponent(e, recorderFactory{rec: newRecorder(0)}, value.Object().Set("mask", value.Int(3)).Build())
	var ferr *value.FieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "mask", ferr.Field)

	assert.Equal(t, before, e.Components())
}

func TestInitFailureIsConstructionFailure(t *testing.T) {
	e := newTestEntity(t)

	refusing := newRecorder(0)
	refusing.failOn = event.FlagInit
	_, err := AddComponent(e, recorderFactory{rec: refusing}, maskDef("INIT"))
	assert.Error(t, err)

	panicking := newRecorder(0)
	panicking.panicOn = event.FlagInit
	_, err = AddComponent(e, recorderFactory{rec: panicking}, maskDef("INIT|UPDATE"))
	var perr *PanicError
	assert.ErrorAs(t, err, &perr)

	assert.Empty(t, e.Components())
}

func TestInitDeliveredBeforePublish(t *testing.T) {
	e := newTestEntity(t)
	rec := newRecorder(0)

	h, err := AddComponent(e, recorderFactory{rec: rec}, maskDef("INIT"))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.count(event.FlagInit))
	assert.Equal(t, "recorder", h.Name())
	assert.Equal(t, []string{"recorder"}, e.Components())

	h.With(func(c *recorder) { assert.Same(t, rec, c) })

	quiet := newRecorder(0)
	_, err = AddComponent(e, recorderFactory{name: "quiet", rec: quiet}, maskDef("UPDATE"))
	require.NoError(t, err)
	assert.Zero(t, quiet.count(event.FlagInit))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	rec := newRecorder(0)
	require.NoError(t, Register[*recorder](r, recorderFactory{rec: rec}))
	require.NoError(t, Register[*recorder](r, recorderFactory{name: "alias", rec: rec}))
	assert.ErrorIs(t, Register[*recorder](r, recorderFactory{rec: rec}), ErrDuplicateFactory)
	assert.Equal(t, []string{"alias", "recorder"}, r.Names())

	e := newTestEntity(t)
	got, err := r.Attach(e, "recorder", maskDef("INIT"))
	require.NoError(t, err)
	h, ok := got.(*Handle[*recorder])
	require.True(t, ok)
	assert.Equal(t, "recorder", h.Name())

	_, err = r.Attach(e, "missing", value.Null())
	assert.ErrorIs(t, err, ErrUnknownComponent)
}
