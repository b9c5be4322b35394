package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuscore/internal/core/event"
	"github.com/zeusync/zeuscore/internal/core/value"
)

func TestKillStopsAtItsPosition(t *testing.T) {
	e := newTestEntity(t)
	rec := newRecorder(0)
	_, err := AddComponent(e, recorderFactory{rec: rec}, maskDef("CUSTOM"))
	require.NoError(t, err)

	e.Post(EventMessage(event.Custom("a", nil)))
	e.Post(EventMessage(event.Custom("b", nil)))
	e.Post(KillMessage())
	e.Post(EventMessage(event.Custom("c", nil)))

	errCh := start(e, openGate())
	waitDone(t, e)
	require.NoError(t, <-errCh)

	assert.Equal(t, []string{"a", "b"}, rec.customNames())
	assert.Equal(t, StateTerminated, e.State())
	assert.Equal(t, int32(1), rec.detached.Load())
	assert.False(t, e.Post(EventMessage(event.Custom("late", nil))))
}

func TestInterestFiltering(t *testing.T) {
	e := newTestEntity(t)
	rec := newRecorder(0)
	_, err := AddComponent(e, recorderFactory{rec: rec}, value.Null())
	require.NoError(t, err)

	start(e, openGate())
	require.Eventually(t, func() bool { return rec.count(event.FlagUpdate) >= 5 }, 5*time.Second, time.Millisecond)

	e.Post(EventMessage(event.New(event.FlagRespawn)))
	e.Post(EventMessage(event.New(event.FlagRespawn)))
	e.Post(KillMessage())
	waitDone(t, e)

	assert.Equal(t, 1, rec.count(event.FlagInit))
	assert.Equal(t, 0, rec.count(event.FlagRespawn))
	assert.Equal(t, event.FlagInit, rec.events()[0].Flag)
	for _, ev := range rec.events()[1:] {
		require.Equal(t, event.FlagUpdate, ev.Flag)
		assert.Greater(t, ev.FrameTime(), 0.0)
	}
	assert.GreaterOrEqual(t, e.Stats().Frames, uint64(4))
}

func TestFirstFramesReportTargetFrameTime(t *testing.T) {
	arena := NewArena()
	slot, err := arena.Alloc(IdentityTransform(), NoSlot)
	require.NoError(t, err)
	target := 16 * time.Millisecond
	e := New(Params{ID: 1, Name: "paced", Arena: arena, Slot: slot, Options: Options{TargetFrame: target, MailboxSpin: 16}})

	rec := newRecorder(0)
	_, err = AddComponent(e, recorderFactory{rec: rec}, maskDef("UPDATE"))
	require.NoError(t, err)

	start(e, openGate())
	require.Eventually(t, func() bool { return rec.count(event.FlagUpdate) >= 3 }, 5*time.Second, time.Millisecond)
	assert.True(t, e.Kill())
	waitDone(t, e)

	evs := rec.events()
	require.GreaterOrEqual(t, len(evs), 3)
	assert.InDelta(t, target.Seconds(), evs[0].FrameTime(), 2e-3)
	for i, ev := range evs[:3] {
		assert.GreaterOrEqual(t, ev.FrameTime(), 0.75*target.Seconds(), "update %d", i)
		assert.Less(t, ev.FrameTime(), 0.2, "update %d", i)
	}
}

func TestNothingRunsBeforeGateOpens(t *testing.T) {
	e := newTestEntity(t)
	rec := newRecorder(0)
	_, err := AddComponent(e, recorderFactory{rec: rec}, maskDef("UPDATE|CUSTOM"))
	require.NoError(t, err)

	ready := make(chan struct{})
	start(e, ready)
	e.Post(EventMessage(event.Custom("queued", nil)))

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rec.events())
	assert.Equal(t, StateSpawned, e.State())

	close(ready)
	require.Eventually(t, func() bool { return len(rec.customNames()) == 1 }, 5*time.Second, time.Millisecond)
	assert.True(t, e.Kill())
	waitDone(t, e)
}

func TestFrontKillPreemptsRestOfBatch(t *testing.T) {
	e := newTestEntity(t)
	rec := newRecorder(0)
	rec.block = make(chan struct{})
	rec.blocked = make(chan struct{}, 1)
	_, err := AddComponent(e, recorderFactory{rec: rec}, maskDef("CUSTOM"))
	require.NoError(t, err)

	e.Post(EventMessage(event.Custom("first", nil)))
	e.Post(EventMessage(event.Custom("second", nil)))
	start(e, openGate())

	select {
	case <-rec.blocked:
	case <-time.After(5 * time.Second):
		t.Fatal("handler never started")
	}
	require.True(t, e.Kill())
	close(rec.block)
	waitDone(t, e)

	assert.Equal(t, []string{"first"}, rec.customNames())
}

func TestHandlerPanicIsContained(t *testing.T) {
	e := newTestEntity(t)
	bad := newRecorder(0)
	bad.panicOn = event.FlagUpdate
	good := newRecorder(0)

	_, err := AddComponent(e, recorderFactory{name: "bad", rec: bad}, maskDef("UPDATE"))
	require.NoError(t, err)
	_, err = AddComponent(e, recorderFactory{name: "good", rec: good}, maskDef("UPDATE"))
	require.NoError(t, err)

	start(e, openGate())
	require.Eventually(t, func() bool { return good.count(event.FlagUpdate) >= 3 }, 5*time.Second, time.Millisecond)
	assert.Equal(t, []string{"bad", "good"}, e.Components())
	e.Kill()
	waitDone(t, e)

	stats := e.Stats()
	assert.GreaterOrEqual(t, stats.Failures, uint64(3))
	assert.Equal(t, 0, stats.Components)
	assert.Equal(t, int32(1), bad.detached.Load())
}

func TestHandlerErrorsAreCounted(t *testing.T) {
	e := newTestEntity(t)
	rec := newRecorder(0)
	rec.failOn = event.FlagCustom
	_, err := AddComponent(e, recorderFactory{rec: rec}, maskDef("CUSTOM"))
	require.NoError(t, err)

	e.Post(EventMessage(event.Custom("x", nil)))
	e.Post(EventMessage(event.Custom("y", nil)))
	e.Post(KillMessage())
	start(e, openGate())
	waitDone(t, e)

	assert.Equal(t, []string{"x", "y"}, rec.customNames())
	assert.Equal(t, uint64(2), e.Stats().Failures)
}

func TestInterestsChangeAtRuntime(t *testing.T) {
	e := newTestEntity(t)
	rec := newRecorder(0)
	_, err := AddComponent(e, recorderFactory{rec: rec}, maskDef("INIT"))
	require.NoError(t, err)

	start(e, openGate())
	e.Post(EventMessage(event.Custom("ignored", nil)))
	require.Eventually(t, func() bool { return e.Mailbox().Len() == 0 }, 5*time.Second, time.Millisecond)
	frames := e.Stats().Frames
	require.Eventually(t, func() bool { return e.Stats().Frames >= frames+2 }, 5*time.Second, time.Millisecond)

	rec.setMask(event.FlagCustom)
	e.Post(EventMessage(event.Custom("seen", nil)))
	require.Eventually(t, func() bool { return len(rec.customNames()) == 1 }, 5*time.Second, time.Millisecond)

	e.Kill()
	waitDone(t, e)
	assert.Equal(t, []string{"seen"}, rec.customNames())
}

func TestScopedMessageCarriesIDs(t *testing.T) {
	e := newTestEntity(t)
	rec := newRecorder(0)
	_, err := AddComponent(e, recorderFactory{rec: rec}, maskDef("ENTER_AREA"))
	require.NoError(t, err)

	e.Post(ScopedMessage(event.New(event.FlagEnterArea), 1, 9))
	e.Post(KillMessage())
	start(e, openGate())
	waitDone(t, e)

	evs := rec.events()
	require.Len(t, evs, 1)
	other, ok := evs[0].Get("other")
	require.True(t, ok)
	id, _ := other.AsInt64()
	assert.Equal(t, int64(9), id)
	self, _ := evs[0].Get("entity")
	id, _ = self.AsInt64()
	assert.Equal(t, int64(1), id)
	assert.GreaterOrEqual(t, evs[0].FrameTime(), 0.0)
	_, ok = evs[0].Get(event.FrameTimeKey)
	assert.True(t, ok)
}

func TestRunTwice(t *testing.T) {
	e := newTestEntity(t)
	e.Post(KillMessage())
	first := start(e, openGate())
	waitDone(t, e)
	require.NoError(t, <-first)

	assert.True(t, errors.Is(e.Run(openGate()), ErrAlreadyStarted))
}

func TestAttachAfterTermination(t *testing.T) {
	e := newTestEntity(t)
	e.Post(KillMessage())
	start(e, openGate())
	waitDone(t, e)

	_, err := AddComponent(e, recorderFactory{rec: newRecorder(0)}, value.Null())
	assert.ErrorIs(t, err, ErrTerminated)
}
