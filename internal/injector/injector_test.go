package injector

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuscore/internal/config"
	"github.com/zeusync/zeuscore/internal/core/engine"
	"github.com/zeusync/zeuscore/internal/core/supervisor"
	"github.com/zeusync/zeuscore/internal/scene"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Scheduler.DedicatedThreads = false
	cfg.Entity.TargetFPS = 500
	return cfg
}

func TestNewEngine(t *testing.T) {
	eng, err := NewEngine(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close(context.Background()) })

	assert.Nil(t, eng.Monitor)
	assert.Equal(t, []string{"camera", "mesh", "script", "spinner"}, eng.Registry.Names())
	assert.Same(t, eng.Render, eng.Services.Render)
	assert.Same(t, eng.Assets, eng.Services.Assets)
	assert.Equal(t, supervisor.StatusStarting, eng.System.Status())
}

func TestNewEngineWithMonitor(t *testing.T) {
	cfg := testConfig()
	cfg.Monitor.Enabled = true
	cfg.Monitor.Addr = "127.0.0.1:0"

	eng, err := NewEngine(cfg)
	require.NoError(t, err)
	require.NotNil(t, eng.Monitor)
	assert.NoError(t, eng.Close(context.Background()))
}

func TestNewEngineRejectsMissingPack(t *testing.T) {
	cfg := testConfig()
	cfg.Assets.Packs = map[string]string{"core": "/does/not/exist"}

	_, err := NewEngine(cfg)
	assert.Error(t, err)
}

func TestEngineRunsScene(t *testing.T) {
	eng, err := NewEngine(testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = eng.System.Run(ctx) }()
	require.Eventually(t, eng.System.Running, time.Second, time.Millisecond)

	sc, err := scene.Decode(strings.NewReader(`
entities:
  - name: rig
    components:
      - type: spinner
      - type: camera
        def: '{layer: 1, fov: 60}'
`))
	require.NoError(t, err)
	ids, err := sc.Instantiate(ctx, eng.System, eng.Registry, eng.Log)
	require.NoError(t, err)

	rig, ok := eng.System.Entity(ids["rig"])
	require.True(t, ok)
	assert.Equal(t, []string{"spinner", "camera"}, rig.Components())
	require.Equal(t, 1, eng.Render.Stats().Cameras)

	require.NoError(t, eng.System.SetStatus(supervisor.StatusRunning))
	require.Eventually(t, func() bool {
		st, ok := eng.Render.Camera(engine.CameraID(1))
		return ok && st.Updates > 2
	}, 2*time.Second, time.Millisecond)

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	require.NoError(t, eng.System.Shutdown(shutdownCtx))
	assert.Equal(t, supervisor.StatusStopped, eng.System.Status())
	assert.NoError(t, eng.Close(shutdownCtx))
}

func TestEngineRunsShippedDemo(t *testing.T) {
	cfg, err := config.Load("../../examples/engine.yaml")
	require.NoError(t, err)
	cfg.Log.Level = "error"
	cfg.Monitor.Addr = "127.0.0.1:0"
	cfg.Scheduler.DedicatedThreads = false

	eng, err := NewEngine(cfg)
	require.NoError(t, err)
	require.NotNil(t, eng.Monitor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = eng.System.Run(ctx) }()
	require.Eventually(t, eng.System.Running, time.Second, time.Millisecond)
	require.NoError(t, eng.Monitor.Start(ctx))

	sc, err := scene.LoadFile(cfg.Scene)
	require.NoError(t, err)
	ids, err := sc.Instantiate(ctx, eng.System, eng.Registry, eng.Log)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	cube, ok := eng.System.Entity(ids["cube"])
	require.True(t, ok)
	assert.Equal(t, []string{"mesh", "script"}, cube.Components())

	require.NoError(t, eng.System.SetStatus(supervisor.StatusRunning))
	require.Eventually(t, func() bool {
		draws, _ := eng.Render.Draws(0, "lit")
		return draws > 2
	}, 2*time.Second, time.Millisecond)

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	require.NoError(t, eng.System.Shutdown(shutdownCtx))
	assert.NoError(t, eng.Close(shutdownCtx))
}
