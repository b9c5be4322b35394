package assets

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuscore/internal/core/engine"
)

func TestParsePath(t *testing.T) {
	pack, rel, err := ParsePath("ASSET:core/shaders/lit.glsl")
	require.NoError(t, err)
	assert.Equal(t, "core", pack)
	assert.Equal(t, "shaders/lit.glsl", rel)
	assert.Equal(t, "ASSET:core/shaders/lit.glsl", Path(pack, rel))

	for _, bad := range []string{
		"core/x.txt",
		"ASSET:core",
		"ASSET:/x.txt",
		"ASSET:core/",
		"ASSET:core/../secret",
		"ASSET:core//x",
	} {
		_, _, err := ParsePath(bad)
		assert.ErrorIs(t, err, ErrBadPath, bad)
	}
}

func TestLoadAndCache(t *testing.T) {
	s, err := New(Options{CacheShards: 4}, nil)
	require.NoError(t, err)
	s.Mount("core", fstest.MapFS{"meshes/cube.obj": {Data: []byte("v 0 0 0")}})

	raw, err := s.Load("ASSET:core/meshes/cube.obj")
	require.NoError(t, err)
	assert.Equal(t, "v 0 0 0", string(raw))

	raw[0] = 'X'
	again, err := s.Load("ASSET:core/meshes/cube.obj")
	require.NoError(t, err)
	assert.Equal(t, "v 0 0 0", string(again))

	stats := s.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Cached)

	_, err = s.Load("ASSET:core/meshes/missing.obj")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Load("ASSET:other/x")
	assert.ErrorIs(t, err, ErrUnknownPack)
}

func TestRemountDropsCache(t *testing.T) {
	s, err := New(Options{}, nil)
	require.NoError(t, err)
	s.Mount("ui", fstest.MapFS{"label.txt": {Data: []byte("old")}})
	_, err = s.Load("ASSET:ui/label.txt")
	require.NoError(t, err)

	s.Mount("ui", fstest.MapFS{"label.txt": {Data: []byte("new")}})
	raw, err := s.Load("ASSET:ui/label.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(raw))
}

func TestDirectoryPacks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "n.txt"), []byte("7"), 0o644))

	s, err := New(Options{Packs: map[string]string{"disk": dir}}, nil)
	require.NoError(t, err)

	n, err := engine.LoadAsset(s, "ASSET:disk/n.txt", func(b []byte) (string, error) { return string(b), nil })
	require.NoError(t, err)
	assert.Equal(t, "7", n)

	_, err = New(Options{Packs: map[string]string{"gone": filepath.Join(dir, "nope")}}, nil)
	assert.Error(t, err)
}
