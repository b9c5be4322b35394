// Package assets resolves ASSET:<pack>/<path> references against mounted
// file systems and caches what it reads.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/zeusync/zeuscore/internal/core/engine"
	"github.com/zeusync/zeuscore/internal/core/observability/log"
)

var _ engine.Assets = (*Store)(nil)

type Options struct {
	// Packs maps pack names to directories mounted at construction
	Packs       map[string]string
	CacheShards int
	// NoCache disables caching, mostly for hot-reloading during development
	NoCache bool
}

type Store struct {
	mu    sync.RWMutex
	packs map[string]fs.FS
	cache *cache
	log   log.Log
	opts  Options
}

func New(opts Options, logger log.Log) (*Store, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Store{
		packs: make(map[string]fs.FS),
		cache: newCache(opts.CacheShards),
		log:   logger.With(log.String("component", "assets")),
		opts:  opts,
	}
	for pack, dir := range opts.Packs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("assets: pack %s: %w", pack, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("assets: pack %s: %s is not a directory", pack, dir)
		}
		s.Mount(pack, os.DirFS(dir))
	}
	return s, nil
}

// Mount registers fsys under pack, replacing and uncaching any earlier mount
func (s *Store) Mount(pack string, fsys fs.FS) {
	s.mu.Lock()
	_, replaced := s.packs[pack]
	s.packs[pack] = fsys
	s.mu.Unlock()

	if replaced {
		s.cache.drop(Scheme + pack + "/")
	}
	s.log.Debug("pack mounted", log.String("pack", pack), log.Bool("replaced", replaced))
}

// Load returns the asset's bytes. The slice is the caller's to modify.
func (s *Store) Load(path string) ([]byte, error) {
	pack, rel, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	if !s.opts.NoCache {
		if raw, ok := s.cache.get(path); ok {
			return bytes.Clone(raw), nil
		}
	}

	s.mu.RLock()
	fsys, ok := s.packs[pack]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPack, pack)
	}

	raw, err := fs.ReadFile(fsys, rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
		}
		return nil, fmt.Errorf("assets: read %s: %w", path, err)
	}

	if !s.opts.NoCache {
		s.cache.put(path, raw)
	}
	s.log.Debug("asset loaded", log.String("path", path), log.Int("bytes", len(raw)))
	return bytes.Clone(raw), nil
}

type Stats struct {
	Packs  int    `json:"packs"`
	Cached int    `json:"cached"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	packs := len(s.packs)
	s.mu.RUnlock()
	return Stats{
		Packs:  packs,
		Cached: s.cache.len(),
		Hits:   s.cache.hits.Load(),
		Misses: s.cache.misses.Load(),
	}
}
