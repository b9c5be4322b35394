package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/zeuscore/internal/core/entity"
	"github.com/zeusync/zeuscore/internal/core/observability/log"
	"github.com/zeusync/zeuscore/internal/server"
	"github.com/zeusync/zeuscore/internal/services/assets"
)

// EnvPath names the environment variable that overrides the config path
const EnvPath = "ZEUSCORE_CONFIG"

var (
	ErrUnknownFormat = errors.New("config: unknown file format")
	ErrInvalid       = errors.New("config: invalid value")
)

type Config struct {
	Log       LogConfig       `yaml:"log" toml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler" toml:"scheduler"`
	Entity    EntityConfig    `yaml:"entity" toml:"entity"`
	Assets    AssetsConfig    `yaml:"assets" toml:"assets"`
	Monitor   MonitorConfig   `yaml:"monitor" toml:"monitor"`
	// Scene is the scene file loaded at boot, empty for none
	Scene string `yaml:"scene" toml:"scene"`
}

type LogConfig struct {
	Level       string   `yaml:"level" toml:"level"`
	Encoding    string   `yaml:"encoding" toml:"encoding"` // "json" or "console"
	OutputPaths []string `yaml:"output_paths" toml:"output_paths"`
	Development bool     `yaml:"development" toml:"development"`
}

type SchedulerConfig struct {
	// DedicatedThreads locks every entity actor to its own OS thread
	DedicatedThreads bool          `yaml:"dedicated_threads" toml:"dedicated_threads"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

type EntityConfig struct {
	TargetFPS   float64 `yaml:"target_fps" toml:"target_fps"`
	MailboxSpin int     `yaml:"mailbox_spin" toml:"mailbox_spin"`
}

type AssetsConfig struct {
	// Packs maps pack names to directories; relative paths resolve against
	// the config file's directory
	Packs       map[string]string `yaml:"packs" toml:"packs"`
	CacheShards int               `yaml:"cache_shards" toml:"cache_shards"`
	NoCache     bool              `yaml:"no_cache" toml:"no_cache"`
}

type MonitorConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Addr    string `yaml:"addr" toml:"addr"`
	Token   string `yaml:"token" toml:"token"`
	// History is the number of notices replayed to new feed clients
	History int `yaml:"history" toml:"history"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:       "info",
			Encoding:    "console",
			OutputPaths: []string{"stderr"},
		},
		Scheduler: SchedulerConfig{
			DedicatedThreads: true,
			ShutdownTimeout:  10 * time.Second,
		},
		Entity: EntityConfig{
			TargetFPS:   60,
			MailboxSpin: 64,
		},
		Assets: AssetsConfig{
			CacheShards: 16,
		},
		Monitor: MonitorConfig{
			Addr:    "127.0.0.1:7070",
			History: 128,
		},
	}
}

// Load reads the file at path over the defaults. The format follows the
// extension: .yaml/.yml or .toml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("parse config %s: unknown key %s", path, undecoded[0])
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	cfg.resolve(filepath.Dir(path))
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) resolve(base string) {
	for pack, dir := range c.Assets.Packs {
		if dir != "" && !filepath.IsAbs(dir) {
			c.Assets.Packs[pack] = filepath.Join(base, dir)
		}
	}
	if c.Scene != "" && !filepath.IsAbs(c.Scene) {
		c.Scene = filepath.Join(base, c.Scene)
	}
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		invalid("log.level %q", c.Log.Level)
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		invalid("log.encoding %q", c.Log.Encoding)
	}
	if c.Entity.TargetFPS <= 0 {
		invalid("entity.target_fps must be positive, got %v", c.Entity.TargetFPS)
	}
	if c.Entity.MailboxSpin < 1 {
		invalid("entity.mailbox_spin must be at least 1, got %d", c.Entity.MailboxSpin)
	}
	if c.Assets.CacheShards < 0 {
		invalid("assets.cache_shards must not be negative, got %d", c.Assets.CacheShards)
	}
	for pack, dir := range c.Assets.Packs {
		if pack == "" || strings.ContainsAny(pack, ":/") {
			invalid("assets.packs: bad pack name %q", pack)
		}
		if dir == "" {
			invalid("assets.packs.%s: empty directory", pack)
		}
	}
	if c.Scheduler.ShutdownTimeout < 0 {
		invalid("scheduler.shutdown_timeout must not be negative")
	}
	if c.Monitor.History < 0 {
		invalid("monitor.history must not be negative, got %d", c.Monitor.History)
	}
	if c.Monitor.Enabled && c.Monitor.Addr == "" {
		invalid("monitor.addr is required when the monitor is enabled")
	}
	return errors.Join(errs...)
}

func (c *Config) LogOptions() log.Options {
	level, _ := log.ParseLevel(c.Log.Level)
	return log.Options{
		Level:       level,
		Encoding:    c.Log.Encoding,
		OutputPaths: c.Log.OutputPaths,
		Development: c.Log.Development,
	}
}

func (c *Config) EntityOptions() entity.Options {
	opts := entity.DefaultOptions()
	if c.Entity.TargetFPS > 0 {
		opts.TargetFrame = time.Duration(float64(time.Second) / c.Entity.TargetFPS)
	}
	if c.Entity.MailboxSpin > 0 {
		opts.MailboxSpin = c.Entity.MailboxSpin
	}
	opts.DedicatedThread = c.Scheduler.DedicatedThreads
	return opts
}

func (c *Config) AssetOptions() assets.Options {
	packs := make(map[string]string, len(c.Assets.Packs))
	for k, v := range c.Assets.Packs {
		packs[k] = v
	}
	return assets.Options{
		Packs:       packs,
		CacheShards: c.Assets.CacheShards,
		NoCache:     c.Assets.NoCache,
	}
}

func (c *Config) MonitorOptions() server.Options {
	return server.Options{
		Addr:    c.Monitor.Addr,
		Token:   c.Monitor.Token,
		History: c.Monitor.History,
	}
}
