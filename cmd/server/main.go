package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/profile"

	"github.com/zeusync/zeuscore/internal/config"
	"github.com/zeusync/zeuscore/internal/core/observability/log"
	"github.com/zeusync/zeuscore/internal/core/supervisor"
	"github.com/zeusync/zeuscore/internal/injector"
	"github.com/zeusync/zeuscore/internal/scene"
)

func main() {
	configPath := flag.String("config", "", "Path to a .yaml or .toml config file (overrides $"+config.EnvPath+")")
	scenePath := flag.String("scene", "", "Scene file to load (overrides the config)")
	profileMode := flag.String("profile", "", "Write a cpu or mem profile to the working directory")
	flag.Parse()

	if err := run(*configPath, *scenePath, *profileMode); err != nil {
		fmt.Fprintln(os.Stderr, "zeuscore:", err)
		os.Exit(1)
	}
}

func run(configPath, scenePath, profileMode string) error {
	switch profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", profileMode)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if scenePath != "" {
		cfg.Scene = scenePath
	}

	eng, err := injector.NewEngine(cfg)
	if err != nil {
		return fmt.Errorf("assemble engine: %w", err)
	}
	logger := eng.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := make(chan error, 1)
	go func() { loop <- eng.System.Run(ctx) }()
	for !eng.System.Running() {
		select {
		case err = <-loop:
			return fmt.Errorf("command loop: %w", err)
		case <-time.After(time.Millisecond):
		}
	}

	if eng.Monitor != nil {
		if err = eng.Monitor.Start(ctx); err != nil {
			return errors.Join(fmt.Errorf("start monitor: %w", err), shutdown(eng, cfg.Scheduler.ShutdownTimeout))
		}
	}

	if cfg.Scene != "" {
		sc, err := scene.LoadFile(cfg.Scene)
		if err != nil {
			return errors.Join(err, shutdown(eng, cfg.Scheduler.ShutdownTimeout))
		}
		// component failures are logged and published; the scene still runs
		if _, err = sc.Instantiate(ctx, eng.System, eng.Registry, logger); err != nil {
			logger.Warn("scene loaded with errors", log.String("scene", cfg.Scene), log.Error(err))
		}
	}

	if err = eng.System.SetStatus(supervisor.StatusRunning); err != nil {
		return err
	}
	logger.Info("engine running", log.Int("entities", len(eng.System.Entities())))

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-loop:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("command loop exited", log.Error(err))
		}
	}

	return shutdown(eng, cfg.Scheduler.ShutdownTimeout)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv(config.EnvPath)
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func shutdown(eng *injector.Engine, timeout time.Duration) error {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := eng.System.Shutdown(ctx)
	st := eng.System.Stats()
	eng.Log.Info("engine stopped",
		log.Uint64("spawned", st.Spawned),
		log.Uint64("terminated", st.Terminated),
	)
	return errors.Join(err, eng.Close(ctx))
}
