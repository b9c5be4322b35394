package injector

import (
	"context"
	"errors"

	"github.com/google/wire"

	"github.com/zeusync/zeuscore/internal/components"
	"github.com/zeusync/zeuscore/internal/config"
	"github.com/zeusync/zeuscore/internal/core/engine"
	"github.com/zeusync/zeuscore/internal/core/entity"
	"github.com/zeusync/zeuscore/internal/core/events/bus"
	"github.com/zeusync/zeuscore/internal/core/observability/log"
	"github.com/zeusync/zeuscore/internal/core/supervisor"
	"github.com/zeusync/zeuscore/internal/server"
	"github.com/zeusync/zeuscore/internal/services/assets"
	"github.com/zeusync/zeuscore/internal/services/input"
	"github.com/zeusync/zeuscore/internal/services/render"
)

// ProviderSet builds an Engine from a *config.Config
var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideAssets,
	ProvideRenderer,
	ProvideInput,
	ProvideServices,
	ProvideBus,
	ProvideSystem,
	ProvideRegistry,
	ProvideMonitor,
	wire.Struct(new(Engine), "*"),
)

// Engine is the assembled runtime
type Engine struct {
	Config   *config.Config
	Log      *log.Logger
	Assets   *assets.Store
	Render   *render.Headless
	Input    *input.Cursor
	Services *engine.Services
	Bus      bus.EventBus
	System   *supervisor.System
	Registry *entity.Registry
	// Monitor is nil unless enabled in the config
	Monitor *server.Monitor
}

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	return log.New(cfg.LogOptions())
}

func ProvideAssets(cfg *config.Config, logger log.Log) (*assets.Store, error) {
	return assets.New(cfg.AssetOptions(), logger)
}

func ProvideRenderer(logger log.Log) *render.Headless {
	return render.NewHeadless(logger)
}

func ProvideInput() *input.Cursor {
	return input.NewCursor(input.DefaultWindow)
}

func ProvideServices(logger log.Log, store *assets.Store, r *render.Headless, in *input.Cursor) *engine.Services {
	return &engine.Services{
		Render: r,
		Assets: store,
		Input:  in,
		Log:    logger,
	}
}

func ProvideBus(logger log.Log) bus.EventBus {
	b := bus.New()
	b.AddObserver(bus.LogObserver{Log: logger.Named("bus")})
	return b
}

func ProvideSystem(cfg *config.Config, services *engine.Services, notices bus.EventBus) *supervisor.System {
	return supervisor.New(supervisor.Options{Entity: cfg.EntityOptions()}, services, notices)
}

func ProvideRegistry() (*entity.Registry, error) {
	reg := entity.NewRegistry()
	if err := components.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func ProvideMonitor(cfg *config.Config, sys *supervisor.System, notices bus.EventBus, logger log.Log) (*server.Monitor, error) {
	if !cfg.Monitor.Enabled {
		return nil, nil
	}
	return server.New(cfg.MonitorOptions(), sys, notices, logger)
}

// Close releases what the engine holds outside the supervisor: the monitor
// and the log sink
func (e *Engine) Close(ctx context.Context) error {
	var errs []error
	if e.Monitor != nil {
		errs = append(errs, e.Monitor.Close(ctx))
	}
	if e.Log != nil {
		// stderr cannot be synced on most platforms; ignore that failure
		_ = e.Log.Sync()
	}
	return errors.Join(errs...)
}
