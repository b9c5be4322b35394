//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/zeuscore/internal/config"
)

func NewEngine(cfg *config.Config) (*Engine, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
