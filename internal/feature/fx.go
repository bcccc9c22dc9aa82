package feature

import (
	"github.com/railzwaylabs/riskscore/internal/feature/repository"
	"github.com/railzwaylabs/riskscore/internal/feature/service"
	"go.uber.org/fx"
)

var Module = fx.Module("feature.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
