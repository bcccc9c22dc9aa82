package model

import (
	"context"

	"github.com/railzwaylabs/riskscore/internal/model/domain"
	"github.com/railzwaylabs/riskscore/internal/model/repository"
	"github.com/railzwaylabs/riskscore/internal/model/service"
	"go.uber.org/fx"
)

var Module = fx.Module("model.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

// ServingModule loads the current bundle at startup. A missing or
// inconsistent bundle fails the application before it serves anything.
var ServingModule = fx.Module("model.serving",
	fx.Provide(LoadBundle),
)

func LoadBundle(svc domain.Service) (*domain.Bundle, error) {
	return svc.Load(context.Background())
}
