package invoice

import (
	"github.com/railzwaylabs/riskscore/internal/invoice/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.repository",
	fx.Provide(repository.Provide),
)
