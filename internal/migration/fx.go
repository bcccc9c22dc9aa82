package migration

import (
	"context"

	"github.com/railzwaylabs/riskscore/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		return Run(context.Background(), conn, cfg, log)
	}),
)
