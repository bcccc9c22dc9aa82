package observability

import (
	"strings"

	"github.com/railzwaylabs/riskscore/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Development environments get the
// human-readable console encoder, everything else emits JSON.
func NewLogger(cfg config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(strings.TrimSpace(cfg.Observability.LogLevel))
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return log.With(
		zap.String("service", cfg.AppName),
		zap.String("version", cfg.AppVersion),
	), nil
}
