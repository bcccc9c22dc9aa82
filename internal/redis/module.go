package redis

import (
	"context"

	"github.com/railzwaylabs/riskscore/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("redis",
	fx.Provide(NewClient),
	fx.Provide(NewFeatureCache),
)

// NewClient returns nil when the cache is disabled.
func NewClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		log.Info("redis feature cache disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}
