package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/railzwaylabs/riskscore/internal/config"
	featuredomain "github.com/railzwaylabs/riskscore/internal/feature/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const featureCacheKey = "riskscore:features:latest"

// FeatureCache stores the whole feature table as one JSON value.
type FeatureCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewFeatureCache returns a nil Cache when there is no client, so consumers
// can check for a disabled cache with a plain nil comparison.
func NewFeatureCache(client *redis.Client, cfg config.Config, log *zap.Logger) featuredomain.Cache {
	if client == nil {
		return nil
	}
	return &FeatureCache{
		client: client,
		ttl:    cfg.Redis.FeatureTTL,
		log:    log.Named("redis.feature_cache"),
	}
}

func (c *FeatureCache) Load(ctx context.Context) ([]featuredomain.CustomerFeatures, bool, error) {
	raw, err := c.client.Get(ctx, featureCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rows []featuredomain.CustomerFeatures
	if err := json.Unmarshal(raw, &rows); err != nil {
		// A payload from an older layout is treated as a miss.
		c.log.Warn("discarding undecodable feature cache entry", zap.Error(err))
		return nil, false, nil
	}
	return rows, true, nil
}

func (c *FeatureCache) Store(ctx context.Context, rows []featuredomain.CustomerFeatures) error {
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, featureCacheKey, raw, c.ttl).Err()
}

func (c *FeatureCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, featureCacheKey).Err()
}
