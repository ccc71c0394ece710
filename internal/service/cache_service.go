package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loc-portal/internal/domain"
	"loc-portal/pkg/redis"

	"go.uber.org/zap"
)

// CacheService provides cache-aside helpers with error handling. A nil
// Redis client turns every lookup into a miss.
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// GetStatsWithCache retrieves admin counters with the cache-aside pattern
func (c *CacheService) GetStatsWithCache(ctx context.Context, dbFallback func(ctx context.Context) (*domain.ParticipantStats, error)) (*domain.ParticipantStats, error) {
	if c.redis == nil {
		return dbFallback(ctx)
	}

	cacheKey := c.redis.KeyBuilder.KeyAdminStats()

	// Try cache first
	cachedData, err := c.redis.Get(ctx, cacheKey)
	if err == nil && cachedData != "" {
		var stats domain.ParticipantStats
		if marshalErr := json.Unmarshal([]byte(cachedData), &stats); marshalErr == nil {
			c.logger.Debug("Admin stats cache hit")
			return &stats, nil
		} else {
			// Log cache corruption but continue to database
			c.logger.Warn("Admin stats cache corrupted, falling back to database", zap.Error(marshalErr))
		}
	} else if err != nil && !redis.IsNil(err) {
		// Log cache error but continue to database
		c.logger.Warn("Admin stats cache error, falling back to database", zap.Error(err))
	}

	// Cache miss or error - get from database
	c.logger.Debug("Admin stats cache miss")
	stats, err := dbFallback(ctx)
	if err != nil {
		return nil, fmt.Errorf("database fallback failed: %w", err)
	}

	if stats != nil {
		c.cacheStats(ctx, stats)
	}

	return stats, nil
}

// InvalidateStats drops the cached admin counters
func (c *CacheService) InvalidateStats(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}

	if err := c.redis.Delete(ctx, c.redis.KeyBuilder.KeyAdminStats()); err != nil {
		c.logger.Error("Failed to invalidate admin stats cache", zap.Error(err))
		return err
	}

	c.logger.Debug("Admin stats cache invalidated")
	return nil
}

// HealthCheck performs a health check on the cache system
func (c *CacheService) HealthCheck(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}

	start := time.Now()
	err := c.redis.Health(ctx)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Cache health check failed",
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Cache health check passed", zap.Duration("duration", duration))
	return nil
}

func (c *CacheService) cacheStats(ctx context.Context, stats *domain.ParticipantStats) {
	data, err := json.Marshal(stats)
	if err != nil {
		c.logger.Error("Failed to marshal admin stats for caching", zap.Error(err))
		return
	}

	if err := c.redis.Set(ctx, c.redis.KeyBuilder.KeyAdminStats(), string(data), redis.TTLAdminStats); err != nil {
		c.logger.Error("Failed to cache admin stats", zap.Error(err))
	} else {
		c.logger.Debug("Admin stats cached successfully")
	}
}
