package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loc-portal/internal/domain"
	"loc-portal/internal/service"
	"loc-portal/pkg/redis"

	"go.uber.org/zap"
)

// RedisStore keeps each scope's record in a single Redis key
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisStore creates a Redis-backed session store. The TTL is refreshed on every write.
func NewRedisStore(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = redis.TTLSessionRecord
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisStore{client: client, ttl: ttl, log: log}
}

func (s *RedisStore) Get(ctx context.Context, scope string) (*domain.UserRecord, error) {
	raw, err := s.client.Get(ctx, s.client.KeyBuilder.KeySessionRecord(scope))
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session record: %w", err)
	}

	var record domain.UserRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		s.log.Warn("Undecodable session record", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidRecord, err)
	}
	return &record, nil
}

func (s *RedisStore) Set(ctx context.Context, scope string, record *domain.UserRecord) error {
	if record == nil {
		return s.Delete(ctx, scope)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}

	if err := s.client.Set(ctx, s.client.KeyBuilder.KeySessionRecord(scope), data, s.ttl); err != nil {
		return fmt.Errorf("write session record: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, scope string) error {
	if err := s.client.Delete(ctx, s.client.KeyBuilder.KeySessionRecord(scope)); err != nil {
		return fmt.Errorf("delete session record: %w", err)
	}
	return nil
}
