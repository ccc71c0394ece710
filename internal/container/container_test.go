package container

import (
	"context"
	"testing"
	"time"

	"loc-portal/internal/config"
	"loc-portal/internal/service/session"
	"loc-portal/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *config.Config {
	return &config.Config{
		Environment:    "test",
		SessionTTL:     time.Hour,
		JWTIssuer:      "loc-portal",
		FeeAmount:      50,
		FeeCurrency:    "USD",
		PaymentDueDays: 7,
		EventName:      "League of Coders 2025",
		EventStartsAt:  time.Date(2025, 4, 19, 9, 0, 0, 0, time.UTC),
		EventEndsAt:    time.Date(2025, 4, 20, 18, 0, 0, 0, time.UTC),
	}
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name        string
		mutate      func(cfg *config.Config)
		expectRedis bool
		expectDB    bool
	}{
		{
			name:        "Container without Redis or database",
			mutate:      func(cfg *config.Config) {},
			expectRedis: false,
		},
		{
			name:        "Container with Redis configured",
			mutate:      func(cfg *config.Config) { cfg.RedisURL = "redis://" + mr.Addr() },
			expectRedis: true,
		},
		{
			name:        "Container with invalid Redis URL",
			mutate:      func(cfg *config.Config) { cfg.RedisURL = "invalid://redis-url" },
			expectRedis: false, // Redis client initialization fails but container creation succeeds
		},
		{
			name:     "Container with invalid database URL",
			mutate:   func(cfg *config.Config) { cfg.DatabaseURL = "postgres://%zz" },
			expectDB: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(cfg)

			c, err := New(context.Background(), cfg, logger.NewNop())
			require.NoError(t, err)
			t.Cleanup(c.Close)

			assert.Equal(t, tt.expectRedis, c.HasRedis())
			assert.Equal(t, tt.expectDB, c.GetDB() != nil)
			assert.NotNil(t, c.Services.State)
			assert.NotNil(t, c.Services.Tokens)
			assert.NotNil(t, c.Services.Contact)
			assert.NotNil(t, c.Policy)
			assert.NotNil(t, c.Cookies)
			assert.Nil(t, c.Services.Admin, "admin service needs a database")

			if tt.expectRedis {
				assert.IsType(t, &session.RedisStore{}, c.Services.Sessions)
			} else {
				assert.IsType(t, &session.MemoryStore{}, c.Services.Sessions)
			}
		})
	}
}

func TestNew_ExtraPublicRoutes(t *testing.T) {
	cfg := baseConfig()
	cfg.PublicRoutes = []string{"/faq", "/blog*"}

	c, err := New(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.Policy.Evaluate("/faq", nil).Allowed)
	assert.True(t, c.Policy.Evaluate("/blog/launch", nil).Allowed)
}

func TestSchedule(t *testing.T) {
	c, err := New(context.Background(), baseConfig(), logger.NewNop())
	require.NoError(t, err)
	defer c.Close()

	s := c.Schedule()
	assert.Equal(t, "League of Coders 2025", s.Name)
	assert.True(t, s.EndsAt.After(s.StartsAt))
}

func TestSecretOrRandom(t *testing.T) {
	log := logger.NewNop()
	assert.Equal(t, "fixed", secretOrRandom("fixed", "X", log))

	a := secretOrRandom("", "X", log)
	b := secretOrRandom("", "X", log)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
