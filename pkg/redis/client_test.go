package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	mr := miniredis.RunT(t)

	client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name        string
		url         string
		expectError bool
	}{
		{
			name:        "Valid Redis URL",
			url:         "redis://" + mr.Addr() + "/0",
			expectError: false,
		},
		{
			name:        "Invalid URL",
			url:         "invalid://url",
			expectError: true,
		},
		{
			name:        "Empty URL",
			url:         "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, "test", nil)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, client)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, client)
			assert.NotNil(t, client.KeyBuilder)
			assert.NoError(t, client.Close())
		})
	}
}

func TestClient_GetSet(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	tests := []struct {
		name          string
		key           string
		setValue      string
		expectedValue string
		expectMissing bool
	}{
		{
			name:          "Get existing key",
			key:           "test:key1",
			setValue:      "value1",
			expectedValue: "value1",
		},
		{
			name:          "Get non-existing key",
			key:           "test:nonexistent",
			expectMissing: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setValue != "" {
				require.NoError(t, client.Set(ctx, tt.key, tt.setValue, time.Minute))
				assert.True(t, mr.Exists(tt.key))
			}

			value, err := client.Get(ctx, tt.key)

			if tt.expectMissing {
				require.Error(t, err)
				assert.True(t, IsNil(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedValue, value)
		})
	}
}

func TestClient_SetAppliesTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "ttl:key", "v", 10*time.Second))
	assert.Equal(t, 10*time.Second, mr.TTL("ttl:key"))

	mr.FastForward(11 * time.Second)
	_, err := client.Get(ctx, "ttl:key")
	assert.True(t, IsNil(err))
}

func TestClient_Delete(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("a", "1"))
	require.NoError(t, mr.Set("b", "2"))
	require.NoError(t, mr.Set("c", "3"))

	require.NoError(t, client.Delete(ctx, "a", "b"))

	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))
	assert.True(t, mr.Exists("c"))
}

func TestClient_IncrAndExpire(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		v, err := client.Incr(ctx, "counter")
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}

	require.NoError(t, client.Expire(ctx, "counter", time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("counter"))
}

func TestClient_Health(t *testing.T) {
	mr, client := setupTestRedis(t)

	assert.NoError(t, client.Health(context.Background()))

	mr.Close()
	assert.Error(t, client.Health(context.Background()))
}

func TestPrefixForLog(t *testing.T) {
	assert.Equal(t, "short:key", prefixForLog("short:key"))

	long := "prod:session:0f8fad5b-d9cb-469f-a165-70867728950e:locUser"
	got := prefixForLog(long)
	assert.Equal(t, long[:24]+"…", got)
}
