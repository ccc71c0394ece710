package session

import (
	"context"
	"testing"
	"time"

	"loc-portal/internal/domain"
	"loc-portal/internal/service"
	"loc-portal/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleRecord() *domain.UserRecord {
	return &domain.UserRecord{
		FirstName:        "John",
		LastName:         "Doe",
		Email:            "john@loc.dev",
		Role:             domain.RoleParticipant,
		RegistrationDate: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		ParticipantID:    "LOC-1234",
		Payment: &domain.PaymentInfo{
			Status:   domain.PaymentUnpaid,
			Amount:   50,
			Currency: "USD",
			DueDate:  time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC),
		},
	}
}

func setupRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client, time.Hour, zap.NewNop())
}

// Both implementations must satisfy the same contract.
func stores(t *testing.T) map[string]service.SessionStore {
	_, rs := setupRedisStore(t)
	return map[string]service.SessionStore{
		"redis":  rs,
		"memory": NewMemoryStore(time.Hour),
	}
}

func TestStore_Contract(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := store.Get(ctx, "scope-a")
			require.NoError(t, err)
			assert.Nil(t, got, "absent record reads as nil")

			require.NoError(t, store.Set(ctx, "scope-a", sampleRecord()))

			got, err = store.Get(ctx, "scope-a")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, sampleRecord(), got)

			other, err := store.Get(ctx, "scope-b")
			require.NoError(t, err)
			assert.Nil(t, other, "scopes are isolated")

			updated := sampleRecord()
			updated.FirstName = "Jane"
			require.NoError(t, store.Set(ctx, "scope-a", updated))
			got, err = store.Get(ctx, "scope-a")
			require.NoError(t, err)
			assert.Equal(t, "Jane", got.FirstName)

			require.NoError(t, store.Delete(ctx, "scope-a"))
			got, err = store.Get(ctx, "scope-a")
			require.NoError(t, err)
			assert.Nil(t, got)

			assert.NoError(t, store.Delete(ctx, "scope-a"), "deleting twice is fine")
		})
	}
}

func TestStore_SetNilDeletes(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, "s", sampleRecord()))
			require.NoError(t, store.Set(ctx, "s", nil))

			got, err := store.Get(ctx, "s")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestRedisStore_KeyAndTTL(t *testing.T) {
	mr, store := setupRedisStore(t)

	require.NoError(t, store.Set(context.Background(), "abc", sampleRecord()))

	key := "test:session:abc:locUser"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(2 * time.Hour)
	got, err := store.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_CorruptBlob(t *testing.T) {
	mr, store := setupRedisStore(t)
	require.NoError(t, mr.Set("test:session:abc:locUser", "{not json"))

	got, err := store.Get(context.Background(), "abc")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, service.ErrInvalidRecord)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, store := setupRedisStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), "abc")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrInvalidRecord)

	assert.Error(t, store.Set(context.Background(), "abc", sampleRecord()))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(context.Background(), "s", sampleRecord()))
	assert.Equal(t, 1, store.Len())

	now = now.Add(2 * time.Minute)
	got, err := store.Get(context.Background(), "s")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_SetSweepsAbandonedScopes(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "abandoned-1", sampleRecord()))
	require.NoError(t, store.Set(ctx, "abandoned-2", sampleRecord()))
	assert.Equal(t, 2, store.Len())

	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Set(ctx, "active", sampleRecord()))
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, "active")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestMemoryStore_NoExpiryWithoutTTL(t *testing.T) {
	store := NewMemoryStore(0)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", sampleRecord()))
	now = now.Add(24 * time.Hour)
	require.NoError(t, store.Set(ctx, "b", sampleRecord()))
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "s", sampleRecord()))

	first, err := store.Get(ctx, "s")
	require.NoError(t, err)
	first.Payment.Status = domain.PaymentPaid

	second, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentUnpaid, second.Payment.Status)
}
