package demographic

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealscout/internal/model"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_RoundTrip(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "phoenix, az")
	require.NoError(t, err)
	assert.False(t, ok)

	in := &model.DemographicSignal{Location: "Phoenix, AZ", Population: 1_600_000, MedianIncome: 72_000}
	require.NoError(t, store.Set(ctx, "phoenix, az", in))

	got, ok, err := store.Get(ctx, "phoenix, az")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in.Population, got.Population)
	assert.Equal(t, "Phoenix, AZ", got.Location)

	mr.FastForward(2 * time.Hour)
	_, ok, err = store.Get(ctx, "phoenix, az")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, 0)

	require.NoError(t, mr.Set(redisKey("tampa, fl"), "not json"))

	_, _, err := store.Get(context.Background(), "tampa, fl")
	assert.Error(t, err)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, 0)
	mr.Close()

	_, _, err := store.Get(context.Background(), "tampa, fl")
	assert.Error(t, err)
}

func TestCache_WithRedisStore(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	_, err := NewCache(&countingProvider{}, WithStore(store)).GetSignal(ctx, "Tempe, AZ")
	require.NoError(t, err)

	p := &countingProvider{}
	sig, err := NewCache(p, WithStore(store)).GetSignal(ctx, "TEMPE, AZ")
	require.NoError(t, err)
	assert.Equal(t, int32(0), p.calls.Load())
	assert.InDelta(t, 72_000, sig.MedianIncome, 0.001)
}

func TestCache_RedisDownStillServes(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, time.Hour)
	mr.Close()

	p := &countingProvider{}
	sig, err := NewCache(p, WithStore(store)).GetSignal(context.Background(), "Chandler, AZ")
	require.NoError(t, err)
	assert.False(t, sig.Synthetic)
	assert.Equal(t, int32(1), p.calls.Load())
}
