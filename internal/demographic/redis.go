package demographic

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sells-group/dealscout/internal/model"
)

const redisKeyPrefix = "dealscout:demographic:"

// RedisStore shares live demographic signals across processes.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store on an existing client. A zero TTL keeps
// entries until evicted by Redis.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%s%x", redisKeyPrefix, h)
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (*model.DemographicSignal, bool, error) {
	data, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "demographic: redis get")
	}

	var sig model.DemographicSignal
	if err := json.Unmarshal(data, &sig); err != nil {
		return nil, false, eris.Wrap(err, "demographic: decode cached signal")
	}
	return &sig, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, sig *model.DemographicSignal) error {
	data, err := json.Marshal(sig)
	if err != nil {
		return eris.Wrap(err, "demographic: encode signal")
	}
	if err := s.client.Set(ctx, redisKey(key), data, s.ttl).Err(); err != nil {
		return eris.Wrap(err, "demographic: redis set")
	}
	return nil
}
