package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// incrementScript bumps the counter and starts the window expiry on the
// first hit, returning the count and the remaining TTL in milliseconds.
var incrementScript = redis.NewScript(`
local count = redis.call('INCRBY', KEYS[1], ARGV[1])
if count == tonumber(ARGV[1]) then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
	ttl = tonumber(ARGV[2])
end
return {count, ttl}
`)

// RedisStore keeps fixed-window counters in Redis so every instance shares
// them.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	if client == nil {
		panic("ratelimit: redis client is required")
	}
	return &RedisStore{client: client}
}

// IncrementAndGet implements Store.
func (s *RedisStore) IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (int64, time.Duration, error) {
	vals, err := incrementScript.Run(ctx, s.client, []string{redisKeyPrefix + key}, incr, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, errors.Join(ErrStoreUnavailable, err)
	}
	if len(vals) != 2 {
		return 0, 0, errors.Join(ErrStoreUnavailable, errors.New("unexpected script reply"))
	}
	return vals[0], time.Duration(vals[1]) * time.Millisecond, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
