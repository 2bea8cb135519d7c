package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript bumps the counter and starts the window expiry on the first hit
// so INCR and PEXPIRE land atomically.
var incrScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// RedisStore shares counters across processes. Expiry is left to Redis.
// When Redis is unreachable it falls back to an in-process store.
type RedisStore struct {
	client   redis.Scripter
	fallback *MemoryStore
}

func NewRedisStore(client redis.Scripter) *RedisStore {
	return &RedisStore{client: client, fallback: NewMemoryStore()}
}

func (s *RedisStore) Increment(ctx context.Context, key string, win time.Duration, now time.Time) (int, time.Time, error) {
	vals, err := incrScript.Run(ctx, s.client, []string{key}, win.Milliseconds()).Int64Slice()
	if err != nil || len(vals) != 2 {
		slog.Warn("redis rate limit unavailable, using memory", "error", err, "key", key)
		return s.fallback.Increment(ctx, key, win, now)
	}

	ttl := time.Duration(vals[1]) * time.Millisecond
	if ttl < 0 {
		ttl = win
	}
	return int(vals[0]), now.Add(ttl), nil
}

// Sweep collects the fallback store; Redis keys expire on their own.
func (s *RedisStore) Sweep(now time.Time) int {
	return s.fallback.Sweep(now)
}
