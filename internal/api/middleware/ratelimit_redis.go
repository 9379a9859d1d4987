package middleware

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// allowScriptSrc increments the counter and gives it the window TTL whenever it has
// none, in one atomic step. A key can never be left counting without expiry.
const allowScriptSrc = `
local count = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`

var allowScript = redis.NewScript(allowScriptSrc)

// RedisStore is a LimitStore shared by every instance pointing at the same redis.
// Each client gets one counter key per window; the key expires with the window.
type RedisStore struct {
	client   *redis.Client
	scripter redis.Scripter
	prefix   string
	requests int
	window   time.Duration
}

// NewRedisStore connects to the redis server at url (redis://[:password@]host:port/db)
func NewRedisStore(ctx context.Context, url string, requests int, window time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Printf("[RATELIMIT] Using redis store at %s", opts.Addr)
	store := newRedisStore(rdb, requests, window)
	store.client = rdb
	return store, nil
}

func newRedisStore(scripter redis.Scripter, requests int, window time.Duration) *RedisStore {
	return &RedisStore{
		scripter: scripter,
		prefix:   "ratelimit:",
		requests: requests,
		window:   window,
	}
}

// Allow increments the client's counter for the current window
func (s *RedisStore) Allow(ctx context.Context, clientID string) (bool, error) {
	key := s.prefix + clientID

	count, err := allowScript.Run(ctx, s.scripter, []string{key}, s.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("redis rate limit script error for key '%s': %w", key, err)
	}

	return count <= int64(s.requests), nil
}

// Close releases the redis connection pool
func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
