package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "simbooking/internal/errors"
)

// RedisRateLimiter is a fixed-window limiter shared by every instance that
// talks to the same Redis.
type RedisRateLimiter struct {
	rdb    redis.Scripter
	limit  int
	window time.Duration
	prefix string
}

var redisFixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

func NewRedisRateLimiter(rdb redis.Scripter, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisRateLimiter{rdb: rdb, limit: limit, window: window, prefix: prefix}
}

// Middleware lets requests through when Redis fails and failOpen is set,
// otherwise it answers 503.
func (rl *RedisRateLimiter) Middleware(log *zap.Logger, failOpen bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rl.prefix + ":" + clientKey(r)
			count, err := rl.incr(r.Context(), key)
			if err != nil {
				log.Warn("redis rate limiter error", zap.Error(err))
				if failOpen {
					next.ServeHTTP(w, r)
					return
				}
				apperrors.WriteError(w, apperrors.NewHTTPError(http.StatusServiceUnavailable,
					apperrors.CodeUnavailable, "Servizio temporaneamente non disponibile"))
				return
			}
			if count > int64(rl.limit) {
				apperrors.WriteError(w, apperrors.ErrTooManyRequests())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RedisRateLimiter) incr(ctx context.Context, key string) (int64, error) {
	res, err := redisFixedWindowScript.Run(ctx, rl.rdb, []string{key}, rl.window.Milliseconds()).Result()
	if err != nil {
		return 0, err
	}
	switch v := res.(type) {
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected redis script result type %T", res)
	}
}

// NewRateLimitMiddleware uses Redis when redisURL is set and the in-process
// limiter otherwise. The returned close func releases the Redis client.
func NewRateLimitMiddleware(redisURL string, limit int, log *zap.Logger) (Middleware, func() error, error) {
	if redisURL == "" {
		log.Info("rate limiting in memory")
		return NewRateLimiter(limit, time.Minute).Middleware(), func() error { return nil }, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	log.Info("rate limiting via redis", zap.String("addr", opts.Addr))
	return NewRedisRateLimiter(rdb, limit, time.Minute, "simbooking:rl").Middleware(log, true), rdb.Close, nil
}
