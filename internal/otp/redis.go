package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/onehope/resources-api/internal/domain"
)

const redisKeyPrefix = "otp:"

// redeemScript atomically compares and consumes a code. A wrong guess bumps
// the attempt counter in the same round trip, so concurrent guesses across
// instances cannot exceed the cap.
//
// Returns 1 on success, -1 when no code is pending, -2 when the attempt cap
// was just exhausted, 0 on a plain mismatch.
var redeemScript = redis.NewScript(`
local code = redis.call('HGET', KEYS[1], 'code')
if not code then
  return -1
end
if code == ARGV[1] then
  redis.call('DEL', KEYS[1])
  return 1
end
local n = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
if n >= tonumber(ARGV[2]) then
  redis.call('DEL', KEYS[1])
  return -2
end
return 0
`)

// RedisStore is the multi-instance backend. Each address maps to one hash
// with a TTL; Redis expiry replaces the in-process sweep, and the Lua script
// gives the same first-successful-redeem-wins guarantee as the mutex map.
type RedisStore struct {
	client      *redis.Client
	ttl         time.Duration
	maxAttempts int
}

func NewRedisStore(client *redis.Client, ttl time.Duration, maxAttempts int) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, maxAttempts: maxAttempts}
}

func (s *RedisStore) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	key := redisKeyPrefix + domain.NormalizeEmail(email)

	// DEL + HSET + EXPIRE in one transaction so a reissue atomically retires
	// the previous code and resets the attempt counter.
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, "code", code, "attempts", 0)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("store code: %w: %v", domain.ErrUnavailable, err)
	}
	return code, nil
}

func (s *RedisStore) Redeem(ctx context.Context, email, code string) error {
	key := redisKeyPrefix + domain.NormalizeEmail(email)
	res, err := redeemScript.Run(ctx, s.client, []string{key}, code, s.maxAttempts).Int()
	if err != nil {
		return fmt.Errorf("redeem code: %w: %v", domain.ErrUnavailable, err)
	}
	if res == 1 {
		return nil
	}
	return domain.ErrInvalidCredential
}

func (s *RedisStore) Invalidate(ctx context.Context, email string) error {
	key := redisKeyPrefix + domain.NormalizeEmail(email)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("invalidate code: %w: %v", domain.ErrUnavailable, err)
	}
	return nil
}
