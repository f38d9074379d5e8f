package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key namespaces. Everything this service writes to Redis lives under
// tv:auth: so the auth state can be flushed without touching asynq.
const (
	keyOTPCode     = "tv:auth:otp:code:"
	keyOTPAttempts = "tv:auth:otp:attempts:"
	keyOTPCooldown = "tv:auth:otp:cooldown:"
	keyRefresh     = "tv:auth:refresh:"
)

type redisStore struct {
	client *redis.Client
}

func newRedisStore(client *redis.Client) *redisStore {
	return &redisStore{client: client}
}

func (r *redisStore) storeOTPHash(ctx context.Context, email, hash string, ttl time.Duration) error {
	pipe := r.client.Pipeline()
	pipe.Set(ctx, keyOTPCode+email, hash, ttl)
	pipe.Del(ctx, keyOTPAttempts+email)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisStore) getOTPHash(ctx context.Context, email string) (string, error) {
	return r.client.Get(ctx, keyOTPCode+email).Result()
}

func (r *redisStore) deleteOTP(ctx context.Context, email string) error {
	return r.client.Del(ctx, keyOTPCode+email, keyOTPAttempts+email).Err()
}

func (r *redisStore) incrOTPAttempts(ctx context.Context, email string, ttl time.Duration) (int64, error) {
	pipe := r.client.Pipeline()
	incrCmd := pipe.Incr(ctx, keyOTPAttempts+email)
	pipe.ExpireNX(ctx, keyOTPAttempts+email, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incrCmd.Val(), nil
}

func (r *redisStore) setCooldown(ctx context.Context, email string, ttl time.Duration) error {
	return r.client.Set(ctx, keyOTPCooldown+email, "", ttl).Err()
}

func (r *redisStore) isOnCooldown(ctx context.Context, email string) (bool, error) {
	n, err := r.client.Exists(ctx, keyOTPCooldown+email).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Refresh tokens are stored hash -> user ID so a leaked dump of Redis
// never contains a usable token.

func (r *redisStore) storeRefreshToken(ctx context.Context, hash, userID string, ttl time.Duration) error {
	return r.client.Set(ctx, keyRefresh+hash, userID, ttl).Err()
}

func (r *redisStore) getRefreshToken(ctx context.Context, hash string) (string, error) {
	return r.client.Get(ctx, keyRefresh+hash).Result()
}

func (r *redisStore) deleteRefreshToken(ctx context.Context, hash string) error {
	return r.client.Del(ctx, keyRefresh+hash).Err()
}
