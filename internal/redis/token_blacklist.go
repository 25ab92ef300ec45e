package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"spur-go/internal/auth"
	"spur-go/internal/config"
)

const blacklistKeyPrefix = "spur:bl:jti:"

// NewClient connects to Redis and verifies the connection with a PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// redisTokenBlacklist implements auth.TokenBlacklist with one expiring key per jti.
type redisTokenBlacklist struct {
	client redis.Cmdable
}

// NewRedisTokenBlacklist creates a Redis-backed token blacklist.
func NewRedisTokenBlacklist(client redis.Cmdable) auth.TokenBlacklist {
	return &redisTokenBlacklist{client: client}
}

// Add revokes jti. The key expires together with the token, so the set never
// outgrows the tokens still in circulation.
func (r *redisTokenBlacklist) Add(ctx context.Context, jti string, tokenExpiry time.Time) error {
	ttl := time.Until(tokenExpiry)
	if ttl <= 0 {
		// Already expired; validation rejects it without our help.
		return nil
	}

	if err := r.client.Set(ctx, blacklistKeyPrefix+jti, "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("blacklisting jti %s: %w", jti, err)
	}
	return nil
}

func (r *redisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, blacklistKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("checking blacklist for jti %s: %w", jti, err)
	}
	return n > 0, nil
}
