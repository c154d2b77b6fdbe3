package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache accepts either a bare host:port or a redis:// URL.
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opts := &redis.Options{
		Addr:     url,
		Password: "",
		DB:       0,
	}
	if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}
	return &RedisCache{Client: redis.NewClient(opts), TTL: ttl}, nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.Client.Close()
}

/*
* cached ratings
 */

// CachedRating is a cache read. Generation must be handed back to SetRating
// so a value computed before an invalidation is never stored after it.
type CachedRating struct {
	Value      string
	Found      bool
	Generation int64
}

func (r *RedisCache) GetRating(ctx context.Context, key string) (CachedRating, error) {
	values, err := r.Client.MGet(ctx, key, MakeRatingGenerationKey(key)).Result()
	if err != nil {
		return CachedRating{}, err
	}

	var entry CachedRating
	if value, ok := values[0].(string); ok {
		entry.Value = value
		entry.Found = true
	}
	if gen, ok := values[1].(string); ok {
		entry.Generation, err = strconv.ParseInt(gen, 10, 64)
		if err != nil {
			return CachedRating{}, fmt.Errorf("malformed generation of %s: %w", key, err)
		}
	}
	return entry, nil
}

// SetRating stores value unless key was invalidated after generation was read.
// It reports whether the value was stored.
func (r *RedisCache) SetRating(ctx context.Context, key string, value string, generation int64) (bool, error) {
	res, err := setRatingScript.Run(ctx, r.Client,
		[]string{key, MakeRatingGenerationKey(key)},
		value, r.TTL.Milliseconds(), generation).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// InvalidateRatings drops the keys and bumps their generations.
func (r *RedisCache) InvalidateRatings(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		for _, key := range keys {
			genKey := MakeRatingGenerationKey(key)
			pipe.Incr(ctx, genKey)
			pipe.Expire(ctx, genKey, r.TTL)
		}
		return nil
	})
	return err
}
