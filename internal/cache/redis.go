package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// Redis is a Store shared by every API process pointed at the same server.
type Redis struct {
	redisdb *redis.Client
	ttl     time.Duration
	prefix  string
}

func NewRedis(cfg RedisConfig) *Redis {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Redis{redisdb: redisdb, ttl: ttl, prefix: cfg.Prefix}
}

// this ping function checks redis connectivity
func (r *Redis) Ping(ctx context.Context) error {
	return r.redisdb.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.redisdb.Close()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.redisdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, val []byte) error {
	return r.redisdb.Set(ctx, r.prefix+key, val, r.ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.redisdb.Del(ctx, r.prefix+key).Err()
}
