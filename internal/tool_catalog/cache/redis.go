package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tool-catalog/pkg/config"
)

const namespace = "toolcat:"

// Redis is the shared Cache for multi-instance deployments.
type Redis struct {
	Log *zap.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedis(ctx context.Context, log *zap.Logger, cfg config.RedisConfig) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{Log: log, rdb: rdb, ttl: cfg.TTL}, nil
}

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := r.rdb.Get(ctx, namespace+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (r *Redis) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, namespace+key, b, r.ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context, keys ...string) error {
	var del []string
	for _, k := range keys {
		if !strings.HasSuffix(k, "*") {
			del = append(del, namespace+k)
			continue
		}
		iter := r.rdb.Scan(ctx, 0, namespace+k, 100).Iterator()
		for iter.Next(ctx) {
			del = append(del, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("scan %s: %w", k, err)
		}
	}
	if len(del) == 0 {
		return nil
	}
	if err := r.rdb.Del(ctx, del...).Err(); err != nil {
		return err
	}
	r.Log.Debug("Invalidated cached views", zap.Strings("keys", del))
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
