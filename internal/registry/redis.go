// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pdiddy/cv-normalizer/pkg/types"
)

// DefaultRedisKey is the set holding the labels when none is configured.
const DefaultRedisKey = "cvnorm:domains"

// RedisRegistry stores labels in a Redis set. Set commands are atomic, so
// concurrent writers need no extra locking.
type RedisRegistry struct {
	client *redis.Client
	key    string
}

// NewRedisRegistry wraps an existing client.
func NewRedisRegistry(client *redis.Client, key string) *RedisRegistry {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisRegistry{client: client, key: key}
}

// DialRedis connects to the server named in cfg and checks it with PING.
func DialRedis(ctx context.Context, cfg types.RegistryConfig) (*RedisRegistry, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
	}
	return NewRedisRegistry(client, cfg.RedisKey), nil
}

// Load returns the stored labels.
func (r *RedisRegistry) Load(ctx context.Context) ([]string, error) {
	members, err := r.client.SMembers(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.key, err)
	}
	return Labels(members), nil
}

// Save replaces the stored labels in one transaction.
func (r *RedisRegistry) Save(ctx context.Context, labels []string) error {
	labels = Labels(labels)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(labels) > 0 {
			pipe.SAdd(ctx, r.key, toArgs(labels)...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", r.key, err)
	}
	return nil
}

// Merge adds labels with SADD and returns the resulting set.
func (r *RedisRegistry) Merge(ctx context.Context, labels []string) ([]string, error) {
	labels = Labels(labels)
	if len(labels) > 0 {
		if err := r.client.SAdd(ctx, r.key, toArgs(labels)...).Err(); err != nil {
			return nil, fmt.Errorf("adding to %s: %w", r.key, err)
		}
	}
	return r.Load(ctx)
}

// Close releases the client connection.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}

func toArgs(labels []string) []any {
	args := make([]any, len(labels))
	for i, l := range labels {
		args[i] = l
	}
	return args
}
