// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Redis implements KeyValue on a Redis-compatible server.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the cache at the given URL (redis://...) and verifies
// connectivity, retrying transient failures during startup.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, oops.Code("CACHE_CONNECT_FAILED").
			With("operation", "parse url").
			Wrap(err)
	}

	client := redis.NewClient(opts)

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := client.Ping(ctx).Err(); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		_ = client.Close() //nolint:errcheck // connect error takes precedence
		return nil, oops.Code("CACHE_CONNECT_FAILED").
			With("operation", "ping").
			Wrap(err)
	}

	return &Redis{client: client}, nil
}

// Set stores value under key with the given expiry.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return oops.Code("CACHE_SET_FAILED").With("key", key).Wrap(err)
	}
	return nil
}

// Get returns the value for key and whether it exists.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, oops.Code("CACHE_GET_FAILED").With("key", key).Wrap(err)
	}
	return value, true, nil
}

// Del removes key.
func (r *Redis) Del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return oops.Code("CACHE_DEL_FAILED").With("key", key).Wrap(err)
	}
	return nil
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	if err := r.client.Close(); err != nil {
		return oops.Code("CACHE_CLOSE_FAILED").Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ KeyValue = (*Redis)(nil)
