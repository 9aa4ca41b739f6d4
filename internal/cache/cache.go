// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

// Package cache provides the shared key-value cache backing sessions and
// password-reset tokens.
package cache

import (
	"context"
	"time"
)

// KeyValue is the contract the session and reset-token stores consume.
// Values are plain strings; expiry is enforced by the cache, not by callers.
type KeyValue interface {
	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Del removes key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error
}
