// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Reset token configuration.
const (
	// ResetTokenBytes is the entropy of a reset token (hex-encoded to twice
	// as many characters).
	ResetTokenBytes = 32

	// ResetTokenTTL is how long a reset token stays valid in the cache.
	ResetTokenTTL = time.Hour

	// ResetKeyPrefix is prepended to the token to form the cache key.
	ResetKeyPrefix = "forget-password:"
)

// GenerateResetToken creates a random, unguessable reset token.
func GenerateResetToken() (string, error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("RESET_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}

// ResetTokenStore maps reset tokens to user IDs with cache-enforced expiry.
// The store never re-checks timestamps itself; the cache TTL is the only
// time-based invalidation.
type ResetTokenStore interface {
	// Put stores token -> userID for the given lifetime.
	Put(ctx context.Context, token string, userID ulid.ULID, ttl time.Duration) error

	// Get resolves a token to its user ID. The second return is false when
	// the token is absent or has expired.
	Get(ctx context.Context, token string) (ulid.ULID, bool, error)

	// Del removes a token. Used to enforce single-use consumption.
	Del(ctx context.Context, token string) error
}
