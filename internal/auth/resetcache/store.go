// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

// Package resetcache implements the reset-token store on the shared
// key-value cache.
package resetcache

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/driftboard/driftboard/internal/auth"
	"github.com/driftboard/driftboard/internal/cache"
)

// Store implements auth.ResetTokenStore. Keys are the fixed prefix plus the
// token; values are plain user-id strings. Expiry is the cache's TTL.
type Store struct {
	kv cache.KeyValue
}

// NewStore creates a Store on the given cache.
func NewStore(kv cache.KeyValue) *Store {
	return &Store{kv: kv}
}

// Put stores token -> userID for the given lifetime.
func (s *Store) Put(ctx context.Context, token string, userID ulid.ULID, ttl time.Duration) error {
	if err := s.kv.Set(ctx, auth.ResetKeyPrefix+token, userID.String(), ttl); err != nil {
		return oops.Code("RESET_PUT_FAILED").Wrap(err)
	}
	return nil
}

// Get resolves a token to its user ID; absent or expired tokens report false.
func (s *Store) Get(ctx context.Context, token string) (ulid.ULID, bool, error) {
	value, ok, err := s.kv.Get(ctx, auth.ResetKeyPrefix+token)
	if err != nil {
		return ulid.ULID{}, false, oops.Code("RESET_GET_FAILED").Wrap(err)
	}
	if !ok {
		return ulid.ULID{}, false, nil
	}

	id, err := ulid.Parse(value)
	if err != nil {
		return ulid.ULID{}, false, oops.Code("RESET_INVALID_VALUE").
			With("operation", "parse user id").
			Wrap(err)
	}
	return id, true, nil
}

// Del removes a consumed token.
func (s *Store) Del(ctx context.Context, token string) error {
	if err := s.kv.Del(ctx, auth.ResetKeyPrefix+token); err != nil {
		return oops.Code("RESET_DEL_FAILED").Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ auth.ResetTokenStore = (*Store)(nil)
