// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package resetcache_test

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftboard/driftboard/internal/auth"
	"github.com/driftboard/driftboard/internal/auth/resetcache"
	"github.com/driftboard/driftboard/internal/cache/cachetest"
)

func TestStore_RoundTrip(t *testing.T) {
	kv := cachetest.NewMemory()
	store := resetcache.NewStore(kv)
	userID := ulid.Make()

	require.NoError(t, store.Put(t.Context(), "tok123", userID, auth.ResetTokenTTL))

	got, ok, err := store.Get(t.Context(), "tok123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, userID, got)

	// Keys carry the fixed prefix so tokens share the cache with sessions.
	_, ok, err = kv.Get(t.Context(), auth.ResetKeyPrefix+"tok123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_GetMissing(t *testing.T) {
	store := resetcache.NewStore(cachetest.NewMemory())

	_, ok, err := store.Get(t.Context(), "never-issued")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Expiry(t *testing.T) {
	kv := cachetest.NewMemory()
	store := resetcache.NewStore(kv)

	now := time.Now()
	kv.Now = func() time.Time { return now }

	require.NoError(t, store.Put(t.Context(), "tok123", ulid.Make(), time.Hour))

	now = now.Add(time.Hour + time.Second)

	_, ok, err := store.Get(t.Context(), "tok123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Del(t *testing.T) {
	store := resetcache.NewStore(cachetest.NewMemory())

	require.NoError(t, store.Put(t.Context(), "tok123", ulid.Make(), time.Hour))
	require.NoError(t, store.Del(t.Context(), "tok123"))

	_, ok, err := store.Get(t.Context(), "tok123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_CorruptValue(t *testing.T) {
	kv := cachetest.NewMemory()
	store := resetcache.NewStore(kv)

	require.NoError(t, kv.Set(t.Context(), auth.ResetKeyPrefix+"tok123", "not-a-ulid", time.Hour))

	_, _, err := store.Get(t.Context(), "tok123")
	require.Error(t, err)
}
