// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftboard/driftboard/internal/cache/cachetest"
	"github.com/driftboard/driftboard/internal/session"
)

func testConfig() session.Config {
	return session.Config{
		CookieName: "qid",
		TTL:        time.Hour,
	}
}

func newTestManager(t *testing.T, cfg session.Config) (*session.Manager, *cachetest.Memory) {
	t.Helper()
	kv := cachetest.NewMemory()
	mgr, err := session.NewManager(kv, cfg)
	require.NoError(t, err)
	return mgr, kv
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestNewManager(t *testing.T) {
	kv := cachetest.NewMemory()

	t.Run("valid config", func(t *testing.T) {
		mgr, err := session.NewManager(kv, testConfig())
		require.NoError(t, err)
		assert.NotNil(t, mgr)
	})

	t.Run("nil cache fails", func(t *testing.T) {
		_, err := session.NewManager(nil, testConfig())
		require.Error(t, err)
	})

	t.Run("empty cookie name fails", func(t *testing.T) {
		cfg := testConfig()
		cfg.CookieName = ""
		_, err := session.NewManager(kv, cfg)
		require.Error(t, err)
	})

	t.Run("non-positive TTL fails", func(t *testing.T) {
		cfg := testConfig()
		cfg.TTL = 0
		_, err := session.NewManager(kv, cfg)
		require.Error(t, err)
	})
}

func TestSession_Anonymous(t *testing.T) {
	mgr, kv := newTestManager(t, testConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	sess := mgr.Load(rec, req)

	_, ok, err := sess.UserID(t.Context())
	require.NoError(t, err)
	assert.False(t, ok)

	// Anonymous requests write nothing: no cookie, no cache entry.
	assert.Nil(t, sessionCookie(t, rec, "qid"))
	assert.Zero(t, kv.Len())
}

func TestSession_SetUserID(t *testing.T) {
	mgr, kv := newTestManager(t, testConfig())
	userID := ulid.Make()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	sess := mgr.Load(rec, req)

	require.NoError(t, sess.SetUserID(t.Context(), userID))

	cookie := sessionCookie(t, rec, "qid")
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.False(t, cookie.Secure)
	assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)
	assert.Equal(t, 1, kv.Len())

	got, ok, err := sess.UserID(t.Context())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, userID, got)
}

func TestSession_SecureCookie(t *testing.T) {
	cfg := testConfig()
	cfg.Secure = true
	mgr, _ := newTestManager(t, cfg)

	rec := httptest.NewRecorder()
	sess := mgr.Load(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))
	require.NoError(t, sess.SetUserID(t.Context(), ulid.Make()))

	cookie := sessionCookie(t, rec, "qid")
	require.NotNil(t, cookie)
	assert.True(t, cookie.Secure)
}

func TestSession_ResumeFromCookie(t *testing.T) {
	mgr, _ := newTestManager(t, testConfig())
	userID := ulid.Make()

	first := httptest.NewRecorder()
	sess := mgr.Load(first, httptest.NewRequest(http.MethodPost, "/graphql", nil))
	require.NoError(t, sess.SetUserID(t.Context(), userID))
	cookie := sessionCookie(t, first, "qid")
	require.NotNil(t, cookie)

	// A later request presenting the cookie resolves to the same user.
	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.AddCookie(cookie)
	resumed := mgr.Load(httptest.NewRecorder(), req)

	got, ok, err := resumed.UserID(t.Context())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, userID, got)
}

func TestSession_UnknownCookieIsAnonymous(t *testing.T) {
	mgr, _ := newTestManager(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.AddCookie(&http.Cookie{Name: "qid", Value: "stale-session-id"})
	sess := mgr.Load(httptest.NewRecorder(), req)

	_, ok, err := sess.UserID(t.Context())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSession_PlantedCookieGetsFreshID(t *testing.T) {
	mgr, kv := newTestManager(t, testConfig())
	userID := ulid.Make()

	// Logging in with a cookie the server never issued must not promote
	// that value to a session ID.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.AddCookie(&http.Cookie{Name: "qid", Value: "4141414141414141"})
	sess := mgr.Load(rec, req)
	require.NoError(t, sess.SetUserID(t.Context(), userID))

	cookie := sessionCookie(t, rec, "qid")
	require.NotNil(t, cookie)
	assert.NotEqual(t, "4141414141414141", cookie.Value)
	_, ok, err := kv.Get(t.Context(), "sess:4141414141414141")
	require.NoError(t, err)
	assert.False(t, ok)

	// Replaying the planted value stays anonymous.
	replay := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	replay.AddCookie(&http.Cookie{Name: "qid", Value: "4141414141414141"})
	replayed := mgr.Load(httptest.NewRecorder(), replay)
	_, ok, err = replayed.UserID(t.Context())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSession_KnownCookieKeepsID(t *testing.T) {
	mgr, _ := newTestManager(t, testConfig())

	first := httptest.NewRecorder()
	sess := mgr.Load(first, httptest.NewRequest(http.MethodPost, "/graphql", nil))
	require.NoError(t, sess.SetUserID(t.Context(), ulid.Make()))
	cookie := sessionCookie(t, first, "qid")
	require.NotNil(t, cookie)

	// A session the server issued survives re-authentication under the
	// same ID.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.AddCookie(cookie)
	resumed := mgr.Load(rec, req)
	require.NoError(t, resumed.SetUserID(t.Context(), ulid.Make()))

	rewritten := sessionCookie(t, rec, "qid")
	require.NotNil(t, rewritten)
	assert.Equal(t, cookie.Value, rewritten.Value)
}

func TestSession_Destroy(t *testing.T) {
	t.Run("authenticated session", func(t *testing.T) {
		mgr, kv := newTestManager(t, testConfig())

		rec := httptest.NewRecorder()
		sess := mgr.Load(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))
		require.NoError(t, sess.SetUserID(t.Context(), ulid.Make()))
		require.NoError(t, sess.Destroy(t.Context()))

		assert.Zero(t, kv.Len())
		_, ok, err := sess.UserID(t.Context())
		require.NoError(t, err)
		assert.False(t, ok)

		// The most recent cookie write expires the cookie.
		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		last := cookies[len(cookies)-1]
		assert.Equal(t, "qid", last.Name)
		assert.Empty(t, last.Value)
		assert.Negative(t, last.MaxAge)
	})

	t.Run("anonymous session succeeds", func(t *testing.T) {
		mgr, _ := newTestManager(t, testConfig())

		rec := httptest.NewRecorder()
		sess := mgr.Load(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))
		require.NoError(t, sess.Destroy(t.Context()))

		cookie := sessionCookie(t, rec, "qid")
		require.NotNil(t, cookie)
		assert.Negative(t, cookie.MaxAge)
	})
}

func TestSession_OnCreated(t *testing.T) {
	created := 0
	cfg := testConfig()
	cfg.OnCreated = func() { created++ }
	mgr, _ := newTestManager(t, cfg)

	sess := mgr.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/graphql", nil))
	require.NoError(t, sess.SetUserID(t.Context(), ulid.Make()))
	require.NoError(t, sess.SetUserID(t.Context(), ulid.Make()))

	// Only the first write creates the session.
	assert.Equal(t, 1, created)
}

func TestMiddleware(t *testing.T) {
	mgr, _ := newTestManager(t, testConfig())

	var sawSession bool
	handler := mgr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawSession = session.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))

	assert.True(t, sawSession)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSession_CorruptCacheValue(t *testing.T) {
	mgr, kv := newTestManager(t, testConfig())

	rec := httptest.NewRecorder()
	sess := mgr.Load(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))
	require.NoError(t, sess.SetUserID(t.Context(), ulid.Make()))

	cookie := sessionCookie(t, rec, "qid")
	require.NotNil(t, cookie)
	require.NoError(t, kv.Set(t.Context(), "sess:"+cookie.Value, "not-a-ulid", time.Hour))

	_, _, err := sess.UserID(t.Context())
	require.Error(t, err)
}
