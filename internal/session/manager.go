// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

// Package session provides cookie-addressed, cache-backed request sessions.
//
// The cookie carries only an opaque session ID; the authenticated user ID
// lives server-side in the shared key-value cache. Sessions are created
// lazily: an anonymous request writes nothing and receives no cookie.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/driftboard/driftboard/internal/cache"
)

// Cache key layout and session ID entropy.
const (
	keyPrefix      = "sess:"
	sessionIDBytes = 32
)

// Config carries the cookie transport policy.
type Config struct {
	// CookieName is the fixed session cookie name.
	CookieName string

	// Domain scopes the cookie; empty means host-only.
	Domain string

	// TTL is the session lifetime, applied to both the cookie and the
	// server-side entry.
	TTL time.Duration

	// Secure marks the cookie Secure; enabled in production only.
	Secure bool

	// OnCreated, when set, is called each time a new session is persisted
	// for the first time.
	OnCreated func()
}

// Manager resolves request cookies to sessions and owns their persistence.
type Manager struct {
	kv  cache.KeyValue
	cfg Config
}

// NewManager creates a Manager.
func NewManager(kv cache.KeyValue, cfg Config) (*Manager, error) {
	if kv == nil {
		return nil, oops.Code("SESSION_INVALID_DEPS").Errorf("key-value cache is required")
	}
	if cfg.CookieName == "" {
		return nil, oops.Code("SESSION_INVALID_DEPS").Errorf("cookie name is required")
	}
	if cfg.TTL <= 0 {
		return nil, oops.Code("SESSION_INVALID_DEPS").Errorf("session TTL must be positive")
	}
	return &Manager{kv: kv, cfg: cfg}, nil
}

// Middleware resolves the session cookie into a Session and places it in
// the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.Load(w, r)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// Load builds the request-scoped session handle. The handle writes its
// cookie through w, so it must be used before the response body is written.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Session {
	var id string
	if c, err := r.Cookie(m.cfg.CookieName); err == nil {
		id = c.Value
	}
	return &Session{mgr: m, id: id, w: w}
}

// newSessionID generates an opaque, unguessable session ID.
func newSessionID() (string, error) {
	buf := make([]byte, sessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("SESSION_ID_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}

func (m *Manager) writeCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    value,
		Path:     "/",
		Domain:   m.cfg.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
