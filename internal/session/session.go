// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package session

import (
	"context"
	"net/http"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/driftboard/driftboard/internal/auth"
)

// Session is the per-request handle over one browser's session. It
// implements auth.UserSession.
type Session struct {
	mgr *Manager
	id  string
	w   http.ResponseWriter
}

// UserID returns the authenticated user ID, or false for an anonymous
// session (no cookie, or the server-side entry is gone).
func (s *Session) UserID(ctx context.Context) (ulid.ULID, bool, error) {
	if s.id == "" {
		return ulid.ULID{}, false, nil
	}

	value, ok, err := s.mgr.kv.Get(ctx, keyPrefix+s.id)
	if err != nil {
		return ulid.ULID{}, false, oops.Code("SESSION_READ_FAILED").Wrap(err)
	}
	if !ok {
		return ulid.ULID{}, false, nil
	}

	id, err := ulid.Parse(value)
	if err != nil {
		return ulid.ULID{}, false, oops.Code("SESSION_CORRUPT").
			With("operation", "parse user id").
			Wrap(err)
	}
	return id, true, nil
}

// SetUserID authenticates the session as the given user. The server-side
// entry and the cookie are created on first write. A client-presented ID is
// reused only when it resolves to an existing server-side entry; an ID the
// server never issued is replaced with a fresh one.
func (s *Session) SetUserID(ctx context.Context, id ulid.ULID) error {
	created := s.id == ""
	if !created {
		_, ok, err := s.mgr.kv.Get(ctx, keyPrefix+s.id)
		if err != nil {
			return oops.Code("SESSION_WRITE_FAILED").
				With("operation", "check session id").
				Wrap(err)
		}
		created = !ok
	}
	if created {
		sid, err := newSessionID()
		if err != nil {
			return err
		}
		s.id = sid
	}

	if err := s.mgr.kv.Set(ctx, keyPrefix+s.id, id.String(), s.mgr.cfg.TTL); err != nil {
		if created {
			s.id = ""
		}
		return oops.Code("SESSION_WRITE_FAILED").Wrap(err)
	}

	s.mgr.writeCookie(s.w, s.id, int(s.mgr.cfg.TTL.Seconds()))
	if created && s.mgr.cfg.OnCreated != nil {
		s.mgr.cfg.OnCreated()
	}
	return nil
}

// Destroy removes the server-side entry and expires the cookie. The cookie
// is cleared even when the cache delete fails; destroying an anonymous
// session is a no-op success.
func (s *Session) Destroy(ctx context.Context) error {
	var err error
	if s.id != "" {
		if delErr := s.mgr.kv.Del(ctx, keyPrefix+s.id); delErr != nil {
			err = oops.Code("SESSION_DESTROY_FAILED").Wrap(delErr)
		}
		s.id = ""
	}
	s.mgr.writeCookie(s.w, "", -1)
	return err
}

type ctxKey struct{}

// WithSession attaches a session to the context.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromContext returns the request session placed by the middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(*Session)
	return sess, ok
}

// Compile-time interface check.
var _ auth.UserSession = (*Session)(nil)
