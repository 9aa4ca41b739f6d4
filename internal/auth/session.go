// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package auth

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// UserSession is the request-scoped session handle the service mutates. It
// is owned by the transport layer (cookie handling, server-side storage);
// the service only reads and writes the authenticated user ID and may
// destroy the session.
type UserSession interface {
	// UserID returns the authenticated user ID. The second return is false
	// for an anonymous session.
	UserID(ctx context.Context) (ulid.ULID, bool, error)

	// SetUserID marks the session authenticated as the given user, creating
	// the server-side session on first write.
	SetUserID(ctx context.Context, id ulid.ULID) error

	// Destroy removes the server-side session and instructs the client to
	// drop its cookie. Destroying an anonymous session succeeds.
	Destroy(ctx context.Context) error
}
