// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package auth

import "context"

// ResetNotifier delivers the password-reset link to a user. Dispatch is
// fire-and-forget: the service never blocks an operation on delivery and
// delivery failures are logged, not surfaced.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}
