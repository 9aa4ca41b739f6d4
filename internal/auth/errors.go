// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package auth

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert would violate a uniqueness
	// constraint. It is the canonical duplicate-detection signal; callers
	// must not pre-check for existence.
	ErrDuplicate = errors.New("duplicate")
)
