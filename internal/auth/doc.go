// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

// Package auth implements the account and session core of driftboard.
//
// # Domain Types
//
// User is created through NewUser, which assigns the ID and timestamps.
// Direct struct initialization bypasses that and may create invalid state.
//
// # Services
//
// Service orchestrates the validator, hasher, user repository, session
// store, and reset-token store to implement register, login, me, logout,
// forgotPassword, and changePassword.
//
// Expected failures (bad input, duplicate username, expired token) are
// returned as Result values carrying FieldError lists; only infrastructure
// failures are returned as errors.
package auth
