// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package auth

import "strings"

// MinUsernameLength is the shortest accepted username.
const MinUsernameLength = 3

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// RegisterInput carries the registration fields.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// ValidateRegister checks the registration fields against syntactic rules.
// Rules are evaluated in order and the first failing rule wins; returns nil
// when all pass. Pure function, no I/O.
func ValidateRegister(input RegisterInput) []FieldError {
	if !strings.Contains(input.Email, "@") {
		return []FieldError{{
			Field:   "email",
			Message: "Please enter a valid email",
		}}
	}
	if strings.Contains(input.Username, "@") {
		return []FieldError{{
			Field:   "username",
			Message: "@ cannot be in username",
		}}
	}
	if len(input.Username) < MinUsernameLength {
		return []FieldError{{
			Field:   "username",
			Message: "Username must be more than 2 characters",
		}}
	}
	if len(input.Password) < MinPasswordLength {
		return []FieldError{{
			Field:   "password",
			Message: "Password must be at least 8 characters long",
		}}
	}
	return nil
}
