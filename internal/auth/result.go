// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package auth

// FieldError describes a user-correctable problem with one input field.
type FieldError struct {
	Field   string
	Message string
}

// Result is the tagged outcome of an account operation: either User is set
// and Errors is empty, or Errors is non-empty and User is nil.
type Result struct {
	User   *User
	Errors []FieldError
}

// OK reports whether the operation succeeded.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

func success(user *User) *Result {
	return &Result{User: user}
}

func failure(field, message string) *Result {
	return &Result{Errors: []FieldError{{Field: field, Message: message}}}
}

func failures(errs []FieldError) *Result {
	return &Result{Errors: errs}
}
