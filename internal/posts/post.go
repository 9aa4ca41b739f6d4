// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

// Package posts implements the post CRUD surface.
package posts

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = errors.New("not found")

// Post is a board entry. IDs are database serials, matching the published
// Int-typed API field.
type Post struct {
	ID        int64
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostRepository manages post persistence.
type PostRepository interface {
	// List returns all posts, newest first.
	List(ctx context.Context) ([]*Post, error)

	// Get retrieves a post by ID.
	Get(ctx context.Context, id int64) (*Post, error)

	// Create stores a new post and returns it with its assigned ID.
	Create(ctx context.Context, title string) (*Post, error)

	// UpdateTitle changes a post's title.
	UpdateTitle(ctx context.Context, id int64, title string) (*Post, error)

	// Delete removes a post.
	Delete(ctx context.Context, id int64) error
}
