// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

// Package postgres provides the PostgreSQL implementation of the post
// repository.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/driftboard/driftboard/internal/posts"
	"github.com/driftboard/driftboard/internal/store"
)

// PostRepository implements posts.PostRepository using PostgreSQL.
type PostRepository struct {
	db store.DB
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db store.DB) *PostRepository {
	return &PostRepository{db: db}
}

// List returns all posts, newest first.
func (r *PostRepository) List(ctx context.Context) ([]*posts.Post, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, created_at, updated_at
		FROM posts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, oops.Code("POST_LIST_FAILED").
			With("operation", "query posts").
			Wrap(err)
	}
	defer rows.Close()

	var result []*posts.Post
	for rows.Next() {
		var p posts.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, oops.Code("POST_SCAN_FAILED").
				With("operation", "scan post row").
				Wrap(err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("POST_LIST_FAILED").
			With("operation", "iterate posts").
			Wrap(err)
	}
	return result, nil
}

// Get retrieves a post by ID.
func (r *PostRepository) Get(ctx context.Context, id int64) (*posts.Post, error) {
	var p posts.Post
	err := r.db.QueryRow(ctx, `
		SELECT id, title, created_at, updated_at
		FROM posts
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Title, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("POST_NOT_FOUND").
			With("id", id).
			Wrap(posts.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("POST_GET_FAILED").
			With("operation", "get post").
			With("id", id).
			Wrap(err)
	}
	return &p, nil
}

// Create stores a new post and returns it with its assigned ID.
func (r *PostRepository) Create(ctx context.Context, title string) (*posts.Post, error) {
	var p posts.Post
	err := r.db.QueryRow(ctx, `
		INSERT INTO posts (title)
		VALUES ($1)
		RETURNING id, title, created_at, updated_at
	`, title).Scan(&p.ID, &p.Title, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, oops.Code("POST_CREATE_FAILED").
			With("operation", "insert post").
			Wrap(err)
	}
	return &p, nil
}

// UpdateTitle changes a post's title.
func (r *PostRepository) UpdateTitle(ctx context.Context, id int64, title string) (*posts.Post, error) {
	var p posts.Post
	err := r.db.QueryRow(ctx, `
		UPDATE posts SET title = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, title, created_at, updated_at
	`, id, title, time.Now()).Scan(&p.ID, &p.Title, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("POST_NOT_FOUND").
			With("id", id).
			Wrap(posts.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("POST_UPDATE_FAILED").
			With("operation", "update post").
			With("id", id).
			Wrap(err)
	}
	return &p, nil
}

// Delete removes a post.
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `
		DELETE FROM posts WHERE id = $1
	`, id)
	if err != nil {
		return oops.Code("POST_DELETE_FAILED").
			With("operation", "delete post").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("POST_NOT_FOUND").
			With("id", id).
			Wrap(posts.ErrNotFound)
	}
	return nil
}

// Compile-time interface check.
var _ posts.PostRepository = (*PostRepository)(nil)
