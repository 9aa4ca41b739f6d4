// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package posts

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/driftboard/driftboard/pkg/errutil"
)

// Service provides the post operations exposed by the API. It is a thin
// pass-through over the repository with the API's nullability semantics.
type Service struct {
	repo   PostRepository
	logger *slog.Logger
}

// NewService creates a Service. The logger defaults to slog.Default when nil.
func NewService(repo PostRepository, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, oops.Code("POSTS_INVALID_DEPS").Errorf("post repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}, nil
}

// List returns all posts.
func (s *Service) List(ctx context.Context) ([]*Post, error) {
	return s.repo.List(ctx)
}

// Get returns a post, or nil when it does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*Post, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return post, nil
}

// Create stores a new post.
func (s *Service) Create(ctx context.Context, title string) (*Post, error) {
	return s.repo.Create(ctx, title)
}

// Update changes a post's title; a missing post yields nil, not an error.
func (s *Service) Update(ctx context.Context, id int64, title string) (*Post, error) {
	post, err := s.repo.UpdateTitle(ctx, id, title)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return post, nil
}

// Delete removes a post, reporting success as a boolean. Failures are
// logged, not raised; deleting an absent post succeeds.
func (s *Service) Delete(ctx context.Context, id int64) bool {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return true
		}
		errutil.LogError(s.logger, "post delete failed", err)
		return false
	}
	return true
}
