// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/driftboard/driftboard/pkg/errutil"
)

// notifyTimeout bounds the background password-reset notification dispatch.
const notifyTimeout = 10 * time.Second

// Service provides the account operations exposed by the API.
type Service struct {
	users        UserRepository
	resets       ResetTokenStore
	hasher       PasswordHasher
	notifier     ResetNotifier
	resetURLBase string
	logger       *slog.Logger
}

// NewService creates a Service. All dependencies are required; the logger
// defaults to slog.Default when nil.
func NewService(users UserRepository, resets ResetTokenStore, hasher PasswordHasher, notifier ResetNotifier, resetURLBase string, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("users repository is required")
	}
	if resets == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("reset token store is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("password hasher is required")
	}
	if notifier == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("reset notifier is required")
	}
	if resetURLBase == "" {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("reset URL base is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:        users,
		resets:       resets,
		hasher:       hasher,
		notifier:     notifier,
		resetURLBase: resetURLBase,
		logger:       logger,
	}, nil
}

// Register validates the input, creates the user, and authenticates the
// session. A duplicate username or email surfaces as a field error on
// "username"; the store's uniqueness constraint is the only duplicate check.
func (s *Service) Register(ctx context.Context, sess UserSession, input RegisterInput) (*Result, error) {
	if errs := ValidateRegister(input); errs != nil {
		return failures(errs), nil
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(input.Username, input.Email, hash)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "new user").
			Wrap(err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return failure("username", "Username is already taken"), nil
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			With("username", input.Username).
			Wrap(err)
	}

	if err := s.sessionLogin(ctx, sess, user); err != nil {
		return nil, err
	}
	return success(user), nil
}

// Login authenticates by username or email (chosen by the presence of "@")
// and marks the session authenticated on success.
func (s *Service) Login(ctx context.Context, sess UserSession, usernameOrEmail, password string) (*Result, error) {
	var (
		user *User
		err  error
	)
	if strings.Contains(usernameOrEmail, "@") {
		user, err = s.users.GetByEmail(ctx, usernameOrEmail)
	} else {
		user, err = s.users.GetByUsername(ctx, usernameOrEmail)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return failure("usernameOrEmail", "Username or Email is incorrect."), nil
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user").
			Wrap(err)
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(err)
	}
	if !valid {
		return failure("password", "incorrect password"), nil
	}

	if err := s.sessionLogin(ctx, sess, user); err != nil {
		return nil, err
	}
	return success(user), nil
}

// Me returns the user the session is authenticated as, or nil for an
// anonymous session. A dangling session whose user record no longer exists
// is treated as anonymous, not as a failure.
func (s *Service) Me(ctx context.Context, sess UserSession) (*User, error) {
	id, ok, err := sess.UserID(ctx)
	if err != nil {
		return nil, oops.Code("AUTH_ME_FAILED").
			With("operation", "read session").
			Wrap(err)
	}
	if !ok {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("AUTH_ME_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}
	return user, nil
}

// Logout destroys the session. Destroy failures are logged and reported as
// false; the transport layer clears the cookie either way. Logging out an
// anonymous session succeeds.
func (s *Service) Logout(ctx context.Context, sess UserSession) bool {
	if err := sess.Destroy(ctx); err != nil {
		errutil.LogError(s.logger, "session destroy failed", err)
		return false
	}
	return true
}

// ForgotPassword starts the reset flow. It always reports true so that the
// response does not reveal whether the email is registered; the notification
// is dispatched, fire-and-forget, only when it is.
func (s *Service) ForgotPassword(ctx context.Context, email string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return true, nil
		}
		return false, oops.Code("AUTH_FORGOT_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	token, err := GenerateResetToken()
	if err != nil {
		return false, oops.Code("AUTH_FORGOT_FAILED").
			With("operation", "generate token").
			Wrap(err)
	}

	if err := s.resets.Put(ctx, token, user.ID, ResetTokenTTL); err != nil {
		return false, oops.Code("AUTH_FORGOT_FAILED").
			With("operation", "store token").
			Wrap(err)
	}

	link := s.resetURLBase + token
	go s.dispatchReset(context.WithoutCancel(ctx), email, link)

	return true, nil
}

// ChangePassword consumes a reset token: it validates the new password,
// resolves the token, rotates the password, deletes the token (single-use),
// and authenticates the session as the affected user.
func (s *Service) ChangePassword(ctx context.Context, sess UserSession, token, newPassword string) (*Result, error) {
	if len(newPassword) < MinPasswordLength {
		return failure("newPassword", "Password must be at least 8 characters long"), nil
	}

	userID, ok, err := s.resets.Get(ctx, token)
	if err != nil {
		return nil, oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "get token").
			Wrap(err)
	}
	if !ok {
		return failure("token", "token expired"), nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return failure("token", "user no longer exists"), nil
		}
		return nil, oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	updatedAt, err := s.users.UpdatePassword(ctx, user.ID, hash)
	if err != nil {
		return nil, oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "update password").
			Wrap(err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = updatedAt

	// The password is already rotated; a failed delete must not fail the
	// operation. The cache TTL still bounds the token's lifetime.
	if err := s.resets.Del(ctx, token); err != nil {
		errutil.LogError(s.logger, "reset token delete failed", err)
	}

	if err := s.sessionLogin(ctx, sess, user); err != nil {
		return nil, err
	}
	return success(user), nil
}

func (s *Service) sessionLogin(ctx context.Context, sess UserSession, user *User) error {
	if err := sess.SetUserID(ctx, user.ID); err != nil {
		return oops.Code("AUTH_SESSION_WRITE_FAILED").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	return nil
}

func (s *Service) dispatchReset(ctx context.Context, email, link string) {
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	if err := s.notifier.SendPasswordReset(ctx, email, link); err != nil {
		errutil.LogError(s.logger, "password reset notification failed", err)
	}
}
