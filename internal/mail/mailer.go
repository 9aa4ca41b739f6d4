// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

// Package mail delivers password-reset notifications.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/samber/oops"
)

// LogMailer writes the reset link to the log instead of sending mail.
// Used in development where no SMTP relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer. The logger defaults to slog.Default
// when nil.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// SendPasswordReset logs the reset link.
func (m *LogMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	m.logger.InfoContext(ctx, "password reset requested",
		"email", email,
		"link", link,
	)
	return nil
}

// SMTPMailer sends reset mail through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	from string
}

// NewSMTPMailer creates an SMTPMailer for the relay at addr (host:port).
func NewSMTPMailer(addr, from string) (*SMTPMailer, error) {
	if addr == "" {
		return nil, oops.Code("MAIL_INVALID_DEPS").Errorf("smtp address is required")
	}
	if from == "" {
		return nil, oops.Code("MAIL_INVALID_DEPS").Errorf("from address is required")
	}
	return &SMTPMailer{addr: addr, from: from}, nil
}

// SendPasswordReset sends the reset link to email.
func (m *SMTPMailer) SendPasswordReset(_ context.Context, email, link string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Change password\r\nContent-Type: text/html; charset=utf-8\r\n\r\n<a href=%q>Reset Password</a>\r\n",
		m.from, email, link,
	)
	if err := smtp.SendMail(m.addr, nil, m.from, []string{email}, []byte(msg)); err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("operation", "smtp send").
			Wrap(err)
	}
	return nil
}
