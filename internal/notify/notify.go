// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

/*
Package notify defines the outbound notification gateway.

The auth orchestrator needs exactly one capability: deliver a generated secret
to a user-controlled channel (email). This package models that as the [Sender]
port with two implementations selected by configuration, never hard-branched
inside business logic:

  - SMTPSender: real delivery through a configured SMTP relay.
  - LogSender: development sink that writes the message to the log.

Delivery failure is an operational event, not a user-facing error; callers log
and continue.
*/
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// Sender delivers a message to a user-controlled address.
type Sender interface {
	// Send delivers subject/body to the given address. Implementations must
	// honor ctx cancellation where the underlying transport allows it.
	Send(ctx context.Context, to, subject, body string) error
}

// # SMTP Transport

// SMTPSender delivers messages through an SMTP relay using PLAIN auth.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPSender constructs an SMTP-backed Sender.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		auth: smtp.PlainAuth("", username, password, host),
	}
}

// Send implements [Sender] over SMTP.
func (sender *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	// net/smtp has no context support; run the blocking call in a goroutine
	// so the caller's deadline is still respected.
	message := []byte(
		"From: " + sender.from + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=utf-8\r\n" +
			"\r\n" +
			body + "\r\n")

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(sender.addr, sender.auth, sender.from, []string{to}, message)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("notify: smtp send failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notify: smtp send aborted: %w", ctx.Err())
	}
}

// # Development Sink

// LogSender writes every message to the structured log instead of sending it.
//
// This keeps the full auth flow usable on a developer machine with no SMTP
// credentials: the one-time code is readable from the server log.
type LogSender struct {
	logger *slog.Logger
	// revealBody controls whether the message body (which contains the
	// one-time code) appears in the log. Only enabled in development.
	revealBody bool
}

// NewLogSender constructs a log-only Sender.
func NewLogSender(logger *slog.Logger, revealBody bool) *LogSender {
	return &LogSender{logger: logger, revealBody: revealBody}
}

// Send implements [Sender] by logging the message.
func (sender *LogSender) Send(ctx context.Context, to, subject, body string) error {
	attrs := []any{
		slog.String("to", to),
		slog.String("subject", subject),
	}
	if sender.revealBody {
		attrs = append(attrs, slog.String("body", body))
	}
	sender.logger.WarnContext(ctx, "email_delivery_unconfigured", attrs...)
	return nil
}
