// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package mailer

import (
	"context"
	"log/slog"
)

// LogSender writes outgoing mail to the log instead of delivering it. Used
// in development when no SMTP server is configured.
type LogSender struct{}

// NewLogSender creates a log-only sender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Send logs the message and reports success.
func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	slog.InfoContext(ctx, "mail_logged", "to", to, "subject", subject, "body", body)
	return nil
}
