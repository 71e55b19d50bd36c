package notification

import (
	"context"
	"log/slog"
)

// EmailSender delivers one message to one recipient. The notifier worker owns
// the fan-out loop; implementations only deliver.
type EmailSender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogSender logs outbound messages instead of delivering them. It is the
// default sender when no transport is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a logging sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, recipient, subject, _ string) error {
	s.logger.InfoContext(ctx, "Email dispatched", "recipient", recipient, "subject", subject)

	return nil
}
