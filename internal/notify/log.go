package notify

import (
	"context"
	"log/slog"
)

// Log writes notifications to a logger instead of delivering them.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a Log notifier.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, n Notification) error {
	l.logger.InfoContext(ctx, "notification",
		slog.String("kind", string(n.Kind)),
		slog.String("recipient", n.Recipient),
		slog.String("auction_id", n.AuctionID),
		slog.String("message", n.Message()),
	)
	return nil
}
