package push

import (
	"context"
	"log/slog"

	"whentomeet/internal/domain"
)

// logPusher logs push notifications instead of delivering them. It stands in
// for a real push gateway (APNs/FCM) in environments without one configured.
type logPusher struct {
	logger *slog.Logger
}

// NewLogPusher returns a Pusher that writes notifications to the log.
func NewLogPusher(logger *slog.Logger) domain.Pusher {
	if logger == nil {
		logger = slog.Default()
	}
	return &logPusher{logger: logger}
}

func (p *logPusher) Push(ctx context.Context, deviceToken, title, body string) error {
	p.logger.InfoContext(ctx, "push notification",
		"device_token", deviceToken,
		"title", title,
		"body", body,
	)
	return nil
}
