package notify

import (
	"context"
	"log/slog"

	"photojournal/internal/logging"
)

// LogService writes notifications to the log. It is used when no webhook is
// configured; a disabled LogService withholds permission.
type LogService struct {
	enabled bool
	logger  *slog.Logger
}

func NewLogService(enabled bool, logger *slog.Logger) *LogService {
	return &LogService{enabled: enabled, logger: logging.Component(logger, "notification")}
}

func (s *LogService) Permission(context.Context) (bool, error) { return s.enabled, nil }

func (s *LogService) RequestPermission(context.Context) (bool, error) { return s.enabled, nil }

func (s *LogService) RequiresChannel() bool { return false }

func (s *LogService) EnsureChannel(context.Context, ChannelConfig) error { return nil }

func (s *LogService) Schedule(ctx context.Context, n Notification) error {
	s.logger.InfoContext(ctx, "notification", "title", n.Title, "body", n.Body)
	return nil
}
