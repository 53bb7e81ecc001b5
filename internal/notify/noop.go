package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded messages. It backs
// dry runs, where nothing should leave the process.
type NoOpNotifier struct {
	log     *slog.Logger
	channel string
}

// NewNoOpNotifier creates a notifier that discards messages with a log
// line naming the channel it stands in for.
func NewNoOpNotifier(log *slog.Logger, channel string) *NoOpNotifier {
	return &NoOpNotifier{log: log, channel: channel}
}

// Send logs and discards msg.
func (n *NoOpNotifier) Send(_ context.Context, msg Message) error {
	n.log.Info("notification discarded (dry run)",
		"channel", n.channel,
		"title", msg.Title,
		"body", msg.Body,
	)
	return nil
}
