package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/donaldgifford/pickup-monitor/internal/config"
	"github.com/donaldgifford/pickup-monitor/internal/metrics"
)

// Channel is one enabled delivery path of a push target.
type Channel struct {
	Name     string
	Notifier Notifier
}

// Factory builds the enabled channels for a push target.
type Factory func(target *config.PushTarget) []Channel

// HTTPFactory returns a Factory that builds live Bark and Feishu channels
// for whichever pairs of the target are fully configured.
func HTTPFactory(opts ...Option) Factory {
	return func(t *config.PushTarget) []Channel {
		var channels []Channel
		if t.BarkEnabled() {
			channels = append(channels, Channel{
				Name:     ChannelBark,
				Notifier: NewBarkNotifier(t.BarkURL, t.BarkToken, opts...),
			})
		}
		if t.FeishuEnabled() {
			channels = append(channels, Channel{
				Name:     ChannelFeishu,
				Notifier: NewFeishuNotifier(t.FeishuWebhook, t.FeishuSecret, opts...),
			})
		}
		return channels
	}
}

// NoOpFactory returns a Factory that mirrors HTTPFactory's channel
// selection but discards every message.
func NoOpFactory(log *slog.Logger) Factory {
	return func(t *config.PushTarget) []Channel {
		var channels []Channel
		if t.BarkEnabled() {
			channels = append(channels, Channel{Name: ChannelBark, Notifier: NewNoOpNotifier(log, ChannelBark)})
		}
		if t.FeishuEnabled() {
			channels = append(channels, Channel{Name: ChannelFeishu, Notifier: NewNoOpNotifier(log, ChannelFeishu)})
		}
		return channels
	}
}

// Dispatcher fans a message out to every enabled channel of every target.
type Dispatcher struct {
	factory Factory
	log     *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithFactory replaces the channel factory.
func WithFactory(f Factory) DispatcherOption {
	return func(d *Dispatcher) {
		d.factory = f
	}
}

// NewDispatcher creates a Dispatcher using live HTTP channels by default.
func NewDispatcher(log *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		factory: HTTPFactory(),
		log:     log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SendAll delivers text to every enabled channel of every target. Channels
// are independent: a failure is logged and counted and never stops the
// remaining sends. It returns the number of deliveries attempted.
func (d *Dispatcher) SendAll(ctx context.Context, text string, targets []config.PushTarget) int {
	attempted := 0
	for i := range targets {
		t := &targets[i]
		sound := t.BarkSound
		if sound == "" {
			sound = config.DefaultSound
		}
		msg := NewMessage(text, sound)

		for _, ch := range d.factory(t) {
			attempted++
			d.send(ctx, i, ch, msg)
		}
	}
	return attempted
}

func (d *Dispatcher) send(ctx context.Context, target int, ch Channel, msg Message) {
	start := time.Now()
	err := ch.Notifier.Send(ctx, msg)
	metrics.NotificationDuration.WithLabelValues(ch.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues(ch.Name).Inc()
		d.log.Error("notification failed",
			"channel", ch.Name,
			"target", target,
			"error", err,
		)
		return
	}

	metrics.NotificationsSentTotal.WithLabelValues(ch.Name).Inc()
	d.log.Info("notification sent",
		"channel", ch.Name,
		"target", target,
	)
}
