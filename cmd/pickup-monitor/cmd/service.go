package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/donaldgifford/pickup-monitor/internal/api/handlers"
	"github.com/donaldgifford/pickup-monitor/internal/config"
	"github.com/donaldgifford/pickup-monitor/internal/fulfillment"
	"github.com/donaldgifford/pickup-monitor/internal/monitor"
	"github.com/donaldgifford/pickup-monitor/internal/notify"
)

const shutdownTimeout = 10 * time.Second

var errNotStarted = errors.New("scheduler not started")

// service owns the monitoring components built from one configuration.
// When the task section is invalid it stays disabled and only the ops
// server runs.
type service struct {
	cfg       *config.Config
	disabled  error
	client    *fulfillment.HTTPClient
	monitor   *monitor.Monitor
	scheduler *monitor.Scheduler
}

// newFulfillmentClient builds the upstream client with its rate limiter.
func newFulfillmentClient(u *config.UpstreamConfig) *fulfillment.HTTPClient {
	opts := []fulfillment.Option{
		fulfillment.WithHTTPClient(&http.Client{Timeout: u.Timeout}),
		fulfillment.WithRateLimiter(fulfillment.NewRateLimiter(
			u.RateLimit.PerSecond,
			u.RateLimit.Burst,
			u.RateLimit.DailyLimit,
		)),
	}
	if u.UserAgent != "" {
		opts = append(opts, fulfillment.WithUserAgent(u.UserAgent))
	}
	if u.BaseURL != "" {
		base := strings.TrimSuffix(u.BaseURL, "/")
		opts = append(opts, fulfillment.WithBaseURLResolver(func(string) string { return base }))
	}
	return fulfillment.NewHTTPClient(opts...)
}

// newMonitor wires a Monitor to a fulfillment client and dispatcher. The
// task must already be validated.
func newMonitor(
	cfg *config.Config,
	client fulfillment.Client,
	factory notify.Factory,
	log *slog.Logger,
) *monitor.Monitor {
	dispatcher := notify.NewDispatcher(
		log.With("component", "notify"),
		notify.WithFactory(factory),
	)
	return monitor.New(&cfg.Task, client, dispatcher,
		monitor.WithLogger(log.With("component", "monitor")),
		monitor.WithStaggerOffset(cfg.Upstream.StaggerOffset),
	)
}

// startService validates the task, announces startup and starts the
// scheduler. An invalid task disables monitoring; an invalid cron
// expression is fatal.
func startService(ctx context.Context, cfg *config.Config, log *slog.Logger) (*service, error) {
	s := &service{cfg: cfg}

	if err := cfg.Task.Validate(); err != nil {
		s.disabled = fmt.Errorf("monitoring disabled: %w", err)
		log.Error("task configuration is invalid, monitoring disabled", "error", err)
		return s, nil
	}

	n := len(cfg.Task.Devices)
	log.Info("monitor configured",
		"devices", n,
		"location", cfg.Task.Location,
		"country", cfg.Task.Country,
		"schedule", cfg.Task.Schedule,
		"recommended_cron", config.RecommendedSchedule(n),
	)

	s.client = newFulfillmentClient(&cfg.Upstream)
	factory := notify.HTTPFactory(notify.WithLogger(log.With("component", "notify")))
	s.monitor = newMonitor(cfg, s.client, factory, log)

	sched, err := monitor.NewScheduler(s.monitor, cfg.Task.Schedule, log.With("component", "scheduler"))
	if err != nil {
		return nil, err
	}
	s.scheduler = sched

	s.monitor.Announce(ctx)
	s.scheduler.Start()

	return s, nil
}

// ready reports whether scheduled polling is running.
func (s *service) ready(context.Context) error {
	if s.disabled != nil {
		return s.disabled
	}
	if s.scheduler == nil {
		return errNotStarted
	}
	return nil
}

// serverDeps exposes the service to the ops server. Fields stay nil while
// monitoring is disabled.
func (s *service) serverDeps() serverDeps {
	codes := make([]string, 0, len(s.cfg.Task.Devices))
	for i := range s.cfg.Task.Devices {
		codes = append(codes, s.cfg.Task.Devices[i].Code)
	}

	d := serverDeps{
		ready: s.ready,
		status: handlers.StatusInfo{
			Enabled:  s.scheduler != nil,
			Schedule: s.cfg.Task.Schedule,
			Location: s.cfg.Task.Location,
			Country:  s.cfg.Task.Country,
			Devices:  codes,
		},
	}
	if s.monitor != nil {
		d.passes = s.monitor
		d.runner = s.monitor
		d.next = s.scheduler.Next
		d.limiter = s.client.RateLimiter()
	}
	return d
}

// stop cancels the in-flight pass and waits for it to return.
func (s *service) stop(log *slog.Logger) {
	if s.scheduler == nil {
		return
	}
	done := s.scheduler.Stop()
	select {
	case <-done.Done():
		log.Info("scheduler stopped")
	case <-time.After(shutdownTimeout):
		log.Warn("timed out waiting for the running pass")
	}
}
