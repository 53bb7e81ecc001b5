package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/pickup-monitor/internal/metrics"
)

// Runner executes one polling pass. It returns ErrPassRunning when a pass
// is already in progress, whoever started it.
type Runner interface {
	RunPass(ctx context.Context) (Pass, error)
}

// Scheduler fires polling passes on a seconds-resolution cron expression.
// A tick that arrives while a pass is still running is skipped.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	log     *slog.Logger
	entryID cron.EntryID

	ctx    context.Context
	cancel context.CancelFunc
}

// SchedulerOption configures the Scheduler.
type SchedulerOption func(*schedulerOptions)

type schedulerOptions struct {
	location *time.Location
}

// WithLocation sets the time zone schedules are evaluated in.
func WithLocation(loc *time.Location) SchedulerOption {
	return func(o *schedulerOptions) {
		o.location = loc
	}
}

// Parser accepts five or six fields (seconds optional), descriptors such
// as @every 30s, and "?" as a day wildcard.
var Parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// NewScheduler creates a Scheduler that calls r.RunPass on spec. An
// invalid expression is an error.
func NewScheduler(r Runner, spec string, log *slog.Logger, opts ...SchedulerOption) (*Scheduler, error) {
	o := schedulerOptions{location: time.Local}
	for _, opt := range opts {
		opt(&o)
	}

	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithParser(Parser),
		cron.WithLocation(o.location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   c,
		runner: r,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}

	id, err := c.AddFunc(spec, s.runPass)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("parsing schedule %q: %w", spec, err)
	}
	s.entryID = id

	return s, nil
}

// Start begins running scheduled passes.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop cancels any in-flight pass and stops the scheduler. The returned
// context is done once the running pass has returned.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	s.cancel()
	return s.cron.Stop()
}

// Next returns the next activation time, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runPass() {
	s.log.Debug("scheduled pass starting")
	_, err := s.runner.RunPass(s.ctx)
	switch {
	case errors.Is(err, ErrPassRunning):
		metrics.PassesSkippedTotal.Inc()
		s.log.Warn("pass skipped, previous pass still running")
	case err != nil:
		s.log.Warn("scheduled pass interrupted", "error", err)
	}
}

// cronLogger routes robfig/cron's logging into slog. Routine scheduler
// chatter goes to debug.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
