// Package monitor runs the inventory polling passes: it queries pickup
// availability for every configured device, filters and formats the
// stores, and dispatches notifications when a product can be collected.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/donaldgifford/pickup-monitor/internal/config"
	"github.com/donaldgifford/pickup-monitor/internal/fulfillment"
	"github.com/donaldgifford/pickup-monitor/internal/metrics"
)

const defaultStaggerOffset = 1500 * time.Millisecond

// ErrPassRunning is returned by RunPass while another pass is in progress.
var ErrPassRunning = errors.New("a pass is already running")

// Outcome classifies how a device check ended.
type Outcome string

// Device check outcomes.
const (
	OutcomeChecked   Outcome = "checked"
	OutcomeNoStores  Outcome = "no_stores"
	OutcomeRejected  Outcome = "rejected"
	OutcomeWrongCode Outcome = "wrong_code"
	OutcomeError     Outcome = "error"
	OutcomePanic     Outcome = "panic"
)

// Result summarizes one device check.
type Result struct {
	Device    string    `json:"device"`
	Outcome   Outcome   `json:"outcome"`
	Stores    int       `json:"stores"`
	Retained  int       `json:"retained"`
	Available int       `json:"available"`
	Notified  int       `json:"notified"`
	Messages  []string  `json:"messages,omitempty"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Pass is the record of one run over every device.
type Pass struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Results    []Result  `json:"results"`
}

// Sender fans a message out to push targets and returns the number of
// deliveries attempted. *notify.Dispatcher implements it.
type Sender interface {
	SendAll(ctx context.Context, text string, targets []config.PushTarget) int
}

// Monitor checks every configured device against the upstream API.
type Monitor struct {
	task   *config.TaskConfig
	client fulfillment.Client
	sender Sender
	log    *slog.Logger

	staggerOffset time.Duration
	nowFunc       func() time.Time

	// running is held for the whole of a pass.
	running sync.Mutex

	mu   sync.RWMutex
	last *Pass
}

// Option configures the Monitor.
type Option func(*Monitor)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) {
		m.log = l
	}
}

// WithStaggerOffset sets the delay between device checks within a pass.
func WithStaggerOffset(d time.Duration) Option {
	return func(m *Monitor) {
		m.staggerOffset = d
	}
}

// WithNowFunc overrides the clock used for timestamps.
func WithNowFunc(f func() time.Time) Option {
	return func(m *Monitor) {
		m.nowFunc = f
	}
}

// New creates a Monitor for a validated task.
func New(task *config.TaskConfig, client fulfillment.Client, sender Sender, opts ...Option) *Monitor {
	m := &Monitor{
		task:          task,
		client:        client,
		sender:        sender,
		log:           slog.Default(),
		staggerOffset: defaultStaggerOffset,
		nowFunc:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunPass checks every device in order, waiting the stagger offset between
// devices, and returns the pass it built. Device failures are logged and
// recorded, never returned. Only one pass runs at a time: a call made while
// another pass is running returns ErrPassRunning without touching the
// upstream. Otherwise the only error is the context's, returned with the
// partial pass.
func (m *Monitor) RunPass(ctx context.Context) (Pass, error) {
	if !m.running.TryLock() {
		return Pass{}, ErrPassRunning
	}
	defer m.running.Unlock()

	start := m.nowFunc()
	metrics.PassesTotal.Inc()
	defer func() {
		metrics.PassDuration.Observe(time.Since(start).Seconds())
	}()

	pass := &Pass{
		ID:        uuid.New().String(),
		StartedAt: start,
		Results:   make([]Result, 0, len(m.task.Devices)),
	}
	log := m.log.With("pass", pass.ID)
	log.Debug("pass starting", "devices", len(m.task.Devices))

	err := m.checkDevices(ctx, log, pass)
	pass.FinishedAt = m.nowFunc()

	m.mu.Lock()
	m.last = pass
	m.mu.Unlock()

	if err == nil {
		log.Debug("pass complete", "devices", len(pass.Results))
	}

	out := *pass
	out.Results = slices.Clone(pass.Results)
	return out, err
}

func (m *Monitor) checkDevices(ctx context.Context, log *slog.Logger, pass *Pass) error {
	for i := range m.task.Devices {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		res := m.checkDevice(ctx, log, &m.task.Devices[i])
		pass.Results = append(pass.Results, res)

		// Stagger between devices to avoid upstream bursts.
		if i < len(m.task.Devices)-1 && m.staggerOffset > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(m.staggerOffset):
			}
		}
	}
	return nil
}

// CheckDevice runs one device cycle outside of a pass.
func (m *Monitor) CheckDevice(ctx context.Context, d *config.DeviceItem) Result {
	return m.checkDevice(ctx, m.log, d)
}

// LastPass returns a copy of the most recent pass, if any has run.
func (m *Monitor) LastPass() (Pass, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.last == nil {
		return Pass{}, false
	}
	p := *m.last
	p.Results = slices.Clone(m.last.Results)
	return p, true
}

func (m *Monitor) checkDevice(ctx context.Context, log *slog.Logger, d *config.DeviceItem) (res Result) {
	log = log.With("device", d.Code)
	res = Result{Device: d.Code, CheckedAt: m.nowFunc()}

	defer func() {
		if r := recover(); r != nil {
			log.Error("device check panicked", "panic", r)
			res.Outcome = OutcomePanic
			res.Error = fmt.Sprint(r)
		}
		metrics.DeviceChecksTotal.WithLabelValues(string(res.Outcome)).Inc()
		metrics.StoresAvailable.WithLabelValues(d.Code).Set(float64(res.Available))
	}()

	resp, err := m.client.PickupMessages(ctx, fulfillment.Query{
		Country:  m.task.Country,
		Code:     d.Code,
		Location: m.task.Location,
	})
	switch {
	case errors.Is(err, fulfillment.ErrUnexpectedStatus):
		log.Warn("request rejected, the schedule may be too aggressive",
			"recommended_cron", config.RecommendedSchedule(len(m.task.Devices)),
			"error", err,
		)
		res.Outcome = OutcomeRejected
		res.Error = err.Error()
		return res
	case errors.Is(err, fulfillment.ErrNoStoreList):
		log.Warn("response has no store list, the product code is likely wrong for this storefront",
			"country", m.task.Country,
		)
		res.Outcome = OutcomeWrongCode
		res.Error = err.Error()
		return res
	case err != nil:
		log.Error("fulfillment request failed", "error", err)
		res.Outcome = OutcomeError
		res.Error = err.Error()
		return res
	}

	stores := resp.Stores()
	res.Stores = len(stores)
	if len(stores) == 0 {
		log.Info("no nearby store, check the location", "location", m.task.Location)
		res.Outcome = OutcomeNoStores
		return res
	}

	retained := FilterStores(stores, d.StoreAllowList)
	res.Retained = len(retained)

	for i := range retained {
		s := &retained[i]
		part, ok := s.Part(d.Code)
		if !ok {
			log.Error("store has no availability entry for device", "store", s.StoreName)
			res.Outcome = OutcomeError
			res.Error = "missing availability for " + s.StoreName
			return res
		}

		msg, available := StoreMessage(s, part, m.task.Location)
		res.Messages = append(res.Messages, msg)
		log.Info("store status", "message", msg, "available", available)

		if available {
			res.Available++
			res.Notified += m.sender.SendAll(ctx, msg, d.PushTargets)
		}
	}

	res.Outcome = OutcomeChecked
	return res
}

// Announce sends the startup message through every enabled channel of
// every device and returns the number of deliveries attempted. Failures
// are logged by the sender only.
func (m *Monitor) Announce(ctx context.Context) int {
	text := StartupMessage(m.task.Location)
	attempted := 0
	for i := range m.task.Devices {
		d := &m.task.Devices[i]
		n := m.sender.SendAll(ctx, text, d.PushTargets)
		m.log.Info("startup notification sent", "device", d.Code, "channels", n)
		attempted += n
	}
	return attempted
}
