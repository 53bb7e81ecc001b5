package client

import (
	"context"
	"time"

	"github.com/donaldgifford/pickup-monitor/internal/monitor"
)

// Status is the body of GET /api/v1/status.
type Status struct {
	Enabled  bool          `json:"enabled"`
	Schedule string        `json:"schedule"`
	Location string        `json:"location"`
	Country  string        `json:"country"`
	Devices  []string      `json:"devices"`
	NextRun  *time.Time    `json:"next_run,omitempty"`
	LastPass *monitor.Pass `json:"last_pass,omitempty"`
}

// Quota is the body of GET /api/v1/quota.
type Quota struct {
	DailyLimit int64      `json:"daily_limit"`
	DailyUsed  int64      `json:"daily_used"`
	Remaining  *int64     `json:"remaining,omitempty"`
	ResetAt    *time.Time `json:"reset_at,omitempty"`
}

// Status returns the monitor's schedule and last pass.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var s Status
	if err := c.get(ctx, "/api/v1/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Check runs a pass on the server and returns its results. It fails with
// an *APIError carrying 409 while another manual check is running.
func (c *Client) Check(ctx context.Context) (*monitor.Pass, error) {
	var p monitor.Pass
	if err := c.post(ctx, "/api/v1/check", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Quota returns upstream call usage.
func (c *Client) Quota(ctx context.Context) (*Quota, error) {
	var q Quota
	if err := c.get(ctx, "/api/v1/quota", &q); err != nil {
		return nil, err
	}
	return &q, nil
}
