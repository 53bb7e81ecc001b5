package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/pickup-monitor/internal/monitor"
)

// PassSource exposes the most recent polling pass.
type PassSource interface {
	LastPass() (monitor.Pass, bool)
}

// StatusInfo is the static part of the status report.
type StatusInfo struct {
	Enabled  bool
	Schedule string
	Location string
	Country  string
	Devices  []string
}

// StatusHandler serves GET /api/v1/status.
type StatusHandler struct {
	info   StatusInfo
	passes PassSource
	next   func() time.Time
}

// NewStatusHandler creates a StatusHandler. passes and next may be nil
// when monitoring is disabled.
func NewStatusHandler(info StatusInfo, passes PassSource, next func() time.Time) *StatusHandler {
	return &StatusHandler{info: info, passes: passes, next: next}
}

// StatusOutput is the response for GET /api/v1/status.
type StatusOutput struct {
	Body struct {
		Enabled  bool          `json:"enabled" doc:"Whether scheduled polling is running"`
		Schedule string        `json:"schedule" example:"*/3 * * * * ?" doc:"Cron expression with seconds"`
		Location string        `json:"location" doc:"Area searched for stores"`
		Country  string        `json:"country" example:"CN" doc:"Storefront code"`
		Devices  []string      `json:"devices" doc:"Watched product codes"`
		NextRun  *time.Time    `json:"next_run,omitempty" doc:"Next scheduled pass"`
		LastPass *monitor.Pass `json:"last_pass,omitempty" doc:"Most recent pass with per-device results"`
	}
}

// GetStatus reports the schedule and the most recent pass.
func (h *StatusHandler) GetStatus(_ context.Context, _ *struct{}) (*StatusOutput, error) {
	resp := &StatusOutput{}
	resp.Body.Enabled = h.info.Enabled
	resp.Body.Schedule = h.info.Schedule
	resp.Body.Location = h.info.Location
	resp.Body.Country = h.info.Country
	resp.Body.Devices = h.info.Devices

	if h.next != nil {
		if n := h.next(); !n.IsZero() {
			resp.Body.NextRun = &n
		}
	}
	if h.passes != nil {
		if p, ok := h.passes.LastPass(); ok {
			resp.Body.LastPass = &p
		}
	}

	return resp, nil
}

// RegisterStatusRoutes registers the status route on the Huma API.
func RegisterStatusRoutes(api huma.API, h *StatusHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/status",
		Summary:     "Get monitor status",
		Description: "Returns the watched devices, the schedule, the next run and the last pass results.",
		Tags:        []string{"monitor"},
	}, h.GetStatus)
}
