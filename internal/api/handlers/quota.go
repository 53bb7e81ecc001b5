package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/pickup-monitor/internal/fulfillment"
)

// QuotaHandler reports upstream call usage.
type QuotaHandler struct {
	rl *fulfillment.RateLimiter
}

// NewQuotaHandler creates a new QuotaHandler.
func NewQuotaHandler(rl *fulfillment.RateLimiter) *QuotaHandler {
	return &QuotaHandler{rl: rl}
}

// QuotaOutput is the response body for the quota endpoint.
type QuotaOutput struct {
	Body struct {
		DailyLimit int64      `json:"daily_limit" example:"20000" doc:"Configured daily call cap, 0 when uncapped"`
		DailyUsed  int64      `json:"daily_used" example:"142" doc:"Calls made in the current 24-hour window"`
		Remaining  *int64     `json:"remaining,omitempty" example:"19858" doc:"Calls left in the window, absent when uncapped"`
		ResetAt    *time.Time `json:"reset_at,omitempty" example:"2026-06-16T14:30:00Z" doc:"When the current window expires"`
	}
}

// GetQuota returns the current upstream call usage.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	resp := &QuotaOutput{}
	if h.rl == nil {
		return resp, nil
	}

	resp.Body.DailyLimit = h.rl.MaxDaily()
	resp.Body.DailyUsed = h.rl.DailyCount()
	reset := h.rl.ResetAt()
	resp.Body.ResetAt = &reset

	if h.rl.MaxDaily() > 0 {
		remaining := max(h.rl.MaxDaily()-h.rl.DailyCount(), 0)
		resp.Body.Remaining = &remaining
	}

	return resp, nil
}

// RegisterQuotaRoutes registers the quota endpoint with the Huma API.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get upstream call usage",
		Description: "Returns the upstream calls made in the rolling 24-hour window and the configured cap.",
		Tags:        []string{"monitor"},
	}, h.GetQuota)
}
