package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/pickup-monitor/internal/monitor"
)

// PassRunner runs a polling pass on demand. *monitor.Monitor implements it.
type PassRunner interface {
	RunPass(ctx context.Context) (monitor.Pass, error)
}

// CheckHandler handles manual check requests.
type CheckHandler struct {
	runner PassRunner
}

// NewCheckHandler creates a CheckHandler. A nil runner means monitoring
// is disabled and every request is refused.
func NewCheckHandler(r PassRunner) *CheckHandler {
	return &CheckHandler{runner: r}
}

// CheckOutput is the response body for the check endpoint.
type CheckOutput struct {
	Body *monitor.Pass
}

// Check runs one pass over every device and returns its results. It is
// refused while any pass, scheduled or manual, is running.
func (h *CheckHandler) Check(ctx context.Context, _ *struct{}) (*CheckOutput, error) {
	if h.runner == nil {
		return nil, huma.Error503ServiceUnavailable("monitoring is disabled")
	}

	p, err := h.runner.RunPass(ctx)
	switch {
	case errors.Is(err, monitor.ErrPassRunning):
		return nil, huma.Error409Conflict("a pass is already running")
	case err != nil:
		return nil, huma.Error500InternalServerError("check interrupted: " + err.Error())
	}
	return &CheckOutput{Body: &p}, nil
}

// RegisterCheckRoutes registers the manual check endpoint with the Huma API.
func RegisterCheckRoutes(api huma.API, h *CheckHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "run-check",
		Method:      http.MethodPost,
		Path:        "/api/v1/check",
		Summary:     "Run a check now",
		Description: "Runs one polling pass over every device, dispatching notifications " +
			"for available stores, and returns the per-device results.",
		Tags: []string{"monitor"},
		Errors: []int{
			http.StatusConflict,
			http.StatusInternalServerError,
			http.StatusServiceUnavailable,
		},
	}, h.Check)
}
