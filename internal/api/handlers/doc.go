// Package handlers implements the HTTP handlers for the pickup-monitor ops
// server: probes via plain Echo handlers and the JSON API via Huma.
package handlers

// ProbeResponse is the body of the liveness and readiness probes.
type ProbeResponse struct {
	Status string `json:"status" example:"ok"`
	Reason string `json:"reason,omitempty" example:"monitoring disabled: location is required"`
}
