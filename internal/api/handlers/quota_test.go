package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/pickup-monitor/internal/api/handlers"
	"github.com/donaldgifford/pickup-monitor/internal/fulfillment"
)

func TestGetQuota(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rl         *fulfillment.RateLimiter
		preCalls   int
		wantLimit  int64
		wantUsed   int64
		wantRemain *int64
		wantReset  bool
	}{
		{
			name: "nil rate limiter returns zeroes",
		},
		{
			name:       "fresh capped limiter",
			rl:         fulfillment.NewRateLimiter(100, 10, 5000),
			wantLimit:  5000,
			wantRemain: ptr(int64(5000)),
			wantReset:  true,
		},
		{
			name:       "capped limiter with usage",
			rl:         fulfillment.NewRateLimiter(100, 10, 100),
			preCalls:   3,
			wantLimit:  100,
			wantUsed:   3,
			wantRemain: ptr(int64(97)),
			wantReset:  true,
		},
		{
			name:      "uncapped limiter omits remaining",
			rl:        fulfillment.NewRateLimiter(100, 10, 0),
			preCalls:  2,
			wantUsed:  2,
			wantReset: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.rl != nil {
				for range tt.preCalls {
					require.NoError(t, tt.rl.Wait(t.Context()))
				}
			}

			_, api := humatest.New(t)
			handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(tt.rl))

			resp := api.Get("/api/v1/quota")
			require.Equal(t, http.StatusOK, resp.Code)

			var body struct {
				DailyLimit int64      `json:"daily_limit"`
				DailyUsed  int64      `json:"daily_used"`
				Remaining  *int64     `json:"remaining"`
				ResetAt    *time.Time `json:"reset_at"`
			}
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

			assert.Equal(t, tt.wantLimit, body.DailyLimit)
			assert.Equal(t, tt.wantUsed, body.DailyUsed)
			assert.Equal(t, tt.wantRemain, body.Remaining)
			assert.Equal(t, tt.wantReset, body.ResetAt != nil)
		})
	}
}

func TestGetQuota_ResetAtValue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC)
	rl := fulfillment.NewRateLimiter(
		5, 10, 20000,
		fulfillment.WithRateLimiterNowFunc(func() time.Time { return now }),
	)

	_, api := humatest.New(t)
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(rl))

	resp := api.Get("/api/v1/quota")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "2026-06-16T14:30:00Z")
}

func ptr[T any](v T) *T { return &v }
