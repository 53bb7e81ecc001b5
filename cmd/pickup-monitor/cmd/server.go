package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donaldgifford/pickup-monitor/internal/api/handlers"
	"github.com/donaldgifford/pickup-monitor/internal/api/middleware"
	"github.com/donaldgifford/pickup-monitor/internal/config"
	"github.com/donaldgifford/pickup-monitor/internal/fulfillment"
)

// serverDeps are the components the ops server reports on.
type serverDeps struct {
	ready   handlers.ReadyFunc
	status  handlers.StatusInfo
	passes  handlers.PassSource
	runner  handlers.PassRunner
	next    func() time.Time
	limiter *fulfillment.RateLimiter
}

// newServer builds the ops server: probes, Prometheus metrics and the
// JSON API.
func newServer(log *slog.Logger, d serverDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(
		middleware.RequestLog(log),
		middleware.Metrics(),
		middleware.Recovery(log),
	)

	health := handlers.NewHealthHandler(d.ready)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("pickup-monitor", Version))
	handlers.RegisterStatusRoutes(api, handlers.NewStatusHandler(d.status, d.passes, d.next))
	handlers.RegisterCheckRoutes(api, handlers.NewCheckHandler(d.runner))
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(d.limiter))

	return e
}

// serve runs e until it is shut down.
func serve(e *echo.Echo, cfg *config.ServerConfig, log *slog.Logger) {
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	log.Info("starting ops server", "addr", cfg.Addr)
	if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("ops server error", "error", err)
	}
}

func shutdownServer(e *echo.Echo, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error("shutting down ops server", "error", err)
		return
	}
	log.Info("ops server stopped")
}
