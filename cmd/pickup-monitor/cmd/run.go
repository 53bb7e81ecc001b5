package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/pickup-monitor/internal/config"
	"github.com/donaldgifford/pickup-monitor/pkg/logger"
)

// runMonitor starts scheduled monitoring and blocks until SIGINT or
// SIGTERM.
func runMonitor(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := startService(ctx, cfg, log)
	if err != nil {
		return err
	}

	var srv *echo.Echo
	if cfg.Server.Enabled {
		srv = newServer(log.With("component", "api"), svc.serverDeps())
		go serve(srv, &cfg.Server, log)
	}

	notifySystemd(log, daemon.SdNotifyReady)

	<-ctx.Done()
	log.Info("shutting down")
	notifySystemd(log, daemon.SdNotifyStopping)

	svc.stop(log)
	if srv != nil {
		shutdownServer(srv, log)
	}

	return nil
}

// notifySystemd reports state to systemd when running as a Type=notify
// unit. Outside systemd it does nothing.
func notifySystemd(log *slog.Logger, state string) {
	sent, err := daemon.SdNotify(false, state)
	switch {
	case err != nil:
		log.Warn("systemd notification failed", "state", state, "error", err)
	case sent:
		log.Debug("systemd notified", "state", state)
	}
}
