package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/pickup-monitor/internal/config"
	"github.com/donaldgifford/pickup-monitor/internal/notify"
	"github.com/donaldgifford/pickup-monitor/pkg/logger"
)

func checkCommand() *cobra.Command {
	var (
		dryRun bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one polling pass and print the results",
		Long: "check runs a single pass over every configured device, sending notifications\n" +
			"for available stores, and prints the per-device results. With --dry-run the\n" +
			"notifications are logged instead of sent.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := cfg.Task.Validate(); err != nil {
				return fmt.Errorf("validating task: %w", err)
			}

			log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

			factory := notify.HTTPFactory(notify.WithLogger(log.With("component", "notify")))
			if dryRun {
				factory = notify.NoOpFactory(log.With("component", "notify"))
			}

			m := newMonitor(cfg, newFulfillmentClient(&cfg.Upstream), factory, log)
			pass, err := m.RunPass(cmd.Context())
			if err != nil {
				return fmt.Errorf("running pass: %w", err)
			}

			if output == "json" {
				return printJSON(cmd.OutOrStdout(), &pass)
			}
			return printPassTable(cmd.OutOrStdout(), &pass)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log notifications instead of sending them")
	cmd.Flags().StringVar(&output, "output", "table", "output format (table, json)")

	return cmd
}
