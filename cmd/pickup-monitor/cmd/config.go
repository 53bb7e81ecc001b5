package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/pickup-monitor/internal/config"
	"github.com/donaldgifford/pickup-monitor/internal/monitor"
)

func configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg.Redacted()); err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			return enc.Close()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check the task configuration and the cron expression",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := cfg.Task.Validate(); err != nil {
				return fmt.Errorf("validating task: %w", err)
			}
			if _, err := monitor.Parser.Parse(cfg.Task.Schedule); err != nil {
				return fmt.Errorf("parsing schedule %q: %w", cfg.Task.Schedule, err)
			}

			n := len(cfg.Task.Devices)
			fmt.Fprintf(cmd.OutOrStdout(), "configuration valid: %d device(s), schedule %q (recommended %q)\n",
				n, cfg.Task.Schedule, config.RecommendedSchedule(n))
			return nil
		},
	})

	return cmd
}
