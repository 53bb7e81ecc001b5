// Package cmd implements the CLI commands for pickup-monitor.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/pickup-monitor/internal/config"
)

var (
	cfgFile string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "pickup-monitor",
	Short: "Watch Apple Store pickup availability and push alerts",
	Long: "pickup-monitor polls the Apple Store fulfillment API on a cron schedule for the\n" +
		"configured devices and pushes a Bark or Feishu notification for every nearby\n" +
		"store that has a device available for in-store pickup.\n\n" +
		"Run without a subcommand to start monitoring.",
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvFile,
	RunE:              runMonitor,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().
		StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config is read")

	rootCmd.AddCommand(checkCommand())
	rootCmd.AddCommand(configCommand())
	rootCmd.AddCommand(remoteCommand())
	rootCmd.AddCommand(versionCommand())
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadEnvFile loads envFile into the process environment so ${VAR}
// references in the config resolve. A missing file is not an error.
func loadEnvFile(_ *cobra.Command, _ []string) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}
	return nil
}
