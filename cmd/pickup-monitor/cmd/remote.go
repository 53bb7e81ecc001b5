package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/pickup-monitor/internal/api/client"
	"github.com/donaldgifford/pickup-monitor/internal/config"
)

// remoteCommand groups subcommands that query a running instance through
// its ops server. --server and --output can also come from
// PICKUP_MONITOR_SERVER and PICKUP_MONITOR_OUTPUT.
func remoteCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Query a running pickup-monitor through its ops server",
	}
	cmd.PersistentFlags().String("server", "http://localhost:9090", "ops server URL")
	cmd.PersistentFlags().String("output", "table", "output format (table, json)")
	cobra.CheckErr(v.BindPFlag("server", cmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(v.BindPFlag("output", cmd.PersistentFlags().Lookup("output")))

	newClient := func() *apiclient.Client { return apiclient.New(v.GetString("server")) }
	jsonOutput := func() bool { return v.GetString("output") == "json" }

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the schedule and the last pass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newClient().Status(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), s)
			}
			return printStatus(cmd.OutOrStdout(), s)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Run a pass on the server and print the results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newClient().Check(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), p)
			}
			return printPassTable(cmd.OutOrStdout(), p)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "quota",
		Short: "Show fulfillment API usage in the rolling 24h window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := newClient().Quota(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), q)
			}
			return printQuota(cmd.OutOrStdout(), q)
		},
	})

	return cmd
}

func printStatus(w io.Writer, s *apiclient.Status) error {
	tw := newTabWriter(w)
	tw.writef("Enabled:\t%v\n", s.Enabled)
	tw.writef("Schedule:\t%s\n", s.Schedule)
	tw.writef("Location:\t%s\n", s.Location)
	tw.writef("Country:\t%s\n", s.Country)
	tw.writef("Devices:\t%v\n", s.Devices)
	if s.NextRun != nil {
		tw.writef("Next run:\t%s\n", s.NextRun.Local().Format(time.DateTime))
	}
	if s.LastPass != nil {
		tw.writef("Last pass:\t%s (%s)\n", s.LastPass.ID, s.LastPass.FinishedAt.Local().Format(time.DateTime))
	}
	if err := tw.finish(); err != nil {
		return err
	}

	if s.LastPass == nil {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return printPassTable(w, s.LastPass)
}

func printQuota(w io.Writer, q *apiclient.Quota) error {
	tw := newTabWriter(w)
	if q.DailyLimit > 0 {
		tw.writef("Daily limit:\t%d\n", q.DailyLimit)
	} else {
		tw.writef("Daily limit:\tnone\n")
	}
	tw.writef("Used:\t%d\n", q.DailyUsed)
	if q.Remaining != nil {
		tw.writef("Remaining:\t%d\n", *q.Remaining)
	}
	if q.ResetAt != nil {
		tw.writef("Window resets:\t%s\n", q.ResetAt.Local().Format(time.DateTime))
	}
	return tw.finish()
}
