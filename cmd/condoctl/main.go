// Command condoctl is the terminal client for the condo access backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "condoctl",
		Short:         "Access history, alerts, visitors and shifts for condo residents, staff and security",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/condoctl/config.yaml)")
	pf.StringVar(&opts.apiURL, "api-url", "", "Backend base URL (overrides config)")
	pf.StringVar(&opts.timezone, "timezone", "", "IANA zone for dates and times (overrides config)")
	pf.BoolVar(&opts.debug, "debug", false, "Log API calls to stderr")

	rootCmd.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newHistoryCmd(opts),
		newAlertsCmd(opts),
		newAttendanceCmd(opts),
		newScheduleCmd(opts),
		newVisitorsCmd(opts),
		newSecurityCmd(opts),
		newDashboardCmd(opts),
		newDurationCmd(),
	)

	return rootCmd
}
