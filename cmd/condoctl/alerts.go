package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/Portunus/condo/internal/session"
	"github.com/BrandonDHaskell/Portunus/condo/internal/views"
)

type alertFlags struct {
	persist bool
	watch   bool
}

func newAlertsCmd(opts *rootOptions) *cobra.Command {
	var flags alertFlags

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List and acknowledge security alerts",
		Long: `List security alerts. The read, read-all and clear-read subcommands change
the list shown by this invocation; with --persist (or persist_mark_read in the
config) read markers are also saved on the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlerts(cmd, opts, flags, nil)
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVar(&flags.persist, "persist", false, "Save read markers on the server")
	pf.BoolVar(&flags.watch, "watch", false, "Keep refreshing the list until interrupted")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List alerts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAlerts(cmd, opts, flags, nil)
			},
		},
		&cobra.Command{
			Use:   "read <alert-id>",
			Short: "Mark one alert as read",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAlerts(cmd, opts, flags, func(ctx context.Context, d *Deps, box *views.AlertBox) error {
					if err := box.MarkRead(ctx, args[0]); err != nil {
						return explain(err)
					}
					fmt.Fprintf(d.Out, "Alert %s marked as read.\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "read-all",
			Short: "Mark every alert as read",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAlerts(cmd, opts, flags, func(ctx context.Context, d *Deps, box *views.AlertBox) error {
					n, err := box.MarkAllRead(ctx)
					fmt.Fprintf(d.Out, "%d alert(s) marked as read.\n", n)
					return explain(err)
				})
			},
		},
		&cobra.Command{
			Use:   "clear-read",
			Short: "Hide alerts that have been read",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runAlerts(cmd, opts, flags, func(_ context.Context, d *Deps, box *views.AlertBox) error {
					fmt.Fprintf(d.Out, "%d read alert(s) cleared.\n", box.ClearRead())
					return nil
				})
			},
		},
	)

	return cmd
}

type alertAction func(ctx context.Context, d *Deps, box *views.AlertBox) error

// runAlerts loads the alert list, applies action to the local copy and
// renders the result.
func runAlerts(cmd *cobra.Command, opts *rootOptions, flags alertFlags, action alertAction) error {
	return opts.withSession(cmd, func(d *Deps, sess session.Session) error {
		persist := flags.persist || d.Config.PersistMarkRead

		load := func(ctx context.Context) error {
			snap, err := d.Loader.Load(ctx, sess, views.KindAlerts, views.Query{})
			if err != nil {
				d.Render.Snapshot(snap)
				return explain(err)
			}
			if action != nil {
				box := d.Loader.AlertBox(snap, sess, persist)
				if err := action(ctx, d, box); err != nil {
					return err
				}
				d.Render.Alerts(box.Alerts())
				fmt.Fprintf(d.Out, "%d unread\n", box.Unread())
				return nil
			}
			d.Render.Snapshot(snap)
			return nil
		}

		if flags.watch && action == nil {
			return runWatch(cmd.Context(), d, "alerts", d.Config.Refresh.Alerts, load)
		}
		return load(cmd.Context())
	})
}
