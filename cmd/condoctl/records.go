package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/Portunus/condo/internal/apiclient"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
	"github.com/BrandonDHaskell/Portunus/condo/internal/refresh"
	"github.com/BrandonDHaskell/Portunus/condo/internal/session"
	"github.com/BrandonDHaskell/Portunus/condo/internal/views"
)

type queryFlags struct {
	from   string
	to     string
	status string
}

func (f *queryFlags) register(cmd *cobra.Command, withStatus bool) {
	cmd.Flags().StringVar(&f.from, "from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last day to include (YYYY-MM-DD)")
	if withStatus {
		cmd.Flags().StringVar(&f.status, "status", "", "Only show this status (e.g. GRANTED, DENIED)")
	}
}

func (f *queryFlags) query() views.Query {
	return views.Query{From: f.from, To: f.to, Status: f.status}
}

// newViewCmd builds a read-only command for one view kind.
func newViewCmd(opts *rootOptions, kind views.Kind, use, short string, withStatus bool) *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(d *Deps, sess session.Session) error {
				snap, err := d.Loader.Load(cmd.Context(), sess, kind, flags.query())
				d.Render.Snapshot(snap)
				return explain(err)
			})
		},
	}
	flags.register(cmd, withStatus)
	return cmd
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	return newViewCmd(opts, views.KindAccessHistory, "history", "Show door access history", true)
}

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	return newViewCmd(opts, views.KindSchedule, "schedule", "Show shift schedule grouped by day", false)
}

func newDashboardCmd(opts *rootOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Summarise every view available to your role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(d *Deps, sess session.Session) error {
				load := func(ctx context.Context) error {
					if sess.HasRole(types.RoleSecurity) {
						st, err := d.Client.WithToken(sess.Token).SecurityStatistics(ctx)
						if err != nil {
							d.Render.Failure("statistics", apiclient.Failed(err))
						} else {
							d.Render.Statistics(st)
							fmt.Fprintln(d.Out)
						}
					}
					snaps, err := d.Loader.Dashboard(ctx, sess)
					if snaps != nil {
						d.Render.Dashboard(snaps)
					}
					return err
				}
				if watch {
					return runWatch(cmd.Context(), d, "dashboard", d.Config.Refresh.Dashboard, load)
				}

				// Individual failures are already shown in place.
				err := load(cmd.Context())
				if err != nil {
					d.Logger.Debug().Err(err).Msg("dashboard incomplete")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep refreshing until interrupted")
	return cmd
}

// runWatch repeats load on interval until ctx is cancelled.
func runWatch(ctx context.Context, d *Deps, name string, interval time.Duration, load refresh.LoadFunc) error {
	r := refresh.New(name, interval, func(ctx context.Context) error {
		// Clear the terminal between frames.
		fmt.Fprint(d.Out, "\x1b[H\x1b[2J")
		return load(ctx)
	}, d.Logger)
	r.Start(ctx)
	<-ctx.Done()
	r.Stop()
	d.Logger.Debug().Str("view", name).Int64("runs", r.Runs()).Msg("watch stopped")
	return nil
}
