package main

import (
	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/Portunus/condo/internal/session"
	"github.com/BrandonDHaskell/Portunus/condo/internal/views"
)

func newSecurityCmd(opts *rootOptions) *cobra.Command {
	cmd := newViewCmd(opts, views.KindSecurityAccess, "security", "Show building-wide door access (security officers)", true)
	cmd.AddCommand(
		newViewCmd(opts, views.KindSecurityVisitors, "visitors", "Show visitors currently in the building", false),
		&cobra.Command{
			Use:   "stats",
			Short: "Show building counters for today",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withSession(cmd, func(d *Deps, sess session.Session) error {
					st, err := d.Client.WithToken(sess.Token).SecurityStatistics(cmd.Context())
					if err != nil {
						return explain(err)
					}
					d.Render.Statistics(st)
					return nil
				})
			},
		},
	)
	return cmd
}
