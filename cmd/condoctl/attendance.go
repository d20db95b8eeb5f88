package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
	"github.com/BrandonDHaskell/Portunus/condo/internal/session"
	"github.com/BrandonDHaskell/Portunus/condo/internal/views"
)

func newAttendanceCmd(opts *rootOptions) *cobra.Command {
	cmd := newViewCmd(opts, views.KindAttendance, "attendance", "Show attendance records and hours worked", false)
	cmd.AddCommand(
		newAttendanceRecordCmd(opts, "check-in", types.AttendanceEntry, "Record arriving for a shift"),
		newAttendanceRecordCmd(opts, "check-out", types.AttendanceExit, "Record leaving the current shift"),
	)
	return cmd
}

func newAttendanceRecordCmd(opts *rootOptions, use, action, short string) *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(d *Deps, sess session.Session) error {
				if !sess.HasRole(types.RoleStaff, types.RoleSecurity) {
					return errors.New("attendance is only available to staff")
				}
				rec, err := d.Client.WithToken(sess.Token).RecordAttendance(cmd.Context(), sess.ID, action, location)
				if err != nil {
					return explain(err)
				}
				if rec.ExitTime != nil && rec.DurationHours != nil {
					fmt.Fprintf(d.Out, "Checked out at %s after %sh.\n", *rec.ExitTime, humanize.FtoaWithDigits(*rec.DurationHours, 2))
					return nil
				}
				fmt.Fprintf(d.Out, "Checked in at %s.\n", rec.EntryTime)
				return nil
			})
		},
	}
	if action == types.AttendanceEntry {
		cmd.Flags().StringVar(&location, "location", "", "Where you are checking in")
	}
	return cmd
}
