package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/Portunus/condo/internal/records"
)

func newDurationCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "duration <start> <end>",
		Short:   "Length of a shift given HH:MM start and end times",
		Example: "  condoctl duration 22:00 06:00",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := records.ShiftDuration(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), records.FormatShift(d))
			return nil
		},
	}
}
