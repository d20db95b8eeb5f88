package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
	"github.com/BrandonDHaskell/Portunus/condo/internal/session"
	"github.com/BrandonDHaskell/Portunus/condo/internal/views"
)

func newVisitorsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visitors",
		Short: "Manage visitor invitations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listVisitors(cmd, opts)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List visitors",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return listVisitors(cmd, opts)
			},
		},
		newVisitorAddCmd(opts),
		newVisitorStatusCmd(opts, "approve", types.VisitorApproved),
		newVisitorStatusCmd(opts, "deny", types.VisitorDenied),
		newVisitorDeleteCmd(opts),
		newVisitorFaceCmd(opts),
	)
	return cmd
}

func listVisitors(cmd *cobra.Command, opts *rootOptions) error {
	return opts.withSession(cmd, func(d *Deps, sess session.Session) error {
		snap, err := d.Loader.Load(cmd.Context(), sess, views.KindVisitors, views.Query{})
		d.Render.Snapshot(snap)
		return explain(err)
	})
}

// residentSession narrows withSession to resident accounts.
func residentSession(cmd *cobra.Command, opts *rootOptions, fn func(*Deps, session.Session) error) error {
	return opts.withSession(cmd, func(d *Deps, sess session.Session) error {
		if !sess.HasRole(types.RoleResident) {
			return errors.New("visitor management is only available to residents")
		}
		return fn(d, sess)
	})
}

func parseVisitorID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid visitor id %q", s)
	}
	return id, nil
}

func newVisitorAddCmd(opts *rootOptions) *cobra.Command {
	var req types.CreateVisitorRequest

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Invite a visitor",
		Example: `  condoctl visitors add --name "Mary Lee" --contact 98765432 --unit B-12-05 --start 2025-11-21T10:00 --end 2025-11-21T12:00`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return residentSession(cmd, opts, func(d *Deps, sess session.Session) error {
				v, err := d.Client.WithToken(sess.Token).CreateVisitor(cmd.Context(), sess.ID, req)
				if err != nil {
					return explain(err)
				}
				fmt.Fprintf(d.Out, "Visitor %d created (%s).\n", v.VisitorID, v.Status)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.VisitorName, "name", "", "Visitor name")
	f.StringVar(&req.ContactNumber, "contact", "", "Contact number")
	f.StringVar(&req.VisitingUnit, "unit", "", "Unit being visited")
	f.StringVar(&req.StartTime, "start", "", "Visit start (YYYY-MM-DDTHH:MM)")
	f.StringVar(&req.EndTime, "end", "", "Visit end (YYYY-MM-DDTHH:MM)")
	return cmd
}

func newVisitorStatusCmd(opts *rootOptions, use, status string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <visitor-id>",
		Short: "Set a visitor to " + status,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVisitorID(args[0])
			if err != nil {
				return err
			}
			return residentSession(cmd, opts, func(d *Deps, sess session.Session) error {
				v, err := d.Client.WithToken(sess.Token).UpdateVisitorStatus(cmd.Context(), sess.ID, id, status)
				if err != nil {
					return explain(err)
				}
				fmt.Fprintf(d.Out, "Visitor %d is now %s.\n", v.VisitorID, v.Status)
				return nil
			})
		},
	}
}

func newVisitorDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <visitor-id>",
		Short: "Remove a visitor invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVisitorID(args[0])
			if err != nil {
				return err
			}
			return residentSession(cmd, opts, func(d *Deps, sess session.Session) error {
				if err := d.Client.WithToken(sess.Token).DeleteVisitor(cmd.Context(), sess.ID, id); err != nil {
					return explain(err)
				}
				fmt.Fprintf(d.Out, "Visitor %d deleted.\n", id)
				return nil
			})
		},
	}
}

func newVisitorFaceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload-face <visitor-id> <image-file>",
		Short: "Attach a JPEG or PNG face image to a visitor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVisitorID(args[0])
			if err != nil {
				return err
			}
			return residentSession(cmd, opts, func(d *Deps, sess session.Session) error {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()

				info, err := f.Stat()
				if err != nil {
					return err
				}
				contentType, err := sniffImage(f)
				if err != nil {
					return err
				}

				if err := d.Client.WithToken(sess.Token).UploadVisitorFace(cmd.Context(), sess.ID, id, filepath.Base(args[1]), contentType, f); err != nil {
					return explain(err)
				}
				fmt.Fprintf(d.Out, "Uploaded %s (%s) for visitor %d.\n", filepath.Base(args[1]), humanize.Bytes(uint64(info.Size())), id)
				return nil
			})
		},
	}
}

// sniffImage detects the content type from the file header and rewinds.
func sniffImage(f io.ReadSeeker) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	contentType := http.DetectContentType(head[:n])
	if contentType != "image/jpeg" && contentType != "image/png" {
		return "", fmt.Errorf("unsupported image type %s (want JPEG or PNG)", contentType)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return contentType, nil
}
