package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/Portunus/condo/internal/apiclient"
	"github.com/BrandonDHaskell/Portunus/condo/internal/session"
)

type loginFlags struct {
	username string
	password string
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var flags loginFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long:  "Sign in with username and password. Without --password the password is read from the first line of stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDeps(cmd, func(d *Deps) error {
				return runLogin(cmd, d, flags)
			})
		},
	}

	cmd.Flags().StringVarP(&flags.username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&flags.password, "password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func runLogin(cmd *cobra.Command, d *Deps, flags loginFlags) error {
	password := flags.password
	if password == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	resp, err := d.Client.Login(cmd.Context(), flags.username, password)
	if err != nil {
		var ae *apiclient.APIError
		if errors.As(err, &ae) {
			return errors.New(ae.Message)
		}
		return err
	}

	sess, err := session.FromLogin(resp, time.Now())
	if err != nil {
		return err
	}
	if err := d.Sessions.Save(sess); err != nil {
		return err
	}

	name := sess.FullName
	if name == "" {
		name = sess.Username
	}
	fmt.Fprintf(d.Out, "Logged in as %s (%s)\n", name, sess.Role)
	return nil
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget it locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withDeps(cmd, func(d *Deps) error {
				sess, err := d.Sessions.Load()
				if errors.Is(err, session.ErrNoSession) {
					fmt.Fprintln(d.Out, "Not logged in.")
					return nil
				}
				if err != nil {
					return err
				}

				// A token the server no longer accepts is as good as revoked.
				if err := d.Client.WithToken(sess.Token).Logout(cmd.Context()); err != nil && !apiclient.IsUnauthorized(err) {
					d.Logger.Warn().Err(err).Msg("server logout failed")
				}
				if err := d.Sessions.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(d.Out, "Logged out.")
				return nil
			})
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(d *Deps, sess session.Session) error {
				resp, err := d.Client.WithToken(sess.Token).CheckSession(cmd.Context())
				if err != nil {
					return explain(err)
				}
				if !resp.Authenticated {
					return errors.New("session is no longer valid; run condoctl login")
				}

				fmt.Fprintf(d.Out, "User:  %s\n", sess.Username)
				if sess.FullName != "" {
					fmt.Fprintf(d.Out, "Name:  %s\n", sess.FullName)
				}
				fmt.Fprintf(d.Out, "Role:  %s\n", sess.Role)
				fmt.Fprintf(d.Out, "ID:    %d\n", sess.ID)
				if !sess.ExpiresAt.IsZero() {
					fmt.Fprintf(d.Out, "Expires: %s\n", humanize.Time(sess.ExpiresAt))
				}
				return nil
			})
		},
	}
}
