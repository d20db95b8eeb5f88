package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/BrandonDHaskell/Portunus/condo/internal/apiclient"
	"github.com/BrandonDHaskell/Portunus/condo/internal/config"
	"github.com/BrandonDHaskell/Portunus/condo/internal/logger"
	"github.com/BrandonDHaskell/Portunus/condo/internal/render"
	"github.com/BrandonDHaskell/Portunus/condo/internal/session"
	"github.com/BrandonDHaskell/Portunus/condo/internal/views"
)

type rootOptions struct {
	configPath string
	apiURL     string
	timezone   string
	debug      bool
}

// Deps holds everything a command needs, built from config and flags.
type Deps struct {
	Config   *config.ClientConfig
	Logger   zerolog.Logger
	Location *time.Location
	Client   *apiclient.Client
	Loader   *views.Loader
	Sessions session.Store
	Render   *render.Renderer
	Out      io.Writer
}

func (o *rootOptions) deps(cmd *cobra.Command) (*Deps, error) {
	cfg, err := config.LoadClient(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.apiURL != "" {
		cfg.APIURL = o.apiURL
	}
	if o.timezone != "" {
		cfg.Timezone = o.timezone
	}
	if o.debug {
		cfg.Logging.Debug = true
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	log = logger.WithComponent(log, "condoctl")

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	client, err := apiclient.New(apiclient.Config{BaseURL: cfg.APIURL, Timeout: cfg.Timeout, Logger: log})
	if err != nil {
		return nil, err
	}

	table, err := views.LoadTable(cfg.ViewsFile)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	return &Deps{
		Config:   cfg,
		Logger:   log,
		Location: loc,
		Client:   client,
		Loader:   views.NewLoader(client, views.LoaderConfig{Table: table, Location: loc, Logger: log}),
		Sessions: session.Store{Path: cfg.SessionFile},
		Render:   render.New(out, loc),
		Out:      out,
	}, nil
}

// withDeps builds Deps and runs fn.
func (o *rootOptions) withDeps(cmd *cobra.Command, fn func(*Deps) error) error {
	d, err := o.deps(cmd)
	if err != nil {
		return err
	}
	return fn(d)
}

// withSession is withDeps for commands that need a signed-in user.
func (o *rootOptions) withSession(cmd *cobra.Command, fn func(*Deps, session.Session) error) error {
	return o.withDeps(cmd, func(d *Deps) error {
		sess, err := d.session()
		if err != nil {
			return err
		}
		return fn(d, sess)
	})
}

func (d *Deps) session() (session.Session, error) {
	sess, err := d.Sessions.Load()
	if errors.Is(err, session.ErrNoSession) {
		return session.Session{}, errors.New("not logged in; run condoctl login")
	}
	if err != nil {
		return session.Session{}, err
	}
	if sess.Expired(time.Now()) {
		_ = d.Sessions.Clear()
		return session.Session{}, errors.New("session expired; run condoctl login")
	}
	return sess, nil
}

// explain turns a rejected token into a hint.
func explain(err error) error {
	if apiclient.IsUnauthorized(err) {
		return fmt.Errorf("%w (session expired or revoked; run condoctl login)", err)
	}
	return err
}
