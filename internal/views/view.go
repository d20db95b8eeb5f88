package views

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/Portunus/condo/internal/apiclient"
	"github.com/BrandonDHaskell/Portunus/condo/internal/records"
	"github.com/BrandonDHaskell/Portunus/condo/internal/session"
)

var (
	ErrUnknownView = errors.New("unknown view")
	ErrForbidden   = errors.New("view not available for this role")
	ErrNoSuchAlert = errors.New("no such alert")
)

// Query is the user's filter input.  Dates are YYYY-MM-DD; empty values
// impose no restriction.
type Query struct {
	From   string
	To     string
	Status string
}

func (q Query) constraints(loc *time.Location) (records.Constraints, error) {
	from, err := records.ParseDay(q.From, loc)
	if err != nil {
		return records.Constraints{}, fmt.Errorf("from: %w", err)
	}
	to, err := records.ParseDay(q.To, loc)
	if err != nil {
		return records.Constraints{}, fmt.Errorf("to: %w", err)
	}
	return records.Constraints{From: from, To: to, Status: strings.TrimSpace(q.Status)}, nil
}

// Snapshot is the outcome of one load.  Records is the full fetched list;
// Filtered and Summary reflect the query.
type Snapshot struct {
	Kind      Kind
	Result    apiclient.Result
	Records   []records.Record
	Filtered  []records.Record
	Summary   records.Summary
	FetchedAt time.Time
}

type LoaderConfig struct {
	Table    Table
	Location *time.Location // defaults to time.Local
	Logger   zerolog.Logger
}

// Loader builds views over one API client.
type Loader struct {
	client *apiclient.Client
	table  Table
	loc    *time.Location
	logger zerolog.Logger
	now    func() time.Time
}

func NewLoader(client *apiclient.Client, cfg LoaderConfig) *Loader {
	if cfg.Table == nil {
		cfg.Table = DefaultTable()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Loader{
		client: client,
		table:  cfg.Table,
		loc:    cfg.Location,
		logger: cfg.Logger,
		now:    time.Now,
	}
}

func (l *Loader) Location() *time.Location { return l.loc }

// Kinds lists the views available to sess.
func (l *Loader) Kinds(sess session.Session) []Kind { return l.table.Kinds(sess.Role) }

// View is one entry of the table bound to a loader.
type View struct {
	Kind Kind
	Spec Spec
	l    *Loader
}

func (l *Loader) View(kind Kind) (View, error) {
	spec, ok := l.table[kind]
	if !ok {
		return View{}, fmt.Errorf("%w: %q", ErrUnknownView, kind)
	}
	return View{Kind: kind, Spec: spec, l: l}, nil
}

// Load runs Fetch → Filter → Aggregate.  A fetch failure returns a
// snapshot whose Result carries the message and whose lists are empty,
// together with the error.
func (v View) Load(ctx context.Context, sess session.Session, q Query) (Snapshot, error) {
	snap := Snapshot{Kind: v.Kind}
	if !v.Spec.allows(sess.Role) {
		err := fmt.Errorf("%w: %s as %s", ErrForbidden, v.Kind, sess.Role)
		snap.Result = apiclient.Result{Message: err.Error()}
		return snap, err
	}

	c, err := q.constraints(v.l.loc)
	if err != nil {
		snap.Result = apiclient.Result{Message: err.Error()}
		return snap, err
	}

	path := strings.ReplaceAll(v.Spec.Path, "{id}", sess.PathID())
	params := url.Values{}
	if v.Spec.DateQuery {
		params = apiclient.DateQuery(q.From, q.To)
	}
	for k, val := range v.Spec.Params {
		params.Set(k, val)
	}

	items, res, err := v.l.client.WithToken(sess.Token).Fetch(ctx, path, params, v.Spec.Key)
	snap.Result = res
	if err != nil {
		v.l.logger.Debug().Err(err).Str("view", string(v.Kind)).Msg("fetch failed")
		return snap, err
	}

	now := v.l.now().In(v.l.loc)
	snap.FetchedAt = now
	snap.Records = toRecords(items, v.Spec.Fields, v.l.loc)
	snap.Filtered = records.Filter(snap.Records, c)
	snap.Summary = records.Summarize(snap.Filtered, now)
	return snap, nil
}

// Load is shorthand for View(kind) followed by Load.
func (l *Loader) Load(ctx context.Context, sess session.Session, kind Kind, q Query) (Snapshot, error) {
	v, err := l.View(kind)
	if err != nil {
		return Snapshot{Kind: kind, Result: apiclient.Result{Message: err.Error()}}, err
	}
	return v.Load(ctx, sess, q)
}
