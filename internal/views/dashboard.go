package views

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/BrandonDHaskell/Portunus/condo/internal/session"
)

// Dashboard loads several views at once, each unfiltered.  With no kinds
// it loads every view sess may open.  Snapshots come back in kind order.
//
// A failed fetch only marks its own snapshot; the returned error joins the
// individual failures.  An unknown or forbidden kind fails before anything
// is fetched.
func (l *Loader) Dashboard(ctx context.Context, sess session.Session, kinds ...Kind) ([]Snapshot, error) {
	if len(kinds) == 0 {
		kinds = l.Kinds(sess)
	}

	views := make([]View, len(kinds))
	for i, k := range kinds {
		v, err := l.View(k)
		if err != nil {
			return nil, err
		}
		if !v.Spec.allows(sess.Role) {
			return nil, fmt.Errorf("%w: %s as %s", ErrForbidden, k, sess.Role)
		}
		views[i] = v
	}

	snaps := make([]Snapshot, len(views))
	errs := make([]error, len(views))

	var g errgroup.Group
	for i, v := range views {
		g.Go(func() error {
			snaps[i], errs[i] = v.Load(ctx, sess, Query{})
			return nil
		})
	}
	_ = g.Wait()
	return snaps, errors.Join(errs...)
}
