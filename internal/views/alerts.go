package views

import (
	"context"
	"fmt"
	"strconv"

	"github.com/BrandonDHaskell/Portunus/condo/internal/apiclient"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/types"
	"github.com/BrandonDHaskell/Portunus/condo/internal/records"
	"github.com/BrandonDHaskell/Portunus/condo/internal/session"
)

// AlertBox is a view-owned copy of the alert list.  Read-state changes
// stay local unless Persist is set, in which case MarkRead and MarkAllRead
// also record them on the server.
type AlertBox struct {
	Persist bool

	alerts []records.Record
	client *apiclient.Client
	sess   session.Session
}

// AlertBox copies the alerts of snap.
func (l *Loader) AlertBox(snap Snapshot, sess session.Session, persist bool) *AlertBox {
	return &AlertBox{
		Persist: persist,
		alerts:  append([]records.Record(nil), snap.Records...),
		client:  l.client.WithToken(sess.Token),
		sess:    sess,
	}
}

func (b *AlertBox) Alerts() []records.Record {
	return append([]records.Record(nil), b.alerts...)
}

func (b *AlertBox) Unread() int {
	return records.CountCategory(b.alerts, types.AlertUnread)
}

// MarkRead marks the alert with id as read.  Marking a read alert again
// is a no-op.
func (b *AlertBox) MarkRead(ctx context.Context, id string) error {
	for i := range b.alerts {
		if b.alerts[i].ID != id {
			continue
		}
		if b.alerts[i].Category == types.AlertRead {
			return nil
		}
		if err := b.persist(ctx, id); err != nil {
			return err
		}
		b.alerts[i].Category = types.AlertRead
		return nil
	}
	return fmt.Errorf("alert %s: %w", id, ErrNoSuchAlert)
}

// MarkAllRead marks every unread alert and returns how many changed.  With
// Persist it stops at the first server error.
func (b *AlertBox) MarkAllRead(ctx context.Context) (int, error) {
	n := 0
	for i := range b.alerts {
		if b.alerts[i].Category == types.AlertRead {
			continue
		}
		if err := b.persist(ctx, b.alerts[i].ID); err != nil {
			return n, err
		}
		b.alerts[i].Category = types.AlertRead
		n++
	}
	return n, nil
}

// ClearRead drops read alerts from the local list and returns how many
// were removed.  It never touches the server.
func (b *AlertBox) ClearRead() int {
	kept := b.alerts[:0]
	for _, a := range b.alerts {
		if a.Category != types.AlertRead {
			kept = append(kept, a)
		}
	}
	n := len(b.alerts) - len(kept)
	b.alerts = kept
	return n
}

func (b *AlertBox) persist(ctx context.Context, id string) error {
	if !b.Persist {
		return nil
	}
	alertID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("alert id %q: %w", id, err)
	}
	return b.client.MarkAlertRead(ctx, b.sess.ID, alertID)
}
