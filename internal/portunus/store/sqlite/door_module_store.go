package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/BrandonDHaskell/Portunus/condo/internal/db"
	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
)

type DoorModuleStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewDoorModuleStore(db *sql.DB, writer *dbpkg.Worker) *DoorModuleStore {
	return &DoorModuleStore{db: db, writer: writer}
}

func (s *DoorModuleStore) GetModule(ctx context.Context, moduleID string) (store.DoorModule, error) {
	moduleID = strings.TrimSpace(moduleID)

	var (
		m            = store.DoorModule{ModuleID: moduleID}
		doorID       sql.NullString
		doorName     sql.NullString
		enabled      int
		commissioned sql.NullInt64
		revoked      sql.NullInt64
		lastSeen     sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT m.door_id, d.name, m.enabled, m.commissioned_at_ms, m.revoked_at_ms, m.last_seen_at_ms
FROM modules m
LEFT JOIN doors d ON d.door_id = m.door_id
WHERE m.module_id = ?;
`, moduleID).Scan(&doorID, &doorName, &enabled, &commissioned, &revoked, &lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return store.DoorModule{}, store.ErrNotFound
	}
	if err != nil {
		return store.DoorModule{}, fmt.Errorf("get module %s: %w", moduleID, err)
	}

	m.DoorID = doorID.String
	m.DoorName = doorName.String
	m.Active = enabled == 1 && commissioned.Valid && !revoked.Valid
	if lastSeen.Valid {
		t := time.UnixMilli(lastSeen.Int64).UTC()
		m.LastSeen = &t
	}
	return m, nil
}

func (s *DoorModuleStore) TouchModule(ctx context.Context, moduleID string, at time.Time) error {
	moduleID = strings.TrimSpace(moduleID)
	if moduleID == "" {
		return nil
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	ms := at.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := registerModule(ctx, tx, moduleID, ms); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE modules SET last_seen_at_ms = ?, updated_at_ms = ? WHERE module_id = ?;`,
			ms, ms, moduleID,
		); err != nil {
			return fmt.Errorf("touch module %s: %w", moduleID, err)
		}
		return nil
	})
}
