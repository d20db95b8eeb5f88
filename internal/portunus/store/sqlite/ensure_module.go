package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// registerModule inserts an inactive modules row for an unseen moduleID and
// returns the door the module is mounted on.  access_events references
// modules, so every event write goes through here first.
//
// Must be called inside an existing transaction.
func registerModule(ctx context.Context, tx *sql.Tx, moduleID string, nowMs int64) (sql.NullString, error) {
	var doorID sql.NullString
	if strings.TrimSpace(moduleID) == "" {
		return doorID, errors.New("registerModule: empty module_id")
	}

	if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO modules(module_id, enabled, created_at_ms, updated_at_ms)
VALUES (?, 0, ?, ?);
`, moduleID, nowMs, nowMs); err != nil {
		return doorID, fmt.Errorf("register module %s: %w", moduleID, err)
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT door_id FROM modules WHERE module_id = ?;`, moduleID,
	).Scan(&doorID); err != nil {
		return doorID, fmt.Errorf("resolve door for %s: %w", moduleID, err)
	}
	return doorID, nil
}
