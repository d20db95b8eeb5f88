package sqlite_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/Portunus/condo/internal/db"
	"github.com/BrandonDHaskell/Portunus/condo/internal/logger"
)

// openTestDB opens a migrated in-memory database private to t.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(context.Background(), db.Config{
		Path:     "test_" + strings.ReplaceAll(t.Name(), "/", "_"),
		InMemory: true,
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func newTestWriter(t *testing.T, conn *sql.DB) *db.Worker {
	t.Helper()
	w := db.NewWorker(conn, db.WithQueueSize(8))
	t.Cleanup(w.Close)
	return w
}

// seedDoorModule inserts a door and a commissioned module mounted on it.
func seedDoorModule(t *testing.T, conn *sql.DB, moduleID, doorName string) {
	t.Helper()
	nowMs := time.Now().UTC().UnixMilli()
	doorID := "door_" + moduleID
	if _, err := conn.ExecContext(context.Background(), `
INSERT INTO doors(door_id, name, created_at_ms, updated_at_ms) VALUES (?, ?, ?, ?);`,
		doorID, doorName, nowMs, nowMs); err != nil {
		t.Fatalf("seed door: %v", err)
	}
	if _, err := conn.ExecContext(context.Background(), `
INSERT INTO modules(module_id, door_id, enabled, commissioned_at_ms, created_at_ms, updated_at_ms)
VALUES (?, ?, 1, ?, ?, ?);`, moduleID, doorID, nowMs, nowMs, nowMs); err != nil {
		t.Fatalf("seed module: %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
