package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store"
	sqlitestore "github.com/BrandonDHaskell/Portunus/condo/internal/portunus/store/sqlite"
)

func TestDoorModuleStore_GetModule(t *testing.T) {
	conn := openTestDB(t)
	seedDoorModule(t, conn, "door-001", "Lobby")
	ms := sqlitestore.NewDoorModuleStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	m, err := ms.GetModule(ctx, " door-001 ")
	require.NoError(t, err)
	assert.True(t, m.Active)
	assert.Equal(t, "Lobby", m.DoorName)
	assert.Equal(t, "Lobby", m.Door())
	assert.Nil(t, m.LastSeen)

	_, err = ms.GetModule(ctx, "rogue")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDoorModuleStore_TouchRegistersUnknownModule(t *testing.T) {
	conn := openTestDB(t)
	ms := sqlitestore.NewDoorModuleStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	seenAt := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, ms.TouchModule(ctx, "rogue", seenAt))

	var lastSeen int64
	require.NoError(t, conn.QueryRowContext(ctx,
		`SELECT last_seen_at_ms FROM modules WHERE module_id = ?`, "rogue").Scan(&lastSeen))
	assert.Equal(t, seenAt.UnixMilli(), lastSeen)

	// Registered by a heartbeat but never commissioned.
	m, err := ms.GetModule(ctx, "rogue")
	require.NoError(t, err)
	assert.False(t, m.Active)
	assert.Equal(t, "rogue", m.Door())
	require.NotNil(t, m.LastSeen)
	assert.True(t, seenAt.Equal(*m.LastSeen))

	require.NoError(t, ms.TouchModule(ctx, "  ", seenAt))
}

func TestDoorModuleStore_RevokedModuleIsInactive(t *testing.T) {
	conn := openTestDB(t)
	seedDoorModule(t, conn, "door-002", "Car Park")
	_, err := conn.ExecContext(context.Background(),
		`UPDATE modules SET revoked_at_ms = 1 WHERE module_id = ?`, "door-002")
	require.NoError(t, err)

	ms := sqlitestore.NewDoorModuleStore(conn, newTestWriter(t, conn))
	m, err := ms.GetModule(context.Background(), "door-002")
	require.NoError(t, err)
	assert.False(t, m.Active)
	assert.Equal(t, "Car Park", m.DoorName)
}
