package db_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonDHaskell/Portunus/condo/internal/db"
	"github.com/BrandonDHaskell/Portunus/condo/internal/logger"
)

func openFileDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(context.Background(), db.Config{Path: filepath.Join(t.TempDir(), "condo.db")}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// ── Migrations ───────────────────────────────────────────────────────────────

func TestOpen_AppliesMigrationsOnce(t *testing.T) {
	conn := openFileDB(t)

	applied, err := db.Applied(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)

	again, err := db.Migrate(context.Background(), conn)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestOpen_InMemoryLeavesNoFile(t *testing.T) {
	conn, err := db.Open(context.Background(), db.Config{
		Path:     "mem_" + t.Name(),
		InMemory: true,
	}, logger.Nop())
	require.NoError(t, err)
	defer conn.Close()

	applied, err := db.Applied(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, applied)

	_, err = os.Stat("mem_" + t.Name())
	assert.True(t, os.IsNotExist(err))
}

// ── Seed ─────────────────────────────────────────────────────────────────────

func TestSeedDev_PopulatesOnceAndIsIdempotent(t *testing.T) {
	conn := openFileDB(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC) // a Wednesday

	opt := db.SeedDevOptions{Now: now, KnownModules: []string{"door-001"}}
	require.NoError(t, db.SeedDev(ctx, conn, opt))
	require.NoError(t, db.SeedDev(ctx, conn, opt))

	count := func(q string) int {
		var n int
		require.NoError(t, conn.QueryRowContext(ctx, q).Scan(&n))
		return n
	}
	assert.Equal(t, 3, count(`SELECT COUNT(*) FROM users`))
	assert.Equal(t, 14, count(`SELECT COUNT(*) FROM schedules`))
	assert.Equal(t, 2, count(`SELECT COUNT(*) FROM visitors`))
	assert.Equal(t, 1, count(`SELECT COUNT(*) FROM attendance WHERE exit_time_ms IS NULL`))
	assert.Positive(t, count(`SELECT COUNT(*) FROM alerts WHERE status = 'UNREAD'`))
	assert.Equal(t, 1, count(`SELECT COUNT(*) FROM modules WHERE enabled = 1 AND commissioned_at_ms IS NOT NULL`))
}

// ── Worker ───────────────────────────────────────────────────────────────────

func TestWorker_CommitsAndRollsBack(t *testing.T) {
	conn := openFileDB(t)
	w := db.NewWorker(conn)
	defer w.Close()
	ctx := context.Background()

	insert := func(name string) db.TxFn {
		return func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `
INSERT INTO doors(door_id, name, created_at_ms, updated_at_ms) VALUES (?, ?, 0, 0);`, name, name)
			return err
		}
	}

	require.NoError(t, w.Do(ctx, insert("a")))

	boom := errors.New("boom")
	err := w.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := insert("b")(ctx, tx); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM doors`).Scan(&n))
	assert.Equal(t, 1, n)
	assert.Equal(t, db.WorkerStats{Committed: 1, RolledBack: 1}, w.Stats())
}

func TestWorker_SmallQueueDrainsConcurrentWrites(t *testing.T) {
	conn := openFileDB(t)
	w := db.NewWorker(conn, db.WithQueueSize(1))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- w.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
				name := fmt.Sprintf("door-%d", i)
				_, err := tx.ExecContext(ctx, `
INSERT INTO doors(door_id, name, created_at_ms, updated_at_ms) VALUES (?, ?, 0, 0);`, name, name)
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	w.Close()

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM doors`).Scan(&n))
	assert.Equal(t, 20, n)
	assert.Equal(t, db.WorkerStats{Committed: 20}, w.Stats())
}

func TestWorker_ClosedRejectsJobs(t *testing.T) {
	conn := openFileDB(t)
	w := db.NewWorker(conn)
	w.Close()
	w.Close()
	assert.Zero(t, w.Stats().Committed)

	err := w.Do(context.Background(), func(context.Context, *sql.Tx) error { return nil })
	assert.ErrorIs(t, err, db.ErrWorkerClosed)
}
