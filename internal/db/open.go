package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

type Config struct {
	Path string // e.g. "./data/condo.db"
	Env  string // "dev" | "prod"

	// InMemory opens a private shared-cache memory database named by Path
	// instead of a file. Nothing touches disk.
	InMemory bool

	BusyTimeout time.Duration // default 5s
}

func (c Config) withDefaults() Config {
	if c.Path == "" {
		c.Path = "./data/condo.db"
	}
	if c.Env == "" {
		c.Env = "dev"
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = 5 * time.Second
	}
	return c
}

// dsn builds a modernc.org/sqlite DSN carrying the per-connection PRAGMAs.
func (c Config) dsn() string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	if c.InMemory {
		q.Set("mode", "memory")
		q.Set("cache", "shared")
	}
	return "file:" + c.Path + "?" + q.Encode()
}

// Open opens (creating if needed) the database described by cfg and
// applies pending migrations.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*sql.DB, error) {
	cfg = cfg.withDefaults()

	if !cfg.InMemory {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	// Writes go through Worker; one connection also keeps a shared-cache
	// memory database alive for the pool's lifetime.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	applied, err := Migrate(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if len(applied) > 0 {
		logger.Info().
			Ints("versions", applied).
			Str("path", cfg.Path).
			Bool("in_memory", cfg.InMemory).
			Str("env", cfg.Env).
			Msg("applied migrations")
	}

	return db, nil
}
