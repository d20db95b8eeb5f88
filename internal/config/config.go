package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config drives condo-devserver.  Every field comes from a CONDO_*
// environment variable.
type Config struct {
	HTTPAddr string
	LogLevel string

	// DB
	Env     string // "dev" | "prod"
	DBPath  string // e.g. "./data/condo.db"
	SeedDev bool   // populate an empty dev database with demo data

	DBWriteQueue  int // writes that may wait for the writer (default 256)
	DBSlowWriteMs int // log writes slower than this (default 250)

	// Time zone for wire timestamps and date filters.
	Timezone string

	// Auth
	JWTSecret     string
	TokenTTLHours int

	// Door modules and access policy
	KnownModules       []string
	AllowAll           bool
	AllowedResidentIDs []int64
	MinConfidence      float64

	FaceDir string

	// Access event retention
	EventRetentionDays int // 0 = keep forever
	PruneIntervalHours int // how often the pruner runs (default 6)
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set.  A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func FromEnv() Config {
	addr := getenvDefault("CONDO_HTTP_ADDR", ":8080")

	env := strings.ToLower(getenvDefault("CONDO_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	dbPath := getenvDefault("CONDO_DB_PATH", "./data/condo.db")

	return Config{
		HTTPAddr: addr,
		LogLevel: getenvDefault("CONDO_LOG_LEVEL", "info"),
		Env:      env,
		DBPath:   dbPath,
		SeedDev:  getenvBool("CONDO_SEED_DEV", env == "dev"),

		DBWriteQueue:  getenvInt("CONDO_DB_WRITE_QUEUE", 256),
		DBSlowWriteMs: getenvInt("CONDO_DB_SLOW_WRITE_MS", 250),

		Timezone: getenvDefault("CONDO_TIMEZONE", "Local"),

		JWTSecret:     os.Getenv("CONDO_JWT_SECRET"),
		TokenTTLHours: getenvInt("CONDO_TOKEN_TTL_HOURS", 12),

		KnownModules:       splitCSV(os.Getenv("CONDO_KNOWN_MODULES")),
		AllowAll:           getenvBool("CONDO_ALLOW_ALL", false),
		AllowedResidentIDs: splitIDs(os.Getenv("CONDO_ALLOWED_RESIDENT_IDS")),
		MinConfidence:      getenvFloat("CONDO_MIN_CONFIDENCE", 0.8),

		FaceDir: getenvDefault("CONDO_FACE_DIR", "./data/faces"),

		EventRetentionDays: getenvInt("CONDO_EVENT_RETENTION_DAYS", 90),
		PruneIntervalHours: getenvInt("CONDO_PRUNE_INTERVAL_HOURS", 6),
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return def
	}
	return f
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1"
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitIDs parses a CSV of resident ids, skipping anything non-numeric.
func splitIDs(v string) []int64 {
	var out []int64
	for _, p := range splitCSV(v) {
		if id, err := strconv.ParseInt(p, 10, 64); err == nil && id > 0 {
			out = append(out, id)
		}
	}
	return out
}
