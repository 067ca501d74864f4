package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// historyPragmas are applied to every pooled connection through the DSN.
// WAL lets `history list` read while a run is being recorded, and the busy
// timeout covers two runs finishing at the same moment.
var historyPragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// Store is the run history database.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
}

// Open connects to the history database file at path, creating the file
// and the run_events table when missing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", historyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("prepare history %s: %w", path, err)
	}

	return &Store{db: db, drv: drv}, nil
}

func historyDSN(path string) string {
	q := url.Values{}
	for _, p := range historyPragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// DB exposes the connection pool for ad-hoc queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.drv.Close()
}

// RunRepo returns the run ledger.
func (s *Store) RunRepo() RunRepo {
	return &runRepo{drv: s.drv}
}

// DefaultDBPath picks the history file: QPERF_DB when set, otherwise
// history.db under the XDG data directory (~/.local/share by default).
// The parent directory is created.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("QPERF_DB"); p != "" {
		return p, EnsureDir(p)
	}

	base, err := dataHome()
	if err != nil {
		return "", err
	}
	p := filepath.Join(base, "qperformance", "history.db")
	return p, EnsureDir(p)
}

func dataHome() (string, error) {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

// EnsureDir creates the directory that will hold path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
