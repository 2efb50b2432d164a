// Package ledger records the outcome of every cmkinit build (C8) in a
// small local SQLite database, so `cmkinit history`/`cmkinit inspect`
// and the status server (C11) can report on past builds without
// re-reading log files.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/bitswalk/cmkinit/src/common/paths"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath is where the ledger lives unless overridden.
const DefaultPath = "~/.local/share/cmkinit/ledger.db"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS builds (
	id              TEXT PRIMARY KEY,
	status          TEXT NOT NULL,
	config_path     TEXT NOT NULL,
	output_path     TEXT NOT NULL,
	kernels         TEXT NOT NULL,
	compression     TEXT NOT NULL,
	artifact_sha256 TEXT NOT NULL DEFAULT '',
	artifact_size   INTEGER NOT NULL DEFAULT 0,
	error_message   TEXT NOT NULL DEFAULT '',
	started_at      TIMESTAMP NOT NULL,
	finished_at     TIMESTAMP
);
CREATE INDEX IF NOT EXISTS builds_started_at_idx ON builds (started_at);
`

// Store wraps the ledger's single-table SQLite database. One entity is
// small enough that, unlike the teacher's per-table migrations package,
// the schema is a single idempotent CREATE TABLE run at open time.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the ledger database at path,
// expanding "~" via common/paths.Expand.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	path = paths.Expand(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, cmerrors.ErrIOFailure.WithCause(err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return nil, cmerrors.ErrIOFailure.WithCause(err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, cmerrors.ErrIOFailure.WithCause(err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
