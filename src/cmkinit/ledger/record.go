package ledger

import (
	"database/sql"
	"strings"
	"time"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/google/uuid"
)

// Status values a BuildRecord can hold.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// BuildRecord is one row of build history: what was built, from which
// config, to which output, and how it turned out.
type BuildRecord struct {
	ID             uuid.UUID
	Status         string
	ConfigPath     string
	OutputPath     string
	Kernels        []string
	Compression    string
	ArtifactSHA256 string
	ArtifactSize   int64
	ErrorMessage   string
	StartedAt      time.Time
	FinishedAt     *time.Time
}

// Record inserts rec, or replaces an existing row with the same ID — a
// build is recorded once when it starts (StatusRunning) and again when
// it finishes, reusing the same ID.
func (s *Store) Record(rec BuildRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO builds (id, status, config_path, output_path, kernels, compression,
			artifact_sha256, artifact_size, error_message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status, artifact_sha256=excluded.artifact_sha256,
			artifact_size=excluded.artifact_size, error_message=excluded.error_message,
			finished_at=excluded.finished_at
	`,
		rec.ID.String(), rec.Status, rec.ConfigPath, rec.OutputPath,
		strings.Join(rec.Kernels, ","), rec.Compression,
		rec.ArtifactSHA256, rec.ArtifactSize, rec.ErrorMessage,
		rec.StartedAt, rec.FinishedAt,
	)
	if err != nil {
		return cmerrors.ErrIOFailure.WithCause(err)
	}
	return nil
}

// List returns the most recent limit build records, newest first. A
// non-positive limit returns every record.
func (s *Store) List(limit int) ([]BuildRecord, error) {
	query := `SELECT id, status, config_path, output_path, kernels, compression,
		artifact_sha256, artifact_size, error_message, started_at, finished_at
		FROM builds ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, cmerrors.ErrIOFailure.WithCause(err)
	}
	defer rows.Close()

	var out []BuildRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, cmerrors.ErrIOFailure.WithCause(err)
	}
	return out, nil
}

// Get returns the record with the given ID.
func (s *Store) Get(id uuid.UUID) (BuildRecord, error) {
	row := s.db.QueryRow(`SELECT id, status, config_path, output_path, kernels, compression,
		artifact_sha256, artifact_size, error_message, started_at, finished_at
		FROM builds WHERE id = ?`, id.String())
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return BuildRecord{}, cmerrors.ErrConfigNotFound.WithMessagef("no build record with id %s", id)
	}
	if err != nil {
		return BuildRecord{}, err
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (BuildRecord, error) {
	var rec BuildRecord
	var id, kernels string
	var finishedAt sql.NullTime
	if err := row.Scan(&id, &rec.Status, &rec.ConfigPath, &rec.OutputPath, &kernels,
		&rec.Compression, &rec.ArtifactSHA256, &rec.ArtifactSize, &rec.ErrorMessage,
		&rec.StartedAt, &finishedAt); err != nil {
		if err == sql.ErrNoRows {
			return BuildRecord{}, err
		}
		return BuildRecord{}, cmerrors.ErrIOFailure.WithCause(err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return BuildRecord{}, cmerrors.ErrInternal.WithCause(err)
	}
	rec.ID = parsed
	if kernels != "" {
		rec.Kernels = strings.Split(kernels, ",")
	}
	if finishedAt.Valid {
		rec.FinishedAt = &finishedAt.Time
	}
	return rec, nil
}
