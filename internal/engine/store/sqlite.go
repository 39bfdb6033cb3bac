package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS extractions (
	id           TEXT PRIMARY KEY,
	video_id     TEXT NOT NULL UNIQUE,
	title        TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	source       TEXT NOT NULL DEFAULT '',
	error        TEXT NOT NULL DEFAULT '',
	result       TEXT,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL,
	extracted_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_extractions_created ON extractions(created_at DESC);`

const sqliteColumns = `id, video_id, title, description, status, source, error, result, created_at, updated_at, extracted_at`

// SQLite is the embedded default Store.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database file at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Create(ctx context.Context, r *Record) error {
	result, err := encodeResult(r.Result)
	if err != nil {
		return fmt.Errorf("store: encode result: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO extractions (`+sqliteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.VideoID, r.Title, r.Description, string(r.Status), r.Source, r.Error,
		nullText(result), formatTime(r.CreatedAt), formatTime(r.UpdatedAt), formatTimePtr(r.ExtractedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicate
		}
		return fmt.Errorf("store: insert: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM extractions WHERE id = ?`, id)
	return scanSQLite(row)
}

func (s *SQLite) GetByVideoID(ctx context.Context, videoID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM extractions WHERE video_id = ?`, videoID)
	return scanSQLite(row)
}

func (s *SQLite) Update(ctx context.Context, r *Record) error {
	result, err := encodeResult(r.Result)
	if err != nil {
		return fmt.Errorf("store: encode result: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE extractions SET
		title = ?, description = ?, status = ?, source = ?, error = ?, result = ?, updated_at = ?, extracted_at = ?
		WHERE id = ?`,
		r.Title, r.Description, string(r.Status), r.Source, r.Error, nullText(result),
		formatTime(r.UpdatedAt), formatTimePtr(r.ExtractedAt), r.ID)
	if err != nil {
		return fmt.Errorf("store: update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM extractions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM extractions ORDER BY created_at DESC, id LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		r, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row scanner) (*Record, error) {
	var (
		r                    Record
		status               string
		result, extractedAt  sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&r.ID, &r.VideoID, &r.Title, &r.Description, &status, &r.Source, &r.Error,
		&result, &createdAt, &updatedAt, &extractedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan: %w", err)
	}
	r.Status = Status(status)
	if r.Result, err = decodeResult([]byte(result.String)); err != nil {
		return nil, fmt.Errorf("store: decode result: %w", err)
	}
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	if extractedAt.Valid {
		t := parseTime(extractedAt.String)
		r.ExtractedAt = &t
	}
	return &r, nil
}

func nullText(b []byte) sql.NullString {
	return sql.NullString{String: string(b), Valid: b != nil}
}

// timeLayout is fixed-width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
