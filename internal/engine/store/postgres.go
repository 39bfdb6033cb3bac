package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed schema/*.sql
var schemaFS embed.FS

const pgColumns = `id, video_id, title, description, status, source, error, result, created_at, updated_at, extracted_at`

// Postgres is the server Store backed by a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres creates a pool and runs schema migrations.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.New("store: DATABASE_URL is required")
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("store: create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}

	db := &Postgres{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: run migrations: %w", err)
	}
	slog.Info("store: postgres connected", slog.String("addr", config.ConnConfig.Host))
	return db, nil
}

// migrate applies pending goose migrations from the embedded schema dir.
func (p *Postgres) migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(p.pool)
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(schemaFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	return goose.UpContext(ctx, db, "schema")
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Create(ctx context.Context, r *Record) error {
	result, err := encodeResult(r.Result)
	if err != nil {
		return fmt.Errorf("store: encode result: %w", err)
	}
	_, err = p.pool.Exec(ctx, `INSERT INTO extractions (`+pgColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.ID, r.VideoID, r.Title, r.Description, string(r.Status), r.Source, r.Error,
		result, r.CreatedAt, r.UpdatedAt, r.ExtractedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("store: insert: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*Record, error) {
	return scanPostgres(p.pool.QueryRow(ctx, `SELECT `+pgColumns+` FROM extractions WHERE id = $1`, id))
}

func (p *Postgres) GetByVideoID(ctx context.Context, videoID string) (*Record, error) {
	return scanPostgres(p.pool.QueryRow(ctx, `SELECT `+pgColumns+` FROM extractions WHERE video_id = $1`, videoID))
}

func (p *Postgres) Update(ctx context.Context, r *Record) error {
	result, err := encodeResult(r.Result)
	if err != nil {
		return fmt.Errorf("store: encode result: %w", err)
	}
	tag, err := p.pool.Exec(ctx, `UPDATE extractions SET
		title = $2, description = $3, status = $4, source = $5, error = $6, result = $7,
		updated_at = $8, extracted_at = $9
		WHERE id = $1`,
		r.ID, r.Title, r.Description, string(r.Status), r.Source, r.Error, result, r.UpdatedAt, r.ExtractedAt)
	if err != nil {
		return fmt.Errorf("store: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM extractions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+pgColumns+` FROM extractions ORDER BY created_at DESC, id LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		r, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func scanPostgres(row pgx.Row) (*Record, error) {
	var (
		r           Record
		status      string
		result      []byte
		extractedAt *time.Time
	)
	err := row.Scan(&r.ID, &r.VideoID, &r.Title, &r.Description, &status, &r.Source, &r.Error,
		&result, &r.CreatedAt, &r.UpdatedAt, &extractedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan: %w", err)
	}
	r.Status = Status(status)
	if r.Result, err = decodeResult(result); err != nil {
		return nil, fmt.Errorf("store: decode result: %w", err)
	}
	r.ExtractedAt = extractedAt
	return &r, nil
}
