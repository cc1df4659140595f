package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"ghcnd-server/internal/modules/querylog/types"
)

//go:embed sql/insert-query.sql
var insertQuerySQL string

//go:embed sql/get-recent-queries.sql
var getRecentQueriesSQL string

// timestampLayout keeps a fixed fraction width so stored values sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

type QueryLogRepository interface {
	Insert(ctx context.Context, e types.Entry) error
	GetRecent(ctx context.Context, limit int) ([]types.Entry, error)
}

type repositoryImpl struct {
	db *sql.DB
}

// NewRepository returns a sqlite-backed repository. A nil db yields a
// repository that stores nothing and lists nothing.
func NewRepository(db *sql.DB) QueryLogRepository {
	if db == nil {
		return noopRepository{}
	}
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Insert(ctx context.Context, e types.Entry) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, insertQuerySQL,
		e.Kind,
		e.Params,
		e.Status,
		e.ResultCount,
		e.DurationMs,
		createdAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("insert query log: %w", err)
	}
	return nil
}

func (r *repositoryImpl) GetRecent(ctx context.Context, limit int) ([]types.Entry, error) {
	rows, err := r.db.QueryContext(ctx, getRecentQueriesSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close query log rows", "error", err)
		}
	}()

	out := []types.Entry{}
	for rows.Next() {
		var e types.Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Kind, &e.Params, &e.Status, &e.ResultCount, &e.DurationMs, &createdAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		e.CreatedAt = t
		out = append(out, e)
	}
	return out, rows.Err()
}

type noopRepository struct{}

func (noopRepository) Insert(context.Context, types.Entry) error { return nil }

func (noopRepository) GetRecent(context.Context, int) ([]types.Entry, error) {
	return []types.Entry{}, nil
}
