package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS crawled_pages (
	id          BIGSERIAL PRIMARY KEY,
	job_id      TEXT        NOT NULL,
	url         TEXT        NOT NULL,
	depth       INTEGER     NOT NULL,
	status_code INTEGER     NOT NULL DEFAULT 0,
	fetched_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (job_id, url)
);

CREATE TABLE IF NOT EXISTS page_content (
	page_id BIGINT PRIMARY KEY REFERENCES crawled_pages (id) ON DELETE CASCADE,
	markup  TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS failed_urls (
	id             BIGSERIAL PRIMARY KEY,
	job_id         TEXT        NOT NULL,
	url            TEXT        NOT NULL,
	depth          INTEGER     NOT NULL,
	error_type     TEXT        NOT NULL,
	failure_reason TEXT        NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (job_id, url)
);
`

// NewPool connects to PostgreSQL and pings it once.
func NewPool(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables used by the repositories if they are missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
