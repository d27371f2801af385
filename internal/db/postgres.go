package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"site-analytics-service/internal/config"
)

// NewPostgres opens the rollup store connection pool.
func NewPostgres(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureRollupSchema creates the daily_metrics table when missing.
func EnsureRollupSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS daily_metrics (
	date             DATE PRIMARY KEY,
	page_visits      INTEGER NOT NULL DEFAULT 0,
	page_views       INTEGER NOT NULL DEFAULT 0,
	avg_time_on_page REAL NOT NULL DEFAULT 0,
	bounce_rate      REAL NOT NULL DEFAULT 0,
	unique_visitors  INTEGER NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`)
	if err != nil {
		return fmt.Errorf("ensure rollup schema: %w", err)
	}
	return nil
}
