package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"photojournal/internal/database"
)

type migrationStep struct {
	Name string
	SQL  string
}

// steps create the kv_blobs table holding the journal blob and preferences.
var steps = map[database.Dialect][]migrationStep{
	database.Postgres: {
		{
			Name: "create_table_kv_blobs",
			SQL: `CREATE TABLE IF NOT EXISTS kv_blobs (
  key        TEXT        PRIMARY KEY,
  value      BYTEA       NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		},
	},
	database.SQLite: {
		{
			Name: "create_table_kv_blobs",
			SQL: `CREATE TABLE IF NOT EXISTS kv_blobs (
  key        TEXT      PRIMARY KEY,
  value      BLOB      NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`,
		},
	},
}

var sentinelQueries = map[database.Dialect]string{
	database.Postgres: "SELECT to_regclass('public.kv_blobs') IS NOT NULL",
	database.SQLite:   "SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'kv_blobs')",
}

// EnsureMigrated checks if the 'kv_blobs' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, dialect database.Dialect, logger *slog.Logger, dbHost string) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "database", "db_host", dbHost, "dialect", string(dialect))
	start := time.Now()

	query, ok := sentinelQueries[dialect]
	if !ok {
		return fmt.Errorf("unsupported dialect: %s", dialect)
	}

	logger.Info("db_migration_check", "status", "starting")

	var exists bool
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		logger.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logger.Info("db_migration_skip",
			"status", "success",
			"detail", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	logger.Info("db_migration_start", "status", "in_progress")

	for _, step := range steps[dialect] {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logger.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logger.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	logger.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}
