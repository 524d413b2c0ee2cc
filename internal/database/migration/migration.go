package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step; its presence means the schema is complete.
const sentinelTable = "public.data_items"

var steps = []migrationStep{
	{
		Name: "create_extension_pg_trgm",
		SQL:  `CREATE EXTENSION IF NOT EXISTS pg_trgm;`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id         UUID        PRIMARY KEY,
  name       TEXT        NOT NULL,
  data       BYTEA       NOT NULL,
  text       TEXT        NOT NULL DEFAULT '',
  size       BIGINT      NOT NULL CHECK (size >= 0),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_text_trgm",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_text_trgm ON documents USING gin (lower(text) gin_trgm_ops);`,
	},
	{
		Name: "create_index_documents_text_fts",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_text_fts ON documents USING gin (to_tsvector('simple', text));`,
	},
	{
		Name: "create_table_blobs",
		SQL: `CREATE TABLE IF NOT EXISTS blobs (
  id           UUID        PRIMARY KEY,
  filename     TEXT        NOT NULL,
  content_type TEXT        NOT NULL,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  chunk_size   INTEGER     NOT NULL CHECK (chunk_size > 0),
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_blob_chunks",
		SQL: `CREATE TABLE IF NOT EXISTS blob_chunks (
  blob_id UUID    NOT NULL REFERENCES blobs (id) ON DELETE CASCADE,
  n       INTEGER NOT NULL CHECK (n >= 0),
  data    BYTEA   NOT NULL,
  PRIMARY KEY (blob_id, n)
);`,
	},
	{
		Name: "create_table_blob_index",
		SQL: `CREATE TABLE IF NOT EXISTS blob_index (
  blob_id    UUID        PRIMARY KEY,
  name       TEXT        NOT NULL,
  text       TEXT        NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_blob_index_text_trgm",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_blob_index_text_trgm ON blob_index USING gin (lower(text) gin_trgm_ops);`,
	},
	{
		Name: "create_table_data_items",
		SQL: `CREATE TABLE IF NOT EXISTS data_items (
  id   BIGSERIAL PRIMARY KEY,
  body JSONB     NOT NULL
);`,
	},
}

// EnsureMigrated checks if the schema sentinel table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With("component", "database", "db_host", dbHost)

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass($1) IS NOT NULL"
	if err := db.QueryRowContext(ctx, query, sentinelTable).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"detail", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}
