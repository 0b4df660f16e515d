package pghistory

import (
	"context"
	"fmt"
)

// createTableSQL creates the records table. seq gives a stable insertion
// order when several records share a timestamp.
const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    id          TEXT PRIMARY KEY,
    seq         BIGSERIAL NOT NULL,
    kind        TEXT NOT NULL,
    sender      TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL,
    provider    TEXT NOT NULL,
    model_id    TEXT NOT NULL DEFAULT '',
    model_name  TEXT NOT NULL DEFAULT '',
    options     JSONB,
    usage       JSONB,
    cost_usd    DOUBLE PRECISION NOT NULL DEFAULT 0,
    input       JSONB NOT NULL,
    output      JSONB NOT NULL
)`

const createSeqIndexSQL = `CREATE INDEX IF NOT EXISTS %s ON %s (seq)`

const createKindIndexSQL = `CREATE INDEX IF NOT EXISTS %s ON %s (kind, created_at)`

// EnsureSchema creates the records table and its indexes when missing.
// Production deployments should manage the schema with migration tooling.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, fmt.Sprintf(createTableSQL, s.tableName)); err != nil {
		return fmt.Errorf("pghistory: create table: %w", err)
	}
	if _, err := s.db.Exec(ctx, fmt.Sprintf(createSeqIndexSQL, s.indexName("seq"), s.tableName)); err != nil {
		return fmt.Errorf("pghistory: create seq index: %w", err)
	}
	if _, err := s.db.Exec(ctx, fmt.Sprintf(createKindIndexSQL, s.indexName("kind"), s.tableName)); err != nil {
		return fmt.Errorf("pghistory: create kind index: %w", err)
	}
	return nil
}
