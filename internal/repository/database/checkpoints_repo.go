package database

import (
	"context"
	"errors"
	"fmt"

	"dgii_fiscal/internal/config/connections/postgres"
	"dgii_fiscal/internal/ports"

	"github.com/jackc/pgx/v5"
)

const DefaultCheckpointsTable = "import_checkpoints"

// CheckpointsRepo keeps importer resume points next to the registry table,
// for deployments without Mongo.
type CheckpointsRepo struct {
	pg    *postgres.Postgres
	table string
}

func NewCheckpointsRepo(pg *postgres.Postgres, table string) *CheckpointsRepo {
	if table == "" {
		table = DefaultCheckpointsTable
	}
	return &CheckpointsRepo{pg: pg, table: table}
}

func (r *CheckpointsRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.pg.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+r.table+` (
			checkpoint_key  TEXT PRIMARY KEY,
			source_offset   BIGINT NOT NULL,
			last_identifier VARCHAR(11) NOT NULL DEFAULT '',
			run_id          TEXT NOT NULL DEFAULT '',
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *CheckpointsRepo) LoadCheckpoint(ctx context.Context, key string) (ports.Checkpoint, bool, error) {
	cp := ports.Checkpoint{Key: key}
	err := r.pg.Pool.QueryRow(ctx, `
		SELECT source_offset, last_identifier, run_id, updated_at
		FROM `+r.table+`
		WHERE checkpoint_key = $1
	`, key).Scan(&cp.SourceOffset, &cp.LastIdentifier, &cp.RunID, &cp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ports.Checkpoint{}, false, nil
	}
	if err != nil {
		return ports.Checkpoint{}, false, fmt.Errorf("load checkpoint %s: %w", key, err)
	}
	return cp, true, nil
}

func (r *CheckpointsRepo) SaveCheckpoint(ctx context.Context, cp ports.Checkpoint) error {
	_, err := r.pg.Pool.Exec(ctx, `
		INSERT INTO `+r.table+` (checkpoint_key, source_offset, last_identifier, run_id, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (checkpoint_key) DO UPDATE SET
			source_offset   = EXCLUDED.source_offset,
			last_identifier = EXCLUDED.last_identifier,
			run_id          = EXCLUDED.run_id,
			updated_at      = EXCLUDED.updated_at
	`, cp.Key, cp.SourceOffset, cp.LastIdentifier, cp.RunID, cp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", cp.Key, err)
	}
	return nil
}
