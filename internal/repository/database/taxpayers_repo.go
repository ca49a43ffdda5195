package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dgii_fiscal/internal/config/connections/postgres"
	"dgii_fiscal/internal/models"
	"dgii_fiscal/internal/ports"

	"github.com/jackc/pgx/v5"
)

const DefaultTaxpayersTable = "taxpayers"

type TaxpayersRepo struct {
	pg    *postgres.Postgres
	table string
}

func NewTaxpayersRepo(pg *postgres.Postgres, table string) *TaxpayersRepo {
	if table == "" {
		table = DefaultTaxpayersTable
	}
	return &TaxpayersRepo{pg: pg, table: table}
}

func (r *TaxpayersRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.pg.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+r.table+` (
			identifier        VARCHAR(11) PRIMARY KEY,
			legal_name        TEXT NOT NULL,
			trade_name        TEXT NOT NULL,
			activity          TEXT NOT NULL DEFAULT '',
			category          VARCHAR(32) NOT NULL,
			regime            VARCHAR(16) NOT NULL,
			status            VARCHAR(16) NOT NULL,
			constitution_date DATE,
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// InsertIgnore inserts the batch in one transaction. Existing identifiers are
// left untouched (first write wins).
func (r *TaxpayersRepo) InsertIgnore(ctx context.Context, rows []models.Taxpayer) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	n := len(rows)
	var (
		ids        = make([]string, n)
		legal      = make([]string, n)
		trade      = make([]string, n)
		activity   = make([]string, n)
		category   = make([]string, n)
		regime     = make([]string, n)
		status     = make([]string, n)
		constitute = make([]*time.Time, n)
		updated    = make([]time.Time, n)
	)
	for i, t := range rows {
		ids[i] = t.Identifier
		legal[i] = t.LegalName
		trade[i] = t.TradeName
		activity[i] = t.Activity
		category[i] = string(t.Category)
		regime[i] = string(t.Regime)
		status[i] = string(t.Status)
		constitute[i] = t.ConstitutionDate
		updated[i] = t.UpdatedAt
	}

	query := `
		INSERT INTO ` + r.table + ` (
			identifier, legal_name, trade_name, activity,
			category, regime, status, constitution_date, updated_at
		)
		SELECT * FROM unnest(
			$1::varchar[], $2::text[], $3::text[], $4::text[],
			$5::varchar[], $6::varchar[], $7::varchar[], $8::date[], $9::timestamptz[]
		)
		ON CONFLICT (identifier) DO NOTHING
	`

	var inserted int
	err := pgx.BeginFunc(ctx, r.pg.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query,
			ids, legal, trade, activity,
			category, regime, status, constitute, updated,
		)
		if err != nil {
			return err
		}
		inserted = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("insert taxpayers batch: %w", err)
	}
	return inserted, nil
}

func (r *TaxpayersRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pg.Pool.QueryRow(ctx, `SELECT count(*) FROM `+r.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count taxpayers: %w", err)
	}
	return n, nil
}

func (r *TaxpayersRepo) Find(ctx context.Context, identifier string) (*models.Taxpayer, error) {
	var (
		t                             models.Taxpayer
		category, regime, statusValue string
	)
	err := r.pg.Pool.QueryRow(ctx, `
		SELECT identifier, legal_name, trade_name, activity,
		       category, regime, status, constitution_date, updated_at
		FROM `+r.table+`
		WHERE identifier = $1
	`, identifier).Scan(
		&t.Identifier, &t.LegalName, &t.TradeName, &t.Activity,
		&category, &regime, &statusValue, &t.ConstitutionDate, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("find taxpayer %s: %w", identifier, err)
	}
	t.Category = models.Category(category)
	t.Regime = models.Regime(regime)
	t.Status = models.Status(statusValue)
	return &t, nil
}
