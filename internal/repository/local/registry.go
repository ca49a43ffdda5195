// Package local keeps the taxpayer registry and import checkpoints in an
// embedded SQLite file, for single-machine runs without Postgres or Mongo.
package local

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dgii_fiscal/internal/models"
	"dgii_fiscal/internal/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaxpayerRow struct {
	Identifier       string `gorm:"primaryKey;size:11"`
	LegalName        string `gorm:"not null"`
	TradeName        string `gorm:"not null"`
	Activity         string
	Category         string `gorm:"size:32;not null"`
	Regime           string `gorm:"size:16;not null"`
	Status           string `gorm:"size:16;not null"`
	ConstitutionDate *time.Time
	UpdatedAt        time.Time
}

func (TaxpayerRow) TableName() string { return "taxpayers" }

type CheckpointRow struct {
	Key            string `gorm:"primaryKey;column:checkpoint_key"`
	SourceOffset   int64
	LastIdentifier string
	RunID          string
	UpdatedAt      time.Time
}

func (CheckpointRow) TableName() string { return "import_checkpoints" }

type Registry struct {
	db *gorm.DB
}

// NewRegistry migrates the schema and returns a store over db.
func NewRegistry(db *gorm.DB) (*Registry, error) {
	if err := db.AutoMigrate(&TaxpayerRow{}, &CheckpointRow{}); err != nil {
		return nil, fmt.Errorf("migrate registry: %w", err)
	}
	return &Registry{db: db}, nil
}

func (r *Registry) InsertIgnore(ctx context.Context, rows []models.Taxpayer) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	batch := make([]TaxpayerRow, len(rows))
	for i, t := range rows {
		batch[i] = toRow(t)
	}

	var inserted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&batch, 200)
		if res.Error != nil {
			return res.Error
		}
		inserted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("insert taxpayers batch: %w", err)
	}
	return int(inserted), nil
}

func (r *Registry) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&TaxpayerRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count taxpayers: %w", err)
	}
	return n, nil
}

func (r *Registry) Find(ctx context.Context, identifier string) (*models.Taxpayer, error) {
	var row TaxpayerRow
	err := r.db.WithContext(ctx).First(&row, "identifier = ?", identifier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find taxpayer %s: %w", identifier, err)
	}
	t := fromRow(row)
	return &t, nil
}

func (r *Registry) LoadCheckpoint(ctx context.Context, key string) (ports.Checkpoint, bool, error) {
	var row CheckpointRow
	err := r.db.WithContext(ctx).First(&row, "checkpoint_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.Checkpoint{}, false, nil
	}
	if err != nil {
		return ports.Checkpoint{}, false, fmt.Errorf("load checkpoint %s: %w", key, err)
	}
	return ports.Checkpoint{
		Key:            row.Key,
		SourceOffset:   row.SourceOffset,
		LastIdentifier: row.LastIdentifier,
		RunID:          row.RunID,
		UpdatedAt:      row.UpdatedAt,
	}, true, nil
}

func (r *Registry) SaveCheckpoint(ctx context.Context, cp ports.Checkpoint) error {
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now().UTC()
	}
	row := CheckpointRow{
		Key:            cp.Key,
		SourceOffset:   cp.SourceOffset,
		LastIdentifier: cp.LastIdentifier,
		RunID:          cp.RunID,
		UpdatedAt:      cp.UpdatedAt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "checkpoint_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"source_offset", "last_identifier", "run_id", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", cp.Key, err)
	}
	return nil
}

func toRow(t models.Taxpayer) TaxpayerRow {
	return TaxpayerRow{
		Identifier:       t.Identifier,
		LegalName:        t.LegalName,
		TradeName:        t.TradeName,
		Activity:         t.Activity,
		Category:         string(t.Category),
		Regime:           string(t.Regime),
		Status:           string(t.Status),
		ConstitutionDate: t.ConstitutionDate,
		UpdatedAt:        t.UpdatedAt,
	}
}

func fromRow(r TaxpayerRow) models.Taxpayer {
	return models.Taxpayer{
		Identifier:       r.Identifier,
		LegalName:        r.LegalName,
		TradeName:        r.TradeName,
		Activity:         r.Activity,
		Category:         models.Category(r.Category),
		Regime:           models.Regime(r.Regime),
		Status:           models.Status(r.Status),
		ConstitutionDate: r.ConstitutionDate,
		UpdatedAt:        r.UpdatedAt,
	}
}
