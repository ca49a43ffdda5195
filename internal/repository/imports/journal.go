package importitems

import (
	"context"

	mg "dgii_fiscal/internal/config/connections/mongo"
	"dgii_fiscal/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
)

// Journal adapts the Mongo import collections to the importer ports.
type Journal struct {
	MG *mg.Mongo
}

func NewJournal(m *mg.Mongo) *Journal { return &Journal{MG: m} }

func (j *Journal) BeginRun(ctx context.Context, runID, importType, source string) error {
	return MarkRunning(ctx, j.MG, runID, importType, source)
}

func (j *Journal) LogFailedBatch(ctx context.Context, runID string, offset int64, size int, cause string) error {
	_, err := InsertItem(ctx, j.MG, Item{
		ImportRecordID: runID,
		ModelType:      ModelTypeTaxpayers,
		SourceOffset:   offset,
		BatchSize:      size,
		Status:         StatusFailed,
		Errors:         cause,
	})
	return err
}

func (j *Journal) FinishRun(ctx context.Context, runID string, sum ports.RunSummary) error {
	return UpdateImportRecord(ctx, j.MG, runID, bson.M{
		"status":         sum.Status,
		"count":          sum.Processed,
		"inserted":       sum.Inserted,
		"duplicates":     sum.Duplicates,
		"malformed":      sum.Malformed,
		"failed_batches": sum.FailedBatches,
		"start_offset":   sum.StartOffset,
		"end_offset":     sum.EndOffset,
		"store_total":    sum.StoreTotal,
		"errors":         sum.Errors,
		"finished_at":    nowUTC(),
	})
}

func (j *Journal) LoadCheckpoint(ctx context.Context, key string) (ports.Checkpoint, bool, error) {
	return LoadCheckpoint(ctx, j.MG, key)
}

func (j *Journal) SaveCheckpoint(ctx context.Context, cp ports.Checkpoint) error {
	return SaveCheckpoint(ctx, j.MG, cp)
}
