package ports

import (
	"context"
	"errors"
	"time"

	"dgii_fiscal/internal/models"
)

// RegistryStore is the taxpayer registry table.
type RegistryStore interface {
	// InsertIgnore writes rows in one atomic write, silently skipping
	// identifiers that already exist. It returns how many rows were new.
	InsertIgnore(ctx context.Context, rows []models.Taxpayer) (int, error)
	Count(ctx context.Context) (int64, error)
	Find(ctx context.Context, identifier string) (*models.Taxpayer, error)
}

var ErrNotFound = errors.New("not found")

// Checkpoint is the durable resume point of an import source.
type Checkpoint struct {
	Key            string
	SourceOffset   int64
	LastIdentifier string
	RunID          string
	UpdatedAt      time.Time
}

type CheckpointStore interface {
	// LoadCheckpoint returns ok=false when key has never been checkpointed.
	LoadCheckpoint(ctx context.Context, key string) (cp Checkpoint, ok bool, err error)
	SaveCheckpoint(ctx context.Context, cp Checkpoint) error
}

// RunSummary is what a journal persists at the end of a session.
type RunSummary struct {
	Status        string
	Processed     int
	Inserted      int
	Duplicates    int
	Malformed     int
	FailedBatches int
	StartOffset   int64
	EndOffset     int64
	StoreTotal    int64
	Errors        []string
}

// RunJournal records import sessions and failed batches for operators.
type RunJournal interface {
	BeginRun(ctx context.Context, runID, importType, source string) error
	LogFailedBatch(ctx context.Context, runID string, offset int64, size int, cause string) error
	FinishRun(ctx context.Context, runID string, sum RunSummary) error
}

var ErrLocked = errors.New("another import is running")

// Locker guards against concurrent importer instances on the same store.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
