package ports

import "context"

// Line is one raw source line and its 0-based position in the source.
type Line struct {
	Offset int64
	Text   string
}

// BatchStats is what a processor reports for one batch. Malformed lines are
// never returned as errors; they are counted and described in Rejects.
type BatchStats struct {
	Parsed         int
	Inserted       int
	Duplicates     int
	Malformed      int
	LastIdentifier string
	Rejects        []string
}

type Processor interface {
	Type() string
	ProcessBatch(ctx context.Context, batch []Line) (BatchStats, error)
}

// DryRunner is implemented by processors that can run without writing.
type DryRunner interface {
	DryRun() Processor
}
