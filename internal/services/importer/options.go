package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Options are the operational knobs of one importer session. None of them
// change what ends up in the registry, only how fast and how far a session
// gets.
type Options struct {
	// SessionRowLimit caps source lines consumed per session; 0 means until
	// the source is exhausted.
	SessionRowLimit int           `validate:"gte=0"`
	BatchSize       int           `validate:"gte=1,lte=50000"`
	InterBatchDelay time.Duration `validate:"gte=0"`
	// WriteRetries is how many extra attempts a failed batch write gets
	// before the batch is counted as failed.
	WriteRetries    int    `validate:"gte=0,lte=10"`
	MaxErrors       int    `validate:"gte=0"`
	Encoding        string `validate:"oneof=utf-8 latin1 windows-1252"`
	KnownSourceSize int64  `validate:"gte=0"`
	DryRun          bool
}

const (
	DefaultBatchSize = 500
	DefaultMaxErrors = 100
)

var profiles = map[string]Options{
	"small":  {SessionRowLimit: 10000, BatchSize: 100, InterBatchDelay: 500 * time.Millisecond},
	"medium": {SessionRowLimit: 50000, BatchSize: 500, InterBatchDelay: 200 * time.Millisecond},
	"large":  {SessionRowLimit: 200000, BatchSize: 1000, InterBatchDelay: 100 * time.Millisecond},
}

// Profile returns the named preset with defaults applied.
func Profile(name string) (Options, error) {
	o, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Options{}, fmt.Errorf("unknown import profile %q (want small, medium or large)", name)
	}
	return o.WithDefaults(), nil
}

func ProfileNames() []string { return []string{"small", "medium", "large"} }

func (o Options) WithDefaults() Options {
	if o.BatchSize == 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MaxErrors == 0 {
		o.MaxErrors = DefaultMaxErrors
	}
	o.Encoding = normalizeEncoding(o.Encoding)
	return o
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("import options: %w", err)
	}
	return nil
}

func normalizeEncoding(e string) string {
	switch strings.ToLower(strings.TrimSpace(e)) {
	case "", "utf-8", "utf8":
		return "utf-8"
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return "latin1"
	case "windows-1252", "cp1252", "win1252":
		return "windows-1252"
	}
	return e
}
