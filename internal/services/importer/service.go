package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dgii_fiscal/internal/metrics"
	"dgii_fiscal/internal/ports"

	"github.com/google/uuid"
)

const (
	StatusDone    = "done"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

const (
	ResumeCheckpoint = "checkpoint"
	ResumeRowCount   = "row_count"
	ResumeStart      = "start"
)

var ErrUnknownProcessor = errors.New("no processor for type")

type Request struct {
	Type    string
	Source  string
	RunID   string
	Options Options
}

// Result is the session summary. It is returned on every path, including
// aborted sessions, and reflects only what was committed before returning.
type Result struct {
	RunID       string
	Type        string
	Source      string
	Status      string
	ResumedFrom string

	StartOffset      int64
	EndOffset        int64
	CheckpointOffset int64
	LastIdentifier   string

	Processed     int
	Inserted      int
	Duplicates    int
	Malformed     int
	Batches       int
	FailedBatches int

	Exhausted bool
	Cancelled bool
	DryRun    bool

	StoreTotal      int64
	KnownSourceSize int64

	Errors        []string
	ErrorsDropped int
	Duration      time.Duration
}

// Summary is the one-line operator view of a session.
func (r Result) Summary() string {
	s := fmt.Sprintf("run=%s status=%s processed=%d inserted=%d duplicates=%d malformed=%d failed_batches=%d offset=%d..%d total=%d",
		r.RunID, r.Status, r.Processed, r.Inserted, r.Duplicates, r.Malformed, r.FailedBatches,
		r.StartOffset, r.EndOffset, r.StoreTotal)
	if r.KnownSourceSize > 0 {
		s += fmt.Sprintf(" progress=%.1f%%", 100*float64(r.EndOffset)/float64(r.KnownSourceSize))
	}
	if r.Exhausted {
		s += " source=exhausted"
	}
	if r.Cancelled {
		s += " cancelled=true"
	}
	return s
}

func (r *Result) addError(max int, msg string) {
	if len(r.Errors) < max {
		r.Errors = append(r.Errors, msg)
		return
	}
	r.ErrorsDropped++
}

type Service struct {
	Opener      ports.FileOpener
	Processors  map[string]ports.Processor
	Store       ports.RegistryStore
	Checkpoints ports.CheckpointStore
	Journal     ports.RunJournal
	Locker      ports.Locker
	Metrics     *metrics.Metrics
	Logger      *log.Logger
	Defaults    Options

	sleep func(ctx context.Context, d time.Duration) error
}

func NewService(opener ports.FileOpener, registry map[string]ports.Processor, store ports.RegistryStore) *Service {
	return &Service{
		Opener:     opener,
		Processors: registry,
		Store:      store,
		Logger:     log.Default(),
		Defaults:   Options{}.WithDefaults(),
		sleep:      sleepCtx,
	}
}

// CheckpointKey identifies a resumable source.
func CheckpointKey(importType, source string) string {
	return importType + ":" + source
}

// Import runs one session: resume, stream batches until the row budget or the
// source runs out, then report. Only one session per import type runs at a
// time when a Locker is configured.
func (s *Service) Import(ctx context.Context, req Request) (Result, error) {
	t0 := time.Now()
	lg := s.logger()
	res := Result{RunID: req.RunID, Type: req.Type, Source: req.Source, Status: StatusFailed}
	if res.RunID == "" {
		res.RunID = uuid.NewString()
	}

	opts := req.Options
	if opts == (Options{}) {
		opts = s.Defaults
	}
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return res, err
	}
	res.DryRun = opts.DryRun
	res.KnownSourceSize = opts.KnownSourceSize

	proc, ok := s.Processors[req.Type]
	if !ok {
		lg.Printf("[IMP][ERR] no processor for type=%q", req.Type)
		return res, fmt.Errorf("%w: %s", ErrUnknownProcessor, req.Type)
	}
	if opts.DryRun {
		dr, ok := proc.(ports.DryRunner)
		if !ok {
			return res, fmt.Errorf("processor %s does not support dry run", req.Type)
		}
		proc = dr.DryRun()
	}

	if s.Locker != nil {
		release, err := s.Locker.Acquire(ctx, "registry-import:"+req.Type)
		if err != nil {
			lg.Printf("[IMP][LOCK][ERR] type=%q err=%v", req.Type, err)
			return res, err
		}
		defer release()
	}

	lg.Printf("[IMP][START] run=%s type=%q source=%q batch_size=%d row_limit=%d delay=%s retries=%d encoding=%s dry_run=%t",
		res.RunID, req.Type, req.Source, opts.BatchSize, opts.SessionRowLimit, opts.InterBatchDelay,
		opts.WriteRetries, opts.Encoding, opts.DryRun)
	if s.Journal != nil && !opts.DryRun {
		if err := s.Journal.BeginRun(ctx, res.RunID, req.Type, req.Source); err != nil {
			lg.Printf("[IMP][JOURNAL][WARN] begin run=%s: %v", res.RunID, err)
		}
	}

	runErr := s.run(ctx, req, opts, proc, &res)
	s.finish(ctx, opts, &res, runErr, t0)
	return res, runErr
}

func (s *Service) run(ctx context.Context, req Request, opts Options, proc ports.Processor, res *Result) error {
	lg := s.logger()
	key := CheckpointKey(req.Type, req.Source)

	offset, err := s.resumeOffset(ctx, key, res)
	if err != nil {
		lg.Printf("[IMP][INIT][ERR] %v", err)
		return err
	}
	res.StartOffset, res.EndOffset, res.CheckpointOffset = offset, offset, offset

	rc, meta, err := s.Opener.Open(ctx, req.Source)
	if err != nil {
		lg.Printf("[IMP][OPEN][ERR] source=%q: %v", req.Source, err)
		return fmt.Errorf("open source: %w", err)
	}
	defer rc.Close()
	lg.Printf("[IMP] source=%s content_type=%q size_bytes=%d resume=%s offset=%d", meta.Source, meta.ContentType, meta.Size, res.ResumedFrom, offset)

	lr := newLineReader(decode(rc, opts.Encoding))
	skipped, err := lr.skip(offset)
	if err != nil {
		lg.Printf("[IMP][SKIP][ERR] offset=%d skipped=%d: %v", offset, skipped, err)
		return fmt.Errorf("skip to offset %d: %w", offset, err)
	}
	if skipped < offset {
		lg.Printf("[IMP][WARN] source has %d lines, resume offset is %d; nothing to do", skipped, offset)
		res.Exhausted = true
		return nil
	}

	pos := offset
	frozen := false
	for {
		if err := ctx.Err(); err != nil {
			res.Cancelled = true
			return err
		}
		n := opts.BatchSize
		if opts.SessionRowLimit > 0 {
			left := opts.SessionRowLimit - res.Processed
			if left <= 0 {
				break
			}
			if left < n {
				n = left
			}
		}

		batch, eof, err := lr.next(n, pos)
		if err != nil {
			lg.Printf("[IMP][READ][ERR] offset=%d: %v", pos, err)
			return fmt.Errorf("read source at line %d: %w", pos, err)
		}
		if len(batch) == 0 {
			res.Exhausted = true
			break
		}

		bt := time.Now()
		stats, werr := s.writeBatch(ctx, proc, batch, opts.WriteRetries)
		res.Batches++
		res.Processed += len(batch)
		res.Malformed += stats.Malformed
		for _, rej := range stats.Rejects {
			if len(res.Errors) < opts.MaxErrors {
				lg.Printf("[IMP][PARSE][WARN] %s", rej)
			}
			res.addError(opts.MaxErrors, rej)
		}

		if werr != nil {
			res.FailedBatches++
			frozen = true
			lg.Printf("[IMP][BATCH][ERR] offset=%d size=%d err=%v", pos, len(batch), werr)
			res.addError(opts.MaxErrors, fmt.Sprintf("batch at offset %d (size %d): %v", pos, len(batch), werr))
			if s.Journal != nil && !opts.DryRun {
				if jerr := s.Journal.LogFailedBatch(ctx, res.RunID, pos, len(batch), werr.Error()); jerr != nil {
					lg.Printf("[IMP][JOURNAL][WARN] failed batch run=%s: %v", res.RunID, jerr)
				}
			}
		} else {
			res.Inserted += stats.Inserted
			res.Duplicates += stats.Duplicates
			if stats.LastIdentifier != "" {
				res.LastIdentifier = stats.LastIdentifier
			}
		}
		pos += int64(len(batch))
		res.EndOffset = pos

		if !frozen && !opts.DryRun && s.Checkpoints != nil {
			cp := ports.Checkpoint{Key: key, SourceOffset: pos, LastIdentifier: res.LastIdentifier, RunID: res.RunID, UpdatedAt: time.Now().UTC()}
			// the batch is committed; a cancel arriving now must not lose its checkpoint
			cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			cerr := s.Checkpoints.SaveCheckpoint(cctx, cp)
			cancel()
			if cerr != nil {
				lg.Printf("[IMP][CHECKPOINT][ERR] offset=%d: %v", pos, cerr)
				res.addError(opts.MaxErrors, fmt.Sprintf("checkpoint at offset %d: %v", pos, cerr))
			} else {
				res.CheckpointOffset = pos
			}
		}

		s.observeBatch(len(batch), stats, werr, time.Since(bt))
		lg.Printf("[IMP][BATCH] run=%s #%d offset=%d size=%d inserted=%d duplicates=%d malformed=%d took=%s",
			res.RunID, res.Batches, pos-int64(len(batch)), len(batch), stats.Inserted, stats.Duplicates, stats.Malformed, time.Since(bt))

		if eof {
			res.Exhausted = true
			break
		}
		if opts.SessionRowLimit > 0 && res.Processed >= opts.SessionRowLimit {
			break
		}
		if err := s.pause(ctx, opts.InterBatchDelay); err != nil {
			res.Cancelled = true
			return err
		}
	}
	return nil
}

// resumeOffset prefers the explicit checkpoint and falls back to the store's
// row count for sources that were never checkpointed.
func (s *Service) resumeOffset(ctx context.Context, key string, res *Result) (int64, error) {
	if s.Checkpoints != nil {
		cp, ok, err := s.Checkpoints.LoadCheckpoint(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("load checkpoint %s: %w", key, err)
		}
		if ok {
			res.ResumedFrom = ResumeCheckpoint
			res.LastIdentifier = cp.LastIdentifier
			return cp.SourceOffset, nil
		}
	}
	if s.Store != nil {
		n, err := s.Store.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("registry store unreachable: %w", err)
		}
		res.ResumedFrom = ResumeRowCount
		return n, nil
	}
	res.ResumedFrom = ResumeStart
	return 0, nil
}

func (s *Service) writeBatch(ctx context.Context, proc ports.Processor, batch []ports.Line, retries int) (ports.BatchStats, error) {
	var (
		stats ports.BatchStats
		err   error
	)
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			s.logger().Printf("[IMP][BATCH][RETRY] offset=%d attempt=%d err=%v", batch[0].Offset, attempt, err)
			if serr := s.pause(ctx, time.Duration(attempt)*250*time.Millisecond); serr != nil {
				return stats, err
			}
		}
		stats, err = proc.ProcessBatch(ctx, batch)
		if err == nil {
			return stats, nil
		}
	}
	return stats, err
}

func (s *Service) finish(ctx context.Context, opts Options, res *Result, runErr error, t0 time.Time) {
	lg := s.logger()
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if s.Store != nil {
		if n, err := s.Store.Count(bg); err == nil {
			res.StoreTotal = n
		} else {
			lg.Printf("[IMP][DONE][WARN] final count: %v", err)
		}
	}

	switch {
	case runErr != nil && res.Batches == 0 && !res.Cancelled:
		res.Status = StatusFailed
		res.addError(opts.MaxErrors, runErr.Error())
	case runErr != nil || res.FailedBatches > 0 || res.Cancelled:
		res.Status = StatusPartial
		if runErr != nil && !res.Cancelled {
			res.addError(opts.MaxErrors, runErr.Error())
		}
	default:
		res.Status = StatusDone
	}
	res.Duration = time.Since(t0)

	if s.Journal != nil && !opts.DryRun {
		sum := ports.RunSummary{
			Status:        res.Status,
			Processed:     res.Processed,
			Inserted:      res.Inserted,
			Duplicates:    res.Duplicates,
			Malformed:     res.Malformed,
			FailedBatches: res.FailedBatches,
			StartOffset:   res.StartOffset,
			EndOffset:     res.EndOffset,
			StoreTotal:    res.StoreTotal,
			Errors:        res.Errors,
		}
		if err := s.Journal.FinishRun(bg, res.RunID, sum); err != nil {
			lg.Printf("[IMP][JOURNAL][WARN] finish run=%s: %v", res.RunID, err)
		}
	}
	if s.Metrics != nil {
		s.Metrics.Sessions.WithLabelValues(res.Status).Inc()
	}
	lg.Printf("[IMP][DONE] %s duration=%s", res.Summary(), res.Duration)
}

func (s *Service) observeBatch(lines int, stats ports.BatchStats, werr error, took time.Duration) {
	m := s.Metrics
	if m == nil {
		return
	}
	m.LinesProcessed.Add(float64(lines))
	m.LinesMalformed.Add(float64(stats.Malformed))
	m.BatchDuration.Observe(took.Seconds())
	if werr != nil {
		m.BatchFailures.Inc()
		return
	}
	m.RowsInserted.Add(float64(stats.Inserted))
	m.RowsDuplicate.Add(float64(stats.Duplicates))
}

func (s *Service) pause(ctx context.Context, d time.Duration) error {
	if s.sleep != nil {
		return s.sleep(ctx, d)
	}
	return sleepCtx(ctx, d)
}

func (s *Service) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
