package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"dgii_fiscal/internal/services/importer"

	"github.com/spf13/cobra"
)

type importFlags struct {
	source    string
	kind      string
	runID     string
	profile   string
	batchSize int
	limit     int
	delay     time.Duration
	retries   int
	encoding  string
	knownSize int64
	dryRun    bool
}

func importCmd() *cobra.Command {
	var f importFlags
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Run one registry import session and print its summary",
		Long: `Streams the registry source into the taxpayer store, starting where the
last session stopped. A session ends after --limit lines, at end of source or
on SIGINT/SIGTERM; progress up to the last good batch is kept either way.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if f.source == "" {
				return errors.New("--source is required")
			}
			a, err := open(ctx)
			if err != nil {
				return err
			}
			defer a.Config.Close(context.Background())

			opts, err := f.options(cmd, a.Importer.Defaults)
			if err != nil {
				return err
			}
			kind := f.kind
			if kind == "" {
				kind = a.Config.Settings.ImportType
			}

			res, err := a.Importer.Import(ctx, importer.Request{Type: kind, Source: f.source, RunID: f.runID, Options: opts})
			return printImport(cmd.OutOrStdout(), res, err)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.source, "source", "", "registry file: local path, file://, s3:// or http(s):// URL")
	fl.StringVar(&f.kind, "type", "", "processor type (default IMPORT_TYPE)")
	fl.StringVar(&f.runID, "run-id", "", "run identifier for the journal (default random)")
	fl.StringVar(&f.profile, "profile", "", "tuning profile: "+fmt.Sprint(importer.ProfileNames()))
	fl.IntVar(&f.batchSize, "batch-size", 0, "lines per write")
	fl.IntVar(&f.limit, "limit", 0, "max lines this session")
	fl.DurationVar(&f.delay, "delay", 0, "pause between batches")
	fl.IntVar(&f.retries, "retries", 0, "retries per failed batch write")
	fl.StringVar(&f.encoding, "encoding", "", "source encoding: utf-8, latin1, windows-1252")
	fl.Int64Var(&f.knownSize, "known-size", 0, "expected source line count, for progress")
	fl.BoolVar(&f.dryRun, "dry-run", false, "parse and classify without writing")
	return cmd
}

// options layers profile, then explicitly set flags, over the env defaults.
func (f importFlags) options(cmd *cobra.Command, defaults importer.Options) (importer.Options, error) {
	o := defaults
	if f.profile != "" {
		p, err := importer.Profile(f.profile)
		if err != nil {
			return o, err
		}
		o = p
	}
	fl := cmd.Flags()
	if fl.Changed("batch-size") {
		o.BatchSize = f.batchSize
	}
	if fl.Changed("limit") {
		o.SessionRowLimit = f.limit
	}
	if fl.Changed("delay") {
		o.InterBatchDelay = f.delay
	}
	if fl.Changed("retries") {
		o.WriteRetries = f.retries
	}
	if fl.Changed("encoding") {
		o.Encoding = f.encoding
	}
	if fl.Changed("known-size") {
		o.KnownSourceSize = f.knownSize
	}
	o.DryRun = f.dryRun
	o = o.WithDefaults()
	return o, o.Validate()
}

// printImport writes the session summary whenever the session got as far as
// reporting (including cancelled and aborted sessions), then returns the
// session outcome.
func printImport(w io.Writer, res importer.Result, err error) error {
	if err == nil || res.Duration > 0 {
		fmt.Fprintln(w, res.Summary())
		for _, e := range res.Errors {
			fmt.Fprintln(w, "  -", e)
		}
		if res.ErrorsDropped > 0 {
			fmt.Fprintf(w, "  ... %d more\n", res.ErrorsDropped)
		}
	}
	if err != nil {
		return err
	}
	if res.Status == importer.StatusFailed {
		return fmt.Errorf("import %s failed", res.RunID)
	}
	return nil
}
