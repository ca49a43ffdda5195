// Package app assembles the services from an open Config.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"dgii_fiscal/internal/adapters/opener"
	"dgii_fiscal/internal/adapters/publisher"
	"dgii_fiscal/internal/config"
	"dgii_fiscal/internal/lock"
	"dgii_fiscal/internal/metrics"
	"dgii_fiscal/internal/ports"
	"dgii_fiscal/internal/repository/database"
	importitems "dgii_fiscal/internal/repository/imports"
	"dgii_fiscal/internal/repository/local"
	"dgii_fiscal/internal/services/importer"
	"dgii_fiscal/internal/services/importer/processors"
	"dgii_fiscal/internal/services/reports"
	"dgii_fiscal/internal/services/transactions"
)

type App struct {
	Config *config.Config

	Store       ports.RegistryStore
	Checkpoints ports.CheckpointStore
	Journal     ports.RunJournal
	Locker      ports.Locker
	Opener      *opener.CompoundOpener
	Publisher   ports.Publisher
	Metrics     *metrics.Metrics

	Importer *importer.Service
	Books    *transactions.Service
	Reports  *reports.Service
}

func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	s := cfg.Settings
	a := &App{Config: cfg, Metrics: metrics.New()}

	switch s.RegistryDriver {
	case config.DriverPostgres:
		repo := database.NewTaxpayersRepo(cfg.Postgres, s.RegistryTable)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("registry schema: %w", err)
		}
		a.Store = repo
		if cfg.Mongo == nil {
			cps := database.NewCheckpointsRepo(cfg.Postgres, "")
			if err := cps.EnsureSchema(ctx); err != nil {
				return nil, fmt.Errorf("checkpoint schema: %w", err)
			}
			a.Checkpoints = cps
		}
	case config.DriverSQLite:
		reg, err := local.NewRegistry(cfg.SQLite.DB)
		if err != nil {
			return nil, err
		}
		a.Store, a.Checkpoints = reg, reg
	}
	if cfg.Mongo != nil {
		j := importitems.NewJournal(cfg.Mongo)
		a.Journal = j
		if a.Checkpoints == nil {
			a.Checkpoints = j
		}
	}

	switch {
	case cfg.Redis != nil:
		a.Locker = lock.NewRedisLocker(cfg.Redis.Client, s.LockTTL)
	case s.LockDriver == config.LockPostgres && cfg.Postgres == nil:
		return nil, fmt.Errorf("IMPORT_LOCK=postgres needs REGISTRY_DRIVER=postgres")
	case (s.LockDriver == config.LockPostgres || s.LockDriver == config.LockAuto) && cfg.Postgres != nil:
		a.Locker = lock.NewAdvisoryLocker(cfg.Postgres)
	}

	var s3Op *opener.S3Opener
	bucket := ""
	if cfg.S3 != nil {
		s3Op = opener.NewS3Opener(cfg.S3.Client)
		bucket = cfg.S3.Bucket
		a.Publisher = publisher.NewS3Publisher(cfg.S3.Client, cfg.S3.Bucket, s.ReportsPath)
	} else {
		a.Publisher = publisher.NewFilePublisher(s.ReportsDir)
	}
	a.Opener = opener.NewCompoundOpener(
		opener.NewFileOpener(s.SourceDir),
		opener.NewHTTPOpener(&http.Client{}),
		s3Op,
		bucket,
	)

	rules, err := processors.LoadRules(s.RulesFile)
	if err != nil {
		return nil, err
	}

	imp := importer.NewService(a.Opener, processors.DefaultRegistry(a.Store, rules), a.Store)
	imp.Checkpoints = a.Checkpoints
	imp.Journal = a.Journal
	imp.Locker = a.Locker
	imp.Metrics = a.Metrics
	imp.Defaults = s.Import
	a.Importer = imp

	a.Books = transactions.NewService(a.Opener)
	a.Reports = reports.NewService(a.Books, a.Publisher, a.Metrics)

	log.Printf("[APP] registry=%s checkpoints=%t journal=%t lock=%t publisher=%T",
		s.RegistryDriver, a.Checkpoints != nil, a.Journal != nil, a.Locker != nil, a.Publisher)
	return a, nil
}

// Ping reports store reachability for the health endpoint.
func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return a.Config.CheckConnections(ctx)
}
