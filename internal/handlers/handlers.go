package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"dgii_fiscal/internal/app"
	"dgii_fiscal/internal/config/connections/mongo"
	"dgii_fiscal/internal/config/connections/s3"
	"dgii_fiscal/internal/metrics"
	"dgii_fiscal/internal/ports"
	"dgii_fiscal/internal/services/importer"
	"dgii_fiscal/internal/services/reports"
)

type Handlers struct {
	Importer *importer.Service
	Reports  *reports.Service
	Store    ports.RegistryStore
	Mongo    *mongo.Mongo
	S3       *s3.S3
	Metrics  *metrics.Metrics
	Ping     func(ctx context.Context) error

	// BaseCtx parents background imports so shutdown cancels them.
	BaseCtx       context.Context
	ImportTimeout time.Duration

	Logger *log.Logger

	wg sync.WaitGroup
}

func New(ctx context.Context, a *app.App) *Handlers {
	return &Handlers{
		Importer:      a.Importer,
		Reports:       a.Reports,
		Store:         a.Store,
		Mongo:         a.Config.Mongo,
		S3:            a.Config.S3,
		Metrics:       a.Metrics,
		Ping:          a.Ping,
		BaseCtx:       ctx,
		ImportTimeout: 6 * time.Hour,
		Logger:        log.Default(),
	}
}

// Wait blocks until background imports have returned.
func (h *Handlers) Wait() { h.wg.Wait() }

func (h *Handlers) JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handlers) baseCtx() context.Context {
	if h.BaseCtx != nil {
		return h.BaseCtx
	}
	return context.Background()
}
