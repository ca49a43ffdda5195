package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	importitems "dgii_fiscal/internal/repository/imports"
	"dgii_fiscal/internal/services/importer"
	"dgii_fiscal/internal/services/importer/processors"

	"github.com/google/uuid"
)

type importRequest struct {
	Type            string `json:"type"`
	FilePath        string `json:"file_path"`
	ImportRecordID  string `json:"import_record_id"`
	Profile         string `json:"profile,omitempty"`
	BatchSize       int    `json:"batch_size,omitempty"`
	SessionRowLimit int    `json:"session_row_limit,omitempty"`
	DelayMillis     int    `json:"delay_ms,omitempty"`
	WriteRetries    int    `json:"write_retries,omitempty"`
	Encoding        string `json:"encoding,omitempty"`
	KnownSourceSize int64  `json:"known_source_size,omitempty"`
	DryRun          bool   `json:"dry_run,omitempty"`
	TimeoutMin      int    `json:"timeout_minutes,omitempty"`
}

// options starts from the profile (or the service defaults) and applies the
// explicit fields on top.
func (r importRequest) options(defaults importer.Options) (importer.Options, error) {
	o := defaults
	if r.Profile != "" {
		p, err := importer.Profile(r.Profile)
		if err != nil {
			return o, err
		}
		o = p
	}
	if r.BatchSize > 0 {
		o.BatchSize = r.BatchSize
	}
	if r.SessionRowLimit > 0 {
		o.SessionRowLimit = r.SessionRowLimit
	}
	if r.DelayMillis > 0 {
		o.InterBatchDelay = time.Duration(r.DelayMillis) * time.Millisecond
	}
	if r.WriteRetries > 0 {
		o.WriteRetries = r.WriteRetries
	}
	if r.Encoding != "" {
		o.Encoding = r.Encoding
	}
	if r.KnownSourceSize > 0 {
		o.KnownSourceSize = r.KnownSourceSize
	}
	o.DryRun = r.DryRun
	o = o.WithDefaults()
	return o, o.Validate()
}

// Import starts an importer session in the background and answers 202 with
// the run id to poll under /imports.
func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use POST"})
		return
	}
	if h.Importer == nil {
		h.JSON(w, http.StatusServiceUnavailable, map[string]string{"error": "importer not configured"})
		return
	}

	var req importRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		h.Logger.Printf("[IMPORT][REQ][ERR] bad JSON: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "bad JSON: " + err.Error()})
		return
	}
	req.FilePath = strings.TrimSpace(req.FilePath)
	if req.FilePath == "" && req.ImportRecordID != "" && h.Mongo != nil {
		if rec, err := importitems.FindImportRecordByID(r.Context(), h.Mongo, req.ImportRecordID); err == nil {
			req.FilePath = rec.Path
			if req.Type == "" {
				req.Type = rec.Type
			}
		}
	}
	if req.FilePath == "" {
		h.Logger.Printf("[IMPORT][REQ][ERR] file_path is required")
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "file_path is required"})
		return
	}
	if req.Type == "" {
		req.Type = processors.TypeTaxpayers
	}
	if _, ok := h.Importer.Processors[req.Type]; !ok {
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": "unknown import type: " + req.Type})
		return
	}
	opts, err := req.options(h.Importer.Defaults)
	if err != nil {
		h.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	runID := req.ImportRecordID
	if runID == "" {
		runID = uuid.NewString()
	}

	timeout := h.ImportTimeout
	if req.TimeoutMin > 0 {
		timeout = time.Duration(req.TimeoutMin) * time.Minute
	}
	ireq := importer.Request{Type: req.Type, Source: req.FilePath, RunID: runID, Options: opts}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		start := time.Now()

		ctx, cancel := context.WithTimeout(h.baseCtx(), timeout)
		defer cancel()

		res, err := h.Importer.Import(ctx, ireq)
		if err != nil {
			h.Logger.Printf("[IMPORT][ERR][BG] run=%s type=%q path=%q err=%v took=%s",
				runID, ireq.Type, ireq.Source, err, time.Since(start))
			return
		}
		h.Logger.Printf("[IMPORT][OK][BG] %s took=%s", res.Summary(), time.Since(start))
	}()

	h.JSON(w, http.StatusAccepted, map[string]any{
		"status":            "started",
		"run_id":            runID,
		"type":              req.Type,
		"file_path":         req.FilePath,
		"batch_size":        opts.BatchSize,
		"session_row_limit": opts.SessionRowLimit,
		"dry_run":           opts.DryRun,
	})
}
