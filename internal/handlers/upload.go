package handlers

import (
	"fmt"
	"net/http"
	"path"
	"time"

	importitems "dgii_fiscal/internal/repository/imports"
	"dgii_fiscal/internal/services/importer/processors"
	auth "dgii_fiscal/internal/transport/auth"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Upload accepts multipart/form-data with a `file` field (and optional
// `type`), stores the file in S3 and creates an import record to start the
// import from.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "use POST"})
		return
	}
	if h.S3 == nil || h.S3.Client == nil || h.Mongo == nil {
		h.JSON(w, http.StatusServiceUnavailable, map[string]any{"error": "uploads need S3 and Mongo"})
		return
	}

	if err := r.ParseMultipartForm(128 << 20); err != nil {
		h.Logger.Printf("[UPLOAD][ERR] parse multipart: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "bad multipart: " + err.Error()})
		return
	}

	importType := r.FormValue("type")
	if importType == "" {
		importType = processors.TypeTaxpayers
	}

	f, fh, err := r.FormFile("file")
	if err != nil {
		h.Logger.Printf("[UPLOAD][ERR] missing file: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "file is required"})
		return
	}
	defer f.Close()

	fname := path.Base(fh.Filename)
	key := fmt.Sprintf("imports/%s/%d-%s", importType, time.Now().UnixNano(), fname)

	size := fh.Size
	if size <= 0 {
		size = -1
	}

	info, err := h.S3.Client.PutObject(r.Context(), h.S3.Bucket, key, f, size, minio.PutObjectOptions{ContentType: fh.Header.Get("Content-Type")})
	if err != nil {
		h.Logger.Printf("[UPLOAD][ERR] s3 put: %v", err)
		h.JSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to store file: " + err.Error()})
		return
	}

	s3path := fmt.Sprintf("s3://%s/%s", h.S3.Bucket, key)
	rec := importitems.Record{
		ID:        uuid.NewString(),
		Status:    importitems.StatusUploaded,
		Type:      importType,
		Path:      s3path,
		Bucket:    &h.S3.Bucket,
		Key:       &key,
		SizeBytes: &info.Size,
	}
	if op, errGet := auth.GetOperator(r.Context()); errGet == nil {
		rec.Operator = op
	}

	if _, err := importitems.InsertImportRecord(r.Context(), h.Mongo, rec); err != nil {
		h.Logger.Printf("[UPLOAD][ERR] db insert: %v", err)
		h.JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	h.JSON(w, http.StatusCreated, map[string]any{"id": rec.ID, "path": s3path, "size": info.Size})
}
