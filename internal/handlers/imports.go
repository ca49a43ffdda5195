package handlers

import (
	"net/http"
	"strconv"

	importitems "dgii_fiscal/internal/repository/imports"

	"go.mongodb.org/mongo-driver/bson"
)

// Imports lists import records, newest first. With ?id= it returns one record
// and its failed batches.
func (h *Handlers) Imports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "use GET"})
		return
	}
	if h.Mongo == nil {
		h.JSON(w, http.StatusServiceUnavailable, map[string]any{"error": "run journal not configured"})
		return
	}
	q := r.URL.Query()

	if id := q.Get("id"); id != "" {
		rec, err := importitems.FindImportRecordByID(r.Context(), h.Mongo, id)
		if err != nil {
			h.JSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
			return
		}
		items, err := importitems.ListItems(r.Context(), h.Mongo, id)
		if err != nil {
			h.Logger.Printf("[IMPORTS][ERR] items run=%s: %v", id, err)
		}
		h.JSON(w, http.StatusOK, map[string]any{"record": rec, "failed_batches": items})
		return
	}

	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	skip, _ := strconv.ParseInt(q.Get("skip"), 10, 64)
	filter := bson.M{}
	if st := q.Get("status"); st != "" {
		filter["status"] = st
	}
	recs, total, err := importitems.ListImportRecords(r.Context(), h.Mongo, filter, limit, skip)
	if err != nil {
		h.JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{"items": recs, "total": total})
}
