package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"dgii_fiscal/internal/fiscal/report"
	"dgii_fiscal/internal/services/reports"
)

type reportRequest struct {
	Kind    string `json:"kind"`
	RNC     string `json:"rnc"`
	Period  string `json:"period"`
	Source  string `json:"source"`
	Publish bool   `json:"publish"`
}

// RenderReport renders a 606/607/payroll file from a books file. Without publish
// the file body is returned inline.
func (h *Handlers) RenderReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "use POST"})
		return
	}
	if h.Reports == nil {
		h.JSON(w, http.StatusServiceUnavailable, map[string]any{"error": "reports not configured"})
		return
	}

	var req reportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "bad JSON: " + err.Error()})
		return
	}
	kind, err := report.ParseKind(req.Kind)
	if err != nil {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	if req.Source == "" {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "source is required"})
		return
	}

	res, err := h.Reports.Generate(r.Context(), reports.Request{
		Kind: kind, RNC: req.RNC, Period: req.Period, Source: req.Source, Publish: req.Publish,
	})
	if err != nil {
		h.Logger.Printf("[REPORT][ERR] kind=%s source=%q: %v", kind, req.Source, err)
		code := http.StatusUnprocessableEntity
		if errors.Is(err, report.ErrUnknownReport) {
			code = http.StatusBadRequest
		}
		h.JSON(w, code, map[string]any{"error": err.Error()})
		return
	}

	out := map[string]any{"report": res}
	if !req.Publish {
		out["body"] = res.Body
	}
	h.JSON(w, http.StatusOK, out)
}
