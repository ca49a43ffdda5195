package handlers

import (
	"errors"
	"net/http"
	"strings"

	"dgii_fiscal/internal/fiscal/identifier"
	"dgii_fiscal/internal/fiscal/ncf"
	"dgii_fiscal/internal/models"
	"dgii_fiscal/internal/ports"
)

type taxpayerResp struct {
	Identifier string           `json:"identifier"`
	Formatted  string           `json:"formatted"`
	Kind       string           `json:"kind"`
	Valid      bool             `json:"valid"`
	Registered bool             `json:"registered"`
	Taxpayer   *models.Taxpayer `json:"taxpayer,omitempty"`
}

// Taxpayer looks an RNC or cédula up in the registry. The identifier is
// checked locally first; an invalid check digit never reaches the store.
func (h *Handlers) Taxpayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "use GET"})
		return
	}
	raw := strings.TrimSpace(r.URL.Query().Get("id"))
	digits := identifier.Digits(raw)
	resp := taxpayerResp{
		Identifier: digits,
		Formatted:  identifier.Format(raw),
		Kind:       identifier.KindOf(raw).String(),
		Valid:      identifier.Validate(raw),
	}
	if !resp.Valid {
		h.JSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	if h.Store == nil {
		h.JSON(w, http.StatusServiceUnavailable, map[string]any{"error": "registry not configured"})
		return
	}

	key := strings.Repeat("0", identifier.PersonalLength-len(digits)) + digits
	tp, err := h.Store.Find(r.Context(), key)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		h.JSON(w, http.StatusNotFound, resp)
	case err != nil:
		h.JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
	default:
		resp.Registered = true
		resp.Taxpayer = tp
		h.JSON(w, http.StatusOK, resp)
	}
}

type receiptResp struct {
	Value       string `json:"value"`
	Valid       bool   `json:"valid"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Sequence    int64  `json:"sequence,omitempty"`
}

// Receipt validates an NCF passed as ?ncf=.
func (h *Handlers) Receipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.JSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "use GET"})
		return
	}
	v := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ncf")))
	resp := receiptResp{Value: v, Valid: ncf.ValidateReceiptNumber(v)}
	if dt, seq, ok := ncf.ParseReceiptNumber(v); ok {
		resp.Type, resp.Description, resp.Sequence = dt.Key, dt.Description, seq
	}
	h.JSON(w, http.StatusOK, resp)
}
