// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// CorrelationDependencies defines the interface for correlation queries.
type CorrelationDependencies interface {
	Correlation(ctx context.Context, subjectA, subjectB, slot string) float64
}

// CorrelationHandler handles cross-subject correlation requests.
type CorrelationHandler struct {
	deps CorrelationDependencies
}

// NewCorrelationHandler creates a new correlation handler.
func NewCorrelationHandler(deps CorrelationDependencies) *CorrelationHandler {
	return &CorrelationHandler{deps: deps}
}

type correlationResponse struct {
	SubjectA    string  `json:"subject_a"`
	SubjectB    string  `json:"subject_b"`
	Slot        string  `json:"slot"`
	Correlation float64 `json:"correlation"`
}

// HandleGetCorrelation handles
// GET /correlation?subject_a=X&subject_b=Y&slot=Z requests. An undersized
// sample reports 0, not an error.
func (h *CorrelationHandler) HandleGetCorrelation(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_correlation"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	a, b, slot := q.Get("subject_a"), q.Get("subject_b"), q.Get("slot")
	if a == "" || b == "" || slot == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	writeJSON(w, http.StatusOK, correlationResponse{
		SubjectA:    a,
		SubjectB:    b,
		Slot:        slot,
		Correlation: h.deps.Correlation(r.Context(), a, b, slot),
	})
}
