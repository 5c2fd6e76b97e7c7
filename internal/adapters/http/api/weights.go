// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// WeightsDependencies defines the interface for weight reconfiguration.
type WeightsDependencies interface {
	Rescore(ctx context.Context, slotWeights, subjectWeights map[string]float64) ([]Entry, error)
}

// WeightsHandler handles weight update requests.
type WeightsHandler struct {
	deps WeightsDependencies
}

// NewWeightsHandler creates a new weights handler.
func NewWeightsHandler(deps WeightsDependencies) *WeightsHandler {
	return &WeightsHandler{deps: deps}
}

// weightsRequest mirrors the JSON schema for PUT /weights. Omitted ids keep
// their current weight.
type weightsRequest struct {
	TimeSlots map[string]float64 `json:"time_slots"`
	Subjects  map[string]float64 `json:"subjects"`
}

// HandlePutWeights handles PUT /weights requests. The rescore is
// synchronous and never re-imputes; the response carries the new ranking.
func (h *WeightsHandler) HandlePutWeights(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_weights"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var req weightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.TimeSlots) == 0 && len(req.Subjects) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, errors.New("no weights supplied")))
		return
	}
	entries, err := h.deps.Rescore(r.Context(), req.TimeSlots, req.Subjects)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
