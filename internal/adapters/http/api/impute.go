// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/gradefill/internal/adapters/runner"
	"github.com/okian/gradefill/internal/domain/impute"
)

// ImputeDependencies defines the interface for imputation operations.
type ImputeDependencies interface {
	Impute(ctx context.Context, algorithm string) (string, error)
	ImputeStatus(ctx context.Context) runner.Status
}

// ImputeHandler handles imputation trigger and status requests.
type ImputeHandler struct {
	deps ImputeDependencies
}

// NewImputeHandler creates a new impute handler.
func NewImputeHandler(deps ImputeDependencies) *ImputeHandler {
	return &ImputeHandler{deps: deps}
}

// imputeRequest mirrors the JSON schema for POST /impute. The algorithm is
// optional; empty keeps the configured default.
type imputeRequest struct {
	Algorithm string `json:"algorithm"`
}

type imputeResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
}

// HandlePostImpute handles POST /impute requests. Returns 202 with the job
// id, or 409 when a run is already in flight - the trigger must stay
// disabled until the running pass completes.
func (h *ImputeHandler) HandlePostImpute(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_impute"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req imputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	jobID, err := h.deps.Impute(r.Context(), req.Algorithm)
	if err != nil {
		switch {
		case errors.Is(err, runner.ErrBusy):
			writeError(w, http.StatusConflict, "busy", NewKind(op, ErrBusy))
		case errors.Is(err, impute.ErrUnknownAlgorithm):
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}
	writeJSON(w, http.StatusAccepted, imputeResponse{Status: "accepted", JobID: jobID})
}

// HandleGetStatus handles GET /impute/status requests.
func (h *ImputeHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ImputeStatus(r.Context()))
}
