// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/okian/gradefill/internal/domain/model"
)

// CohortDependencies defines the interface for cohort load operations.
type CohortDependencies interface {
	LoadCohort(ctx context.Context, students []*model.StudentRecord) error
	LoadCohortCSV(ctx context.Context, body []byte) error
	ExportCSV(ctx context.Context) ([]byte, error)
}

// CohortHandler handles cohort load and export requests.
type CohortHandler struct {
	deps CohortDependencies
}

// NewCohortHandler creates a new cohort handler.
func NewCohortHandler(deps CohortDependencies) *CohortHandler {
	return &CohortHandler{deps: deps}
}

// cohortRequest mirrors the JSON schema for POST /cohort. A subject omitted
// from a slot's score map is an absent cell; 0 is a recorded zero.
type cohortRequest struct {
	Students []studentPayload `json:"students"`
}

type studentPayload struct {
	ID     string                        `json:"id"`
	Name   string                        `json:"name"`
	Scores map[string]map[string]float64 `json:"scores"`
}

func (p studentPayload) toRecord() *model.StudentRecord {
	name := p.Name
	if name == "" {
		name = p.ID
	}
	st := model.NewStudentRecord(p.ID, name)
	for slot, bySubject := range p.Scores {
		for subject, v := range bySubject {
			st.SetValue(model.SlotID(slot), model.SubjectID(subject), v)
		}
	}
	return st
}

type loadResponse struct {
	Status   string `json:"status"`
	Students int    `json:"students"`
}

// HandlePostCohort handles POST /cohort requests. The body is either the
// JSON schema above or a wide-table CSV (Content-Type text/csv).
func (h *CohortHandler) HandlePostCohort(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_cohort"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := h.deps.LoadCohortCSV(r.Context(), body); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, loadResponse{Status: "loaded"})
		return
	}

	var req cohortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Students) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, errors.New("missing students")))
		return
	}

	students := make([]*model.StudentRecord, len(req.Students))
	for i, p := range req.Students {
		students[i] = p.toRecord()
	}
	if err := h.deps.LoadCohort(r.Context(), students); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, loadResponse{Status: "loaded", Students: len(students)})
}

// HandleExportCSV handles GET /cohort/export requests.
func (h *CohortHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_csv"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	data, err := h.deps.ExportCSV(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cohort.csv"`)
	_, _ = w.Write(data)
}
