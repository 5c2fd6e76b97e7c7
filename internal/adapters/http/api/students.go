// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/gradefill/internal/domain/model"
)

// StudentDependencies defines the interface for student read operations.
type StudentDependencies interface {
	Student(ctx context.Context, id string) (*model.StudentRecord, error)
}

// StudentHandler handles student detail requests.
type StudentHandler struct {
	deps StudentDependencies
}

// NewStudentHandler creates a new student handler.
func NewStudentHandler(deps StudentDependencies) *StudentHandler {
	return &StudentHandler{deps: deps}
}

// studentResponse is the wire shape of one record: nested slot -> subject
// maps instead of the domain's struct-keyed matrix. Absent cells are simply
// missing from Scores.
type studentResponse struct {
	ID         string                              `json:"id"`
	Name       string                              `json:"name"`
	FinalScore float64                             `json:"final_score"`
	Scores     map[string]map[string]float64       `json:"scores"`
	Imputed    map[string]map[string]detailPayload `json:"imputed,omitempty"`
}

type detailPayload struct {
	Value   float64 `json:"value"`
	GapType string  `json:"gap_type"`
	Method  string  `json:"method"`
}

func toStudentResponse(st *model.StudentRecord) studentResponse {
	resp := studentResponse{
		ID:         st.ID,
		Name:       st.Name,
		FinalScore: st.FinalScore,
		Scores:     make(map[string]map[string]float64),
	}
	for key, cell := range st.Matrix {
		if !cell.Present {
			continue
		}
		slot := string(key.Slot)
		if resp.Scores[slot] == nil {
			resp.Scores[slot] = make(map[string]float64)
		}
		resp.Scores[slot][string(key.Subject)] = cell.Value
	}
	if len(st.Details) > 0 {
		resp.Imputed = make(map[string]map[string]detailPayload)
		for key, d := range st.Details {
			slot := string(key.Slot)
			if resp.Imputed[slot] == nil {
				resp.Imputed[slot] = make(map[string]detailPayload)
			}
			resp.Imputed[slot][string(key.Subject)] = detailPayload{
				Value:   d.Value,
				GapType: string(d.Gap),
				Method:  d.Method,
			}
		}
	}
	return resp
}

// HandleGetStudent handles GET /students/{id} requests.
func (h *StudentHandler) HandleGetStudent(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_student"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/students/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	st, err := h.deps.Student(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, toStudentResponse(st))
}
