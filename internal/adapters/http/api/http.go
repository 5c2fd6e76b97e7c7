// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/gradefill/internal/adapters/repository"
	"github.com/okian/gradefill/internal/adapters/runner"
	"github.com/okian/gradefill/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Write operations.
	LoadCohort(ctx context.Context, students []*model.StudentRecord) error
	LoadCohortCSV(ctx context.Context, body []byte) error
	Impute(ctx context.Context, algorithm string) (string, error)
	Rescore(ctx context.Context, slotWeights, subjectWeights map[string]float64) ([]model.Entry, error)

	// Read operations.
	ImputeStatus(ctx context.Context) runner.Status
	Ranking(ctx context.Context, n int) ([]model.Entry, error)
	Student(ctx context.Context, id string) (*model.StudentRecord, error)
	Correlation(ctx context.Context, subjectA, subjectB, slot string) float64
	ExportRanking(ctx context.Context) ([]byte, error)
	ExportCSV(ctx context.Context) ([]byte, error)
	MaxRankingLimit() int
}

// Entry mirrors the read shape returned by ranking queries.
type Entry = model.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	cohortHandler      *CohortHandler
	imputeHandler      *ImputeHandler
	rankingHandler     *RankingHandler
	studentHandler     *StudentHandler
	weightsHandler     *WeightsHandler
	correlationHandler *CorrelationHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		cohortHandler:      NewCohortHandler(deps),
		imputeHandler:      NewImputeHandler(deps),
		rankingHandler:     NewRankingHandler(deps, deps.MaxRankingLimit()),
		studentHandler:     NewStudentHandler(deps),
		weightsHandler:     NewWeightsHandler(deps),
		correlationHandler: NewCorrelationHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/cohort", MetricsMiddleware(s.cohortHandler.HandlePostCohort, "cohort"))
	mux.HandleFunc("/cohort/export", MetricsMiddleware(s.cohortHandler.HandleExportCSV, "cohort_export"))
	mux.HandleFunc("/impute", MetricsMiddleware(s.imputeHandler.HandlePostImpute, "impute"))
	mux.HandleFunc("/impute/status", MetricsMiddleware(s.imputeHandler.HandleGetStatus, "impute_status"))
	mux.HandleFunc("/ranking", MetricsMiddleware(s.rankingHandler.HandleGetRanking, "ranking"))
	mux.HandleFunc("/ranking/export", MetricsMiddleware(s.rankingHandler.HandleExportRanking, "ranking_export"))
	mux.HandleFunc("/students/", MetricsMiddleware(s.studentHandler.HandleGetStudent, "students"))
	mux.HandleFunc("/weights", MetricsMiddleware(s.weightsHandler.HandlePutWeights, "weights"))
	mux.HandleFunc("/correlation", MetricsMiddleware(s.correlationHandler.HandleGetCorrelation, "correlation"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
