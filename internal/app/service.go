// Package app provides the core business service that implements the
// dependencies required by the HTTP API.
package app

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/gradefill/internal/adapters/codec"
	"github.com/okian/gradefill/internal/adapters/export"
	"github.com/okian/gradefill/internal/adapters/repository"
	"github.com/okian/gradefill/internal/adapters/runner"
	"github.com/okian/gradefill/internal/domain/correlate"
	"github.com/okian/gradefill/internal/domain/impute"
	"github.com/okian/gradefill/internal/domain/model"
	"github.com/okian/gradefill/internal/domain/ranking"
	"github.com/okian/gradefill/internal/domain/sampler"
	"github.com/okian/gradefill/pkg/logger"
	"github.com/okian/gradefill/pkg/metrics"
)

// stopWaitTimeout bounds how long Stop waits for an in-flight run.
const stopWaitTimeout = 30 * time.Second

// Service implements the API dependencies for the imputation and ranking
// system. The cohort store is the single source of truth; every write path
// (load, imputation, rescore) publishes a whole cohort at once.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	engine *impute.Engine
	runner *runner.Runner

	// Configuration
	slots           []model.TimeSlot
	subjects        []model.Subject
	algorithm       impute.Algorithm
	seed            int64
	jitter          float64
	maxRankingLimit int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		algorithm:       impute.AlgorithmNormal,
		jitter:          2.5,
		maxRankingLimit: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if len(s.slots) == 0 || len(s.subjects) == 0 {
		return fmt.Errorf("%w: time slots and subjects must be configured", ErrInvalidData)
	}

	s.store = repository.NewMemStore(ctx)

	samplerOpts := []sampler.Option{}
	if s.seed != 0 {
		samplerOpts = append(samplerOpts, sampler.WithSeed(s.seed))
	}
	s.engine = impute.New(
		impute.WithSampler(sampler.New(samplerOpts...)),
		impute.WithJitterAmplitude(s.jitter),
	)
	s.runner = runner.New(runner.WithLogger(s.logger.Named("runner")))

	s.started = true
	s.logger.Info(ctx, "gradefill service started",
		logger.Int("timeSlots", len(s.slots)),
		logger.Int("subjects", len(s.subjects)),
		logger.String("algorithm", string(s.algorithm)),
	)
	return nil
}

// Stop drains the in-flight imputation run, if any.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopWaitTimeout)
	defer cancel()
	if err := s.runner.Wait(ctx); err != nil {
		s.logger.Warn(ctx, "stopped with imputation run still in flight", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "gradefill service stopped")
}

// LoadCohort validates the students against the declared configuration,
// replaces the stored cohort, and computes a provisional ranking. Absent
// cells score as zero at this point; the ranking is an approximation until
// an imputation pass runs.
func (s *Service) LoadCohort(ctx context.Context, students []*model.StudentRecord) error {
	slots, subjects := s.configSnapshot()

	if err := validateStudents(students, slots, subjects); err != nil {
		metrics.RecordErrorByComponent("app", "invalid_cohort")
		return err
	}

	ranking.Score(students, slots, subjects)
	metrics.RecordRescore()
	s.store.Replace(ctx, students)

	s.logger.Info(ctx, "cohort loaded", logger.Int("students", len(students)))
	return nil
}

// LoadCohortCSV parses and loads a wide-table CSV body.
func (s *Service) LoadCohortCSV(ctx context.Context, body []byte) error {
	slots, subjects := s.configSnapshot()
	students, err := codec.Read(bytes.NewReader(body), slots, subjects)
	if err != nil {
		metrics.RecordErrorByComponent("app", "invalid_csv")
		return fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	return s.LoadCohort(ctx, students)
}

// Impute triggers the asynchronous imputation pass. An empty algorithm uses
// the configured one. Returns the job id, or runner.ErrBusy when a pass is
// already in flight.
func (s *Service) Impute(ctx context.Context, algorithm string) (string, error) {
	slots, subjects := s.configSnapshot()

	algo := s.configuredAlgorithm()
	if algorithm != "" {
		parsed, err := impute.ParseAlgorithm(algorithm)
		if err != nil {
			return "", err
		}
		algo = parsed
	}

	job := func(jobCtx context.Context) []string {
		working := s.store.Snapshot(jobCtx)
		log := s.engine.Run(jobCtx, working, slots, subjects, algo)
		ranking.Score(working, slots, subjects)
		metrics.RecordRescore()
		s.store.Replace(jobCtx, working)
		return log
	}
	return s.runner.Trigger(ctx, job)
}

// ImputeStatus reports the runner state and the last completed run's log.
func (s *Service) ImputeStatus(ctx context.Context) runner.Status {
	return s.runner.Status(ctx)
}

// Rescore applies new weights and synchronously recomputes the ranking.
// Weights for undeclared ids are rejected; omitted ids keep their weight.
// No re-imputation happens here.
func (s *Service) Rescore(ctx context.Context, slotWeights map[string]float64, subjectWeights map[string]float64) ([]model.Entry, error) {
	s.mu.Lock()
	for id := range slotWeights {
		if !s.hasSlot(model.SlotID(id)) {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: unknown time slot %q", ErrInvalidData, id)
		}
	}
	for id := range subjectWeights {
		if !s.hasSubject(model.SubjectID(id)) {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: unknown subject %q", ErrInvalidData, id)
		}
	}
	for i := range s.slots {
		if w, ok := slotWeights[string(s.slots[i].ID)]; ok {
			s.slots[i].Weight = w
		}
	}
	for i := range s.subjects {
		if w, ok := subjectWeights[string(s.subjects[i].ID)]; ok {
			s.subjects[i].Weight = w
		}
	}
	s.mu.Unlock()

	slots, subjects := s.configSnapshot()
	working := s.store.Snapshot(ctx)
	ranking.Score(working, slots, subjects)
	metrics.RecordRescore()
	s.store.Replace(ctx, working)

	s.logger.Info(ctx, "weights updated, cohort rescored",
		logger.Int("slotWeights", len(slotWeights)),
		logger.Int("subjectWeights", len(subjectWeights)),
	)
	return ranking.Entries(working), nil
}

// Ranking returns the top n ranking entries.
func (s *Service) Ranking(ctx context.Context, n int) ([]model.Entry, error) {
	return s.store.TopN(ctx, n)
}

// Student returns one student's record, including imputation provenance.
func (s *Service) Student(ctx context.Context, id string) (*model.StudentRecord, error) {
	return s.store.Student(ctx, id)
}

// Correlation returns the Pearson correlation between two subjects' scores
// at a time slot across the current cohort.
func (s *Service) Correlation(ctx context.Context, subjectA, subjectB, slot string) float64 {
	cohort := s.store.Snapshot(ctx)
	return correlate.Pearson(cohort, model.SubjectID(subjectA), model.SubjectID(subjectB), model.SlotID(slot))
}

// ExportRanking renders the ranked cohort as an XLSX report.
func (s *Service) ExportRanking(ctx context.Context) ([]byte, error) {
	slots, subjects := s.configSnapshot()
	data, err := export.Ranking(s.store.Snapshot(ctx), slots, subjects)
	if err != nil {
		metrics.RecordErrorByComponent("app", "export_failed")
		return nil, fmt.Errorf("export ranking: %w", err)
	}
	return data, nil
}

// ExportCSV writes the cohort back out in the wide-table format.
func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	slots, subjects := s.configSnapshot()
	var buf bytes.Buffer
	if err := codec.Write(&buf, s.store.Snapshot(ctx), slots, subjects); err != nil {
		metrics.RecordErrorByComponent("app", "export_failed")
		return nil, fmt.Errorf("export csv: %w", err)
	}
	return buf.Bytes(), nil
}

// MaxRankingLimit exposes the configured ranking limit cap to the API layer.
func (s *Service) MaxRankingLimit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxRankingLimit
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	algorithm := s.algorithm
	slotCount := len(s.slots)
	subjectCount := len(s.subjects)
	s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":   started,
		"algorithm": string(algorithm),
		"timeSlots": slotCount,
		"subjects":  subjectCount,
	}
	if started {
		cohortSize := s.store.Count(ctx)
		stats["cohortSize"] = cohortSize
		stats["missingCells"] = s.missingCells(ctx)
		stats["runner"] = string(s.runner.Status(ctx).State)
		metrics.UpdateCohortSize(cohortSize)
	}
	return stats
}

// missingCells counts still-absent cells over the declared table shape.
func (s *Service) missingCells(ctx context.Context) int {
	slots, subjects := s.configSnapshot()
	missing := 0
	for _, st := range s.store.Snapshot(ctx) {
		for _, slot := range slots {
			for i := range subjects {
				if !st.Present(slot.ID, subjects[i].ID) {
					missing++
				}
			}
		}
	}
	return missing
}

// configSnapshot copies the declared table shape under the read lock so a
// running pass keeps a consistent view across a concurrent weight update.
func (s *Service) configSnapshot() ([]model.TimeSlot, []model.Subject) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slots := make([]model.TimeSlot, len(s.slots))
	copy(slots, s.slots)
	subjects := make([]model.Subject, len(s.subjects))
	copy(subjects, s.subjects)
	return slots, subjects
}

func (s *Service) configuredAlgorithm() impute.Algorithm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.algorithm
}

// hasSlot and hasSubject assume the caller holds the lock.
func (s *Service) hasSlot(id model.SlotID) bool {
	for i := range s.slots {
		if s.slots[i].ID == id {
			return true
		}
	}
	return false
}

func (s *Service) hasSubject(id model.SubjectID) bool {
	for i := range s.subjects {
		if s.subjects[i].ID == id {
			return true
		}
	}
	return false
}

// validateStudents enforces the load-time contract: every cell key must be
// declared and every value within [0, fullMarks]; ids must be unique.
func validateStudents(students []*model.StudentRecord, slots []model.TimeSlot, subjects []model.Subject) error {
	known := make(map[model.CellKey]float64, len(slots)*len(subjects))
	for _, slot := range slots {
		for i := range subjects {
			known[model.CellKey{Slot: slot.ID, Subject: subjects[i].ID}] = subjects[i].FullMarks
		}
	}

	seen := make(map[string]struct{}, len(students))
	for _, st := range students {
		if st.ID == "" {
			return fmt.Errorf("%w: student with empty id", ErrInvalidData)
		}
		if _, dup := seen[st.ID]; dup {
			return fmt.Errorf("%w: duplicate student id %q", ErrInvalidData, st.ID)
		}
		seen[st.ID] = struct{}{}
		for key, cell := range st.Matrix {
			full, ok := known[key]
			if !ok {
				return fmt.Errorf("%w: student %q cell (%s, %s) not in declared configuration",
					ErrInvalidData, st.ID, key.Slot, key.Subject)
			}
			if cell.Present && (cell.Value < 0 || cell.Value > full) {
				return fmt.Errorf("%w: student %q cell (%s, %s) value %g outside [0, %g]",
					ErrInvalidData, st.ID, key.Slot, key.Subject, cell.Value, full)
			}
		}
	}
	return nil
}
