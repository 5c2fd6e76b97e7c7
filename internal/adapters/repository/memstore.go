package repository

import (
	"context"
	"sync"

	"github.com/okian/gradefill/internal/domain/model"
	"github.com/okian/gradefill/pkg/metrics"
)

// MemStore is the in-memory Store implementation. A single RWMutex guards
// the cohort slice; write operations swap the slice wholesale so readers
// holding the read lock always see a consistent pass result.
type MemStore struct {
	mu     sync.RWMutex
	cohort []*model.StudentRecord
	index  map[string]*model.StudentRecord
}

// NewMemStore creates an empty in-memory cohort store.
func NewMemStore(_ context.Context) *MemStore {
	return &MemStore{
		index: make(map[string]*model.StudentRecord),
	}
}

// Replace swaps the stored cohort wholesale.
func (s *MemStore) Replace(_ context.Context, cohort []*model.StudentRecord) {
	index := make(map[string]*model.StudentRecord, len(cohort))
	for _, st := range cohort {
		index[st.ID] = st
	}

	s.mu.Lock()
	s.cohort = cohort
	s.index = index
	s.mu.Unlock()

	metrics.UpdateCohortSize(len(cohort))
}

// Snapshot returns a deep copy of the cohort in ranking order.
func (s *MemStore) Snapshot(_ context.Context) []*model.StudentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneCohort(s.cohort)
}

// Student returns a deep copy of one record.
func (s *MemStore) Student(_ context.Context, id string) (*model.StudentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	return st.Clone(), nil
}

// TopN returns the first n ranking entries.
func (s *MemStore) TopN(_ context.Context, n int) ([]model.Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.cohort) {
		n = len(s.cohort)
	}
	out := make([]model.Entry, n)
	for i := 0; i < n; i++ {
		st := s.cohort[i]
		out[i] = model.Entry{
			Rank:      i + 1,
			StudentID: st.ID,
			Name:      st.Name,
			Score:     st.FinalScore,
		}
	}
	return out, nil
}

// Count returns the number of students stored.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cohort)
}
