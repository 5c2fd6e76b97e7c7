// Package repository defines the cohort store interface and errors.
package repository

import (
	"context"

	"github.com/okian/gradefill/internal/domain/model"
)

// Store provides read/write access to the single mutable cohort state.
// Writers publish a whole cohort at once; readers never observe a
// partially imputed or partially rescored state.
type Store interface {
	// Replace swaps the stored cohort wholesale, taking ownership of the
	// given records. The slice order is the ranking order.
	Replace(ctx context.Context, cohort []*model.StudentRecord)

	// Snapshot returns a deep copy of the cohort in ranking order, for use
	// as the working copy of an imputation or rescore pass.
	Snapshot(ctx context.Context) []*model.StudentRecord

	// Student returns a deep copy of one record.
	// Returns ErrNotFound for an unknown id.
	Student(ctx context.Context, id string) (*model.StudentRecord, error)

	// TopN returns the first n ranking entries (all of them when n exceeds
	// the cohort size). Returns ErrInvalidLimit when n < 1.
	TopN(ctx context.Context, n int) ([]model.Entry, error)

	// Count returns the number of students stored.
	Count(ctx context.Context) int
}
