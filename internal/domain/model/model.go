// Package model contains domain models passed between layers.
package model

// SlotID identifies a time slot (exam round, term, etc.).
type SlotID string

// SubjectID identifies a subject.
type SubjectID string

// Category partitions subjects for display grouping.
type Category string

// Subject categories.
const (
	CategoryMain Category = "main"
	CategorySub  Category = "sub"
)

// TimeSlot is one column group of the score table. The declared order of
// time slots defines temporal adjacency for gap analysis and interpolation.
type TimeSlot struct {
	ID     SlotID  `json:"id"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// Subject is one scored discipline. Subjects are iterated in declared order
// so log output and reference-subject selection are deterministic.
type Subject struct {
	ID        SubjectID `json:"id"`
	Name      string    `json:"name"`
	Weight    float64   `json:"weight"`
	FullMarks float64   `json:"full_marks"`
	Category  Category  `json:"category"`
}

// CellKey addresses one cell of a student's score matrix.
type CellKey struct {
	Slot    SlotID    `json:"slot"`
	Subject SubjectID `json:"subject"`
}

// Cell is either a recorded score or absent. Absence is carried by the
// Present flag, never by a zero value.
type Cell struct {
	Value   float64 `json:"value"`
	Present bool    `json:"present"`
}

// GapType classifies a missing cell relative to its run of absent neighbors.
type GapType string

// Gap classifications.
const (
	GapNone       GapType = "none"
	GapDiscrete   GapType = "discrete"
	GapContinuous GapType = "continuous"
)

// Detail records the provenance of one imputed cell.
type Detail struct {
	Value  float64 `json:"value"`
	Gap    GapType `json:"gap_type"`
	Method string  `json:"method"`
}

// StudentRecord holds one student's sparse score matrix plus derived state.
// The imputation engine fills Matrix in place and records Details for every
// cell it writes; the scoring aggregator overwrites FinalScore.
type StudentRecord struct {
	ID         string
	Name       string
	Matrix     map[CellKey]Cell
	FinalScore float64
	Details    map[CellKey]Detail
}

// NewStudentRecord creates an empty record with initialized maps.
func NewStudentRecord(id, name string) *StudentRecord {
	return &StudentRecord{
		ID:      id,
		Name:    name,
		Matrix:  make(map[CellKey]Cell),
		Details: make(map[CellKey]Detail),
	}
}

// Value returns the cell value and whether it is present.
func (s *StudentRecord) Value(slot SlotID, subject SubjectID) (float64, bool) {
	c := s.Matrix[CellKey{Slot: slot, Subject: subject}]
	return c.Value, c.Present
}

// Present reports whether the cell has a recorded value.
func (s *StudentRecord) Present(slot SlotID, subject SubjectID) bool {
	return s.Matrix[CellKey{Slot: slot, Subject: subject}].Present
}

// SetValue writes a value into the matrix, marking the cell present.
func (s *StudentRecord) SetValue(slot SlotID, subject SubjectID, v float64) {
	s.Matrix[CellKey{Slot: slot, Subject: subject}] = Cell{Value: v, Present: true}
}

// RecordDetail stores imputation provenance for one cell.
func (s *StudentRecord) RecordDetail(slot SlotID, subject SubjectID, d Detail) {
	if s.Details == nil {
		s.Details = make(map[CellKey]Detail)
	}
	s.Details[CellKey{Slot: slot, Subject: subject}] = d
}

// PresenceSnapshot captures which cells are present right now. The engine
// classifies gaps against this snapshot so a just-filled neighbor is not
// mistaken for recorded data.
func (s *StudentRecord) PresenceSnapshot() map[CellKey]bool {
	snap := make(map[CellKey]bool, len(s.Matrix))
	for k, c := range s.Matrix {
		if c.Present {
			snap[k] = true
		}
	}
	return snap
}

// Clone returns a deep copy of the record.
func (s *StudentRecord) Clone() *StudentRecord {
	c := &StudentRecord{
		ID:         s.ID,
		Name:       s.Name,
		FinalScore: s.FinalScore,
		Matrix:     make(map[CellKey]Cell, len(s.Matrix)),
		Details:    make(map[CellKey]Detail, len(s.Details)),
	}
	for k, v := range s.Matrix {
		c.Matrix[k] = v
	}
	for k, v := range s.Details {
		c.Details[k] = v
	}
	return c
}

// CloneCohort deep-copies a cohort preserving order.
func CloneCohort(cohort []*StudentRecord) []*StudentRecord {
	out := make([]*StudentRecord, len(cohort))
	for i, s := range cohort {
		out[i] = s.Clone()
	}
	return out
}

// Entry represents one row of the ranked cohort as read by clients.
type Entry struct {
	Rank      int     `json:"rank"`
	StudentID string  `json:"student_id"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
}
