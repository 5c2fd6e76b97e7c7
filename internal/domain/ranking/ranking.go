// Package ranking computes weighted composite scores and orders the cohort.
package ranking

import (
	"sort"

	"github.com/okian/gradefill/internal/domain/model"
)

// Score overwrites each student's FinalScore with the weighted composite
// (per-slot subject-weighted sum, scaled by the slot weight) and re-sorts
// the cohort descending by score. Absent cells count as 0, which makes a
// pre-imputation call a defined approximation rather than an error. The
// sort is stable, so ties keep their prior order, and a repeated call on
// unchanged data is idempotent.
func Score(cohort []*model.StudentRecord, slots []model.TimeSlot, subjects []model.Subject) []*model.StudentRecord {
	for _, st := range cohort {
		var total float64
		for _, slot := range slots {
			var slotSum float64
			for i := range subjects {
				if v, ok := st.Value(slot.ID, subjects[i].ID); ok {
					slotSum += v * subjects[i].Weight
				}
			}
			total += slotSum * slot.Weight
		}
		st.FinalScore = total
	}
	sort.SliceStable(cohort, func(i, j int) bool {
		return cohort[i].FinalScore > cohort[j].FinalScore
	})
	return cohort
}

// Entries projects a ranked cohort into the client-facing read shape.
func Entries(cohort []*model.StudentRecord) []model.Entry {
	out := make([]model.Entry, len(cohort))
	for i, st := range cohort {
		out[i] = model.Entry{
			Rank:      i + 1,
			StudentID: st.ID,
			Name:      st.Name,
			Score:     st.FinalScore,
		}
	}
	return out
}
