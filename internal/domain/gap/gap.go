// Package gap classifies missing score cells by run length and boundary
// position along the ordered time-slot sequence.
package gap

import (
	"github.com/okian/gradefill/internal/domain/model"
)

// maxDiscreteRun is the longest absent run still eligible for interpolation.
const maxDiscreteRun = 2

// Classify inspects the student's matrix as it currently stands and returns
// the gap type for the cell at slotIndex. Classification depends only on the
// student's own series for the given subject.
func Classify(st *model.StudentRecord, slotIndex int, subject model.SubjectID, slots []model.TimeSlot) model.GapType {
	present := func(i int) bool { return st.Present(slots[i].ID, subject) }
	return classify(present, slotIndex, len(slots))
}

// ClassifySnapshot classifies against a presence snapshot captured before
// the current imputation pass, so cells filled earlier in the pass are not
// treated as recorded data.
func ClassifySnapshot(snap map[model.CellKey]bool, slotIndex int, subject model.SubjectID, slots []model.TimeSlot) model.GapType {
	present := func(i int) bool { return snap[model.CellKey{Slot: slots[i].ID, Subject: subject}] }
	return classify(present, slotIndex, len(slots))
}

func classify(present func(int) bool, slotIndex, slotCount int) model.GapType {
	if slotIndex < 0 || slotIndex >= slotCount {
		return model.GapNone
	}
	if present(slotIndex) {
		return model.GapNone
	}
	// Boundary gaps cannot be interpolated from both sides.
	if slotIndex == 0 || slotIndex == slotCount-1 {
		return model.GapContinuous
	}
	run := 1
	for i := slotIndex - 1; i >= 0 && !present(i); i-- {
		run++
	}
	for i := slotIndex + 1; i < slotCount && !present(i); i++ {
		run++
	}
	if run > maxDiscreteRun {
		return model.GapContinuous
	}
	return model.GapDiscrete
}
