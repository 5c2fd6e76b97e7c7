// Package correlate computes cross-subject Pearson correlation over a
// cohort's cross-section at one time slot.
package correlate

import (
	"math"

	"github.com/okian/gradefill/internal/domain/model"
)

// minPairs is the smallest paired sample considered meaningful. Below this
// the coefficient is defined as 0 rather than reported as an error.
const minPairs = 3

// Pearson returns the correlation coefficient between two subjects' scores
// at the given time slot, paired over students that have both values
// present. It returns 0 when fewer than minPairs pairs exist or when either
// series has exactly zero variance.
func Pearson(cohort []*model.StudentRecord, subjectA, subjectB model.SubjectID, slot model.SlotID) float64 {
	var xs, ys []float64
	for _, st := range cohort {
		a, okA := st.Value(slot, subjectA)
		b, okB := st.Value(slot, subjectB)
		if okA && okB {
			xs = append(xs, a)
			ys = append(ys, b)
		}
	}
	if len(xs) < minPairs {
		return 0
	}

	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
