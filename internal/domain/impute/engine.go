// Package impute fills missing score cells. Each missing cell is classified
// by gap type, interior short gaps are interpolated from their temporal
// neighbors, and everything else is estimated from the cohort's
// cross-section at that time slot using the configured algorithm.
//
// The engine has no fatal paths: every degenerate input (empty
// cross-section, no reference subject, no qualifying neighbor) degrades to a
// defined fallback value, and no cell is left absent after Run.
package impute

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/gradefill/internal/domain/gap"
	"github.com/okian/gradefill/internal/domain/model"
	"github.com/okian/gradefill/internal/domain/sampler"
	"github.com/okian/gradefill/pkg/metrics"
)

// Algorithm selects the cross-sectional estimator.
type Algorithm string

// Supported estimators.
const (
	AlgorithmNormal          Algorithm = "normal"
	AlgorithmRegression      Algorithm = "regression"
	AlgorithmNearestNeighbor Algorithm = "nearest-neighbor"
)

// Method tags recorded in imputation details.
const (
	MethodInterpolation   = "temporal-interpolation"
	MethodNormalSample    = "normal-sample"
	MethodMeanFill        = "mean-fill"
	MethodNearestNeighbor = "nearest-neighbor"

	// regressionMethodPrefix is completed with the reference subject id.
	regressionMethodPrefix = "regression-via-"
)

// defaultJitterAmplitude is the uniform perturbation applied to
// interpolated midpoints.
const defaultJitterAmplitude = 2.5

// ParseAlgorithm validates a client-supplied algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AlgorithmNormal, AlgorithmRegression, AlgorithmNearestNeighbor:
		return Algorithm(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Sampler abstracts the random draws so tests can inject deterministic
// values. *sampler.Normal is the production implementation.
type Sampler interface {
	Sample(mean, std float64) float64
	Jitter(amplitude float64) float64
}

// Engine resolves missing cells in place over a cohort.
type Engine struct {
	sampler Sampler
	jitter  float64
}

// New creates an engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{
		jitter: defaultJitterAmplitude,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sampler == nil {
		e.sampler = sampler.New()
	}
	return e
}

// Run fills every missing cell of every student and returns the ordered,
// human-readable imputation log. Iteration is fixed: time slots outer in
// declared (ascending) order, subjects next in declared order, students
// innermost in cohort order. Gap classification uses a presence snapshot
// taken before the pass; neighbor values and cross-sections read the working
// copy, so earlier fills feed later ones left to right. The context is
// accepted per the project-wide convention; a pass is not cancellable once
// started.
func (e *Engine) Run(_ context.Context, cohort []*model.StudentRecord, slots []model.TimeSlot, subjects []model.Subject, algo Algorithm) []string {
	snapshots := make([]map[model.CellKey]bool, len(cohort))
	for i, st := range cohort {
		snapshots[i] = st.PresenceSnapshot()
	}

	var log []string
	for ti, slot := range slots {
		for si := range subjects {
			subj := subjects[si]
			for ci, st := range cohort {
				gt := gap.ClassifySnapshot(snapshots[ci], ti, subj.ID, slots)
				if gt == model.GapNone {
					continue
				}
				metrics.RecordGapClassified(string(gt))

				value, method, finalGap := e.resolve(cohort, st, ti, subj, subjects, slots, gt, algo)
				value = clamp(math.Round(value), 0, subj.FullMarks)

				st.SetValue(slot.ID, subj.ID, value)
				st.RecordDetail(slot.ID, subj.ID, model.Detail{
					Value:  value,
					Gap:    finalGap,
					Method: method,
				})
				metrics.RecordImputation(method)
				log = append(log, fmt.Sprintf("%s: %s at %s filled via %s = %g",
					st.Name, subj.Name, slot.Label, method, value))
			}
		}
	}
	return log
}

// resolve picks the estimation path for one missing cell and returns the raw
// (unclamped) value, the method tag, and the effective gap type.
func (e *Engine) resolve(
	cohort []*model.StudentRecord,
	st *model.StudentRecord,
	slotIndex int,
	subj model.Subject,
	subjects []model.Subject,
	slots []model.TimeSlot,
	gt model.GapType,
	algo Algorithm,
) (float64, string, model.GapType) {
	if gt == model.GapDiscrete {
		// Interior gap: midpoint of the immediate temporal neighbors, read
		// from the working copy so earlier fills in this pass count.
		prev, okPrev := st.Value(slots[slotIndex-1].ID, subj.ID)
		next, okNext := st.Value(slots[slotIndex+1].ID, subj.ID)
		if okPrev && okNext {
			return (prev+next)/2 + e.sampler.Jitter(e.jitter), MethodInterpolation, model.GapDiscrete
		}
		// A missing endpoint makes interpolation impossible regardless of
		// run length.
		gt = model.GapContinuous
	}

	slotID := slots[slotIndex].ID
	mean, std := crossSection(cohort, slotID, subj.ID)

	switch algo {
	case AlgorithmNormal:
		return e.sampler.Sample(mean, std), MethodNormalSample, gt

	case AlgorithmRegression:
		refID, refValue, found := referenceSubject(st, subjects, subj.ID, slotID)
		if !found {
			return mean, MethodMeanFill, gt
		}
		refMean, _ := crossSection(cohort, slotID, refID)
		if refMean == 0 {
			refMean = 1
		}
		return refValue * (mean / refMean), regressionMethodPrefix + string(refID), gt

	case AlgorithmNearestNeighbor:
		if v, ok := nearestNeighbor(cohort, st, subjects, subj.ID, slotID); ok {
			return v, MethodNearestNeighbor, gt
		}
		return mean, MethodMeanFill, gt
	}

	// Unknown algorithm degrades like the other exhausted paths.
	return mean, MethodMeanFill, gt
}

// crossSection returns the mean and population standard deviation of all
// present values for (slot, subject) across the cohort. An empty
// cross-section yields (0, 0).
func crossSection(cohort []*model.StudentRecord, slot model.SlotID, subject model.SubjectID) (mean, std float64) {
	var sum float64
	var values []float64
	for _, st := range cohort {
		if v, ok := st.Value(slot, subject); ok {
			values = append(values, v)
			sum += v
		}
	}
	if len(values) == 0 {
		return 0, 0
	}
	n := float64(len(values))
	mean = sum / n
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / n)
}

// referenceSubject returns the first other subject, in declared order, that
// has a present value for this student at the slot.
func referenceSubject(st *model.StudentRecord, subjects []model.Subject, target model.SubjectID, slot model.SlotID) (model.SubjectID, float64, bool) {
	for i := range subjects {
		id := subjects[i].ID
		if id == target {
			continue
		}
		if v, ok := st.Value(slot, id); ok {
			return id, v, true
		}
	}
	return "", 0, false
}

// nearestNeighbor finds, among other students with a present target cell,
// the one at minimum Euclidean distance over the other subjects present in
// both records at this slot. Ties keep the first encountered in cohort
// order. Returns false when no student has the cell or no candidate shares a
// dimension.
func nearestNeighbor(cohort []*model.StudentRecord, st *model.StudentRecord, subjects []model.Subject, target model.SubjectID, slot model.SlotID) (float64, bool) {
	best := math.Inf(1)
	var bestValue float64
	found := false

	for _, other := range cohort {
		if other == st {
			continue
		}
		candidate, ok := other.Value(slot, target)
		if !ok {
			continue
		}
		var sq float64
		dims := 0
		for i := range subjects {
			id := subjects[i].ID
			if id == target {
				continue
			}
			a, okA := st.Value(slot, id)
			b, okB := other.Value(slot, id)
			if okA && okB {
				d := a - b
				sq += d * d
				dims++
			}
		}
		if dims == 0 {
			continue
		}
		dist := math.Sqrt(sq)
		if dist < best {
			best = dist
			bestValue = candidate
			found = true
		}
	}
	return bestValue, found
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
