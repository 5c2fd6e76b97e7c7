package impute_test

import (
	"context"
	"testing"

	"github.com/okian/gradefill/internal/domain/impute"
	"github.com/okian/gradefill/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	threeSlots = []model.TimeSlot{
		{ID: "t1", Label: "Term 1", Weight: 1},
		{ID: "t2", Label: "Term 2", Weight: 1},
		{ID: "t3", Label: "Final", Weight: 1.5},
	}
	subjects = []model.Subject{
		{ID: "math", Name: "Math", Weight: 1, FullMarks: 100, Category: model.CategoryMain},
		{ID: "physics", Name: "Physics", Weight: 1, FullMarks: 100, Category: model.CategoryMain},
		{ID: "english", Name: "English", Weight: 1, FullMarks: 100, Category: model.CategoryMain},
	}
)

// stubSampler pins both draws so estimator output is exact.
type stubSampler struct {
	sample func(mean, std float64) float64
	jitter float64
}

func (s *stubSampler) Sample(mean, std float64) float64 {
	if s.sample != nil {
		return s.sample(mean, std)
	}
	return mean
}

func (s *stubSampler) Jitter(float64) float64 { return s.jitter }

func meanEngine() *impute.Engine {
	return impute.New(impute.WithSampler(&stubSampler{}))
}

func detail(st *model.StudentRecord, slot model.SlotID, subj model.SubjectID) model.Detail {
	return st.Details[model.CellKey{Slot: slot, Subject: subj}]
}

func TestRunInterpolation(t *testing.T) {
	Convey("Given a student missing one interior cell", t, func() {
		st := model.NewStudentRecord("s1", "Reza")
		st.SetValue("t1", "math", 80)
		st.SetValue("t3", "math", 90)
		cohort := []*model.StudentRecord{st}

		Convey("When the engine runs with zero jitter", func() {
			log := meanEngine().Run(context.Background(), cohort, threeSlots, subjects[:1], impute.AlgorithmNormal)

			Convey("Then the cell gets the neighbor midpoint", func() {
				v, ok := st.Value("t2", "math")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 85)
			})

			Convey("And the detail records a discrete interpolation", func() {
				d := detail(st, "t2", "math")
				So(d.Gap, ShouldEqual, model.GapDiscrete)
				So(d.Method, ShouldEqual, impute.MethodInterpolation)
				So(d.Value, ShouldEqual, 85)
			})

			Convey("And the log names student, subject, slot and method", func() {
				So(log, ShouldHaveLength, 1)
				So(log[0], ShouldEqual, "Reza: Math at Term 2 filled via temporal-interpolation = 85")
			})
		})

		Convey("When the jitter draw is nonzero", func() {
			e := impute.New(impute.WithSampler(&stubSampler{jitter: 2.4}))
			e.Run(context.Background(), cohort, threeSlots, subjects[:1], impute.AlgorithmNormal)

			Convey("Then the midpoint is perturbed and rounded", func() {
				v, _ := st.Value("t2", "math")
				So(v, ShouldEqual, 87)
			})
		})
	})
}

func TestRunCrossSection(t *testing.T) {
	Convey("Given a cohort with one student missing a boundary cell", t, func() {
		a := model.NewStudentRecord("a", "A")
		a.SetValue("t1", "math", 90)
		b := model.NewStudentRecord("b", "B")
		c := model.NewStudentRecord("c", "C")
		c.SetValue("t1", "math", 70)
		cohort := []*model.StudentRecord{a, b, c}
		oneSlot := threeSlots[:1]

		Convey("When the normal estimator draws the cross-section mean", func() {
			meanEngine().Run(context.Background(), cohort, oneSlot, subjects[:1], impute.AlgorithmNormal)

			Convey("Then the missing cell gets the mean of the present values", func() {
				v, ok := b.Value("t1", "math")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 80)
			})

			Convey("And the detail records a continuous normal sample", func() {
				d := detail(b, "t1", "math")
				So(d.Gap, ShouldEqual, model.GapContinuous)
				So(d.Method, ShouldEqual, impute.MethodNormalSample)
			})
		})

		Convey("When the cross-section is empty", func() {
			lone := model.NewStudentRecord("x", "X")
			meanEngine().Run(context.Background(), []*model.StudentRecord{lone}, oneSlot, subjects[:1], impute.AlgorithmNormal)

			Convey("Then the cell degrades to zero instead of failing", func() {
				v, ok := lone.Value("t1", "math")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 0)
			})
		})

		Convey("When a draw lands outside the score range", func() {
			high := impute.New(impute.WithSampler(&stubSampler{sample: func(_, _ float64) float64 { return 150 }}))
			high.Run(context.Background(), cohort, oneSlot, subjects[:1], impute.AlgorithmNormal)

			Convey("Then the value clamps to full marks", func() {
				v, _ := b.Value("t1", "math")
				So(v, ShouldEqual, 100)
			})
		})

		Convey("When a draw lands below zero", func() {
			low := impute.New(impute.WithSampler(&stubSampler{sample: func(_, _ float64) float64 { return -5 }}))
			low.Run(context.Background(), cohort, oneSlot, subjects[:1], impute.AlgorithmNormal)

			Convey("Then the value clamps to zero", func() {
				v, _ := b.Value("t1", "math")
				So(v, ShouldEqual, 0)
			})
		})
	})
}

func TestRunDegradation(t *testing.T) {
	Convey("Given a run of two interior gaps", t, func() {
		fourSlots := []model.TimeSlot{
			{ID: "t1", Label: "Term 1", Weight: 1},
			{ID: "t2", Label: "Term 2", Weight: 1},
			{ID: "t3", Label: "Term 3", Weight: 1},
			{ID: "t4", Label: "Final", Weight: 1.5},
		}
		st := model.NewStudentRecord("s1", "S")
		st.SetValue("t1", "math", 60)
		st.SetValue("t4", "math", 90)
		peer := model.NewStudentRecord("p", "P")
		for _, s := range fourSlots {
			peer.SetValue(s.ID, "math", 80)
		}
		cohort := []*model.StudentRecord{st, peer}

		Convey("When the engine fills left to right", func() {
			meanEngine().Run(context.Background(), cohort, fourSlots, subjects[:1], impute.AlgorithmNormal)

			Convey("Then the first gap degrades to continuous", func() {
				d := detail(st, "t2", "math")
				So(d.Gap, ShouldEqual, model.GapContinuous)
				So(d.Method, ShouldEqual, impute.MethodNormalSample)
				So(d.Value, ShouldEqual, 80)
			})

			Convey("And the second gap interpolates against the fresh fill", func() {
				d := detail(st, "t3", "math")
				So(d.Gap, ShouldEqual, model.GapDiscrete)
				So(d.Method, ShouldEqual, impute.MethodInterpolation)
				So(d.Value, ShouldEqual, 85)
			})
		})
	})
}

func TestRunRegression(t *testing.T) {
	Convey("Given cross-subject proportions at one slot", t, func() {
		a := model.NewStudentRecord("a", "A")
		a.SetValue("t1", "math", 80)
		a.SetValue("t1", "physics", 60)
		b := model.NewStudentRecord("b", "B")
		b.SetValue("t1", "math", 90)
		b.SetValue("t1", "physics", 60)
		st := model.NewStudentRecord("s", "S")
		st.SetValue("t1", "physics", 60)
		cohort := []*model.StudentRecord{a, b, st}
		oneSlot := threeSlots[:1]

		Convey("When math is estimated via the first present reference subject", func() {
			meanEngine().Run(context.Background(), cohort, oneSlot, subjects[:2], impute.AlgorithmRegression)

			Convey("Then the reference value scales by the mean ratio", func() {
				v, _ := st.Value("t1", "math")
				So(v, ShouldEqual, 85)
			})

			Convey("And the method names the reference subject", func() {
				So(detail(st, "t1", "math").Method, ShouldEqual, "regression-via-physics")
			})
		})

		Convey("When the student has no other subject at the slot", func() {
			lone := model.NewStudentRecord("x", "X")
			mixed := []*model.StudentRecord{a, b, lone}
			meanEngine().Run(context.Background(), mixed, oneSlot, subjects[:2], impute.AlgorithmRegression)

			Convey("Then both cells fall back to the cross-section mean", func() {
				mathV, _ := lone.Value("t1", "math")
				So(mathV, ShouldEqual, 85)
				So(detail(lone, "t1", "math").Method, ShouldEqual, impute.MethodMeanFill)
			})
		})
	})
}

func TestRunNearestNeighbor(t *testing.T) {
	Convey("Given candidates at varying distance", t, func() {
		oneSlot := threeSlots[:1]
		near := model.NewStudentRecord("near", "Near")
		near.SetValue("t1", "math", 88)
		near.SetValue("t1", "physics", 70)
		near.SetValue("t1", "english", 50)
		far := model.NewStudentRecord("far", "Far")
		far.SetValue("t1", "math", 95)
		far.SetValue("t1", "physics", 40)
		far.SetValue("t1", "english", 90)
		st := model.NewStudentRecord("s", "S")
		st.SetValue("t1", "physics", 70)
		st.SetValue("t1", "english", 50)

		Convey("When the target cell is estimated", func() {
			cohort := []*model.StudentRecord{far, near, st}
			meanEngine().Run(context.Background(), cohort, oneSlot, subjects, impute.AlgorithmNearestNeighbor)

			Convey("Then the closest candidate's value is used", func() {
				v, _ := st.Value("t1", "math")
				So(v, ShouldEqual, 88)
				So(detail(st, "t1", "math").Method, ShouldEqual, impute.MethodNearestNeighbor)
			})
		})

		Convey("When two candidates tie on distance", func() {
			twinA := model.NewStudentRecord("ta", "TA")
			twinA.SetValue("t1", "math", 60)
			twinA.SetValue("t1", "physics", 72)
			twinA.SetValue("t1", "english", 50)
			twinB := model.NewStudentRecord("tb", "TB")
			twinB.SetValue("t1", "math", 90)
			twinB.SetValue("t1", "physics", 68)
			twinB.SetValue("t1", "english", 50)
			cohort := []*model.StudentRecord{twinA, twinB, st}
			meanEngine().Run(context.Background(), cohort, oneSlot, subjects, impute.AlgorithmNearestNeighbor)

			Convey("Then the first candidate in cohort order wins", func() {
				v, _ := st.Value("t1", "math")
				So(v, ShouldEqual, 60)
			})
		})

		Convey("When no candidate shares a dimension", func() {
			mathOnly := model.NewStudentRecord("m", "M")
			mathOnly.SetValue("t1", "math", 77)
			blank := model.NewStudentRecord("b", "B")
			blank.SetValue("t1", "physics", 55)
			cohort := []*model.StudentRecord{mathOnly, blank}
			meanEngine().Run(context.Background(), cohort, oneSlot, subjects, impute.AlgorithmNearestNeighbor)

			Convey("Then the missing math cell falls back to the mean", func() {
				v, _ := blank.Value("t1", "math")
				So(v, ShouldEqual, 77)
				So(detail(blank, "t1", "math").Method, ShouldEqual, impute.MethodMeanFill)
			})
		})
	})
}

func TestRunCoverage(t *testing.T) {
	Convey("Given a sparse cohort", t, func() {
		st1 := model.NewStudentRecord("s1", "One")
		st1.SetValue("t1", "math", 40)
		st1.SetValue("t2", "physics", 55)
		st2 := model.NewStudentRecord("s2", "Two")
		st2.SetValue("t3", "english", 95)
		st3 := model.NewStudentRecord("s3", "Three")
		for _, s := range threeSlots {
			for _, subj := range subjects {
				st3.SetValue(s.ID, subj.ID, 75)
			}
		}
		cohort := []*model.StudentRecord{st1, st2, st3}
		missing := 0
		for _, st := range cohort {
			for _, s := range threeSlots {
				for _, subj := range subjects {
					if !st.Present(s.ID, subj.ID) {
						missing++
					}
				}
			}
		}

		Convey("When a full pass runs with the production sampler defaults", func() {
			log := impute.New().Run(context.Background(), cohort, threeSlots, subjects, impute.AlgorithmNormal)

			Convey("Then every declared cell is present and in range", func() {
				for _, st := range cohort {
					for _, s := range threeSlots {
						for _, subj := range subjects {
							v, ok := st.Value(s.ID, subj.ID)
							So(ok, ShouldBeTrue)
							So(v, ShouldBeGreaterThanOrEqualTo, 0)
							So(v, ShouldBeLessThanOrEqualTo, subj.FullMarks)
						}
					}
				}
			})

			Convey("And the log has one line per filled cell", func() {
				So(log, ShouldHaveLength, missing)
			})
		})
	})
}

func TestParseAlgorithm(t *testing.T) {
	Convey("Given client-supplied algorithm names", t, func() {
		Convey("When the name is supported", func() {
			for _, name := range []string{"normal", "regression", "nearest-neighbor"} {
				algo, err := impute.ParseAlgorithm(name)
				So(err, ShouldBeNil)
				So(string(algo), ShouldEqual, name)
			}
		})

		Convey("When the name is unknown", func() {
			_, err := impute.ParseAlgorithm("median")

			Convey("Then the sentinel error is wrapped", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "median")
			})
		})
	})
}
