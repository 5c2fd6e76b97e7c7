package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording imputation metrics", func() {
			Convey("Then it should record imputed cells by method", func() {
				So(func() {
					RecordImputation("temporal-interpolation")
					RecordImputation("normal-sample")
					RecordImputation("mean-fill")
				}, ShouldNotPanic)
			})

			Convey("And it should record gap classifications", func() {
				So(func() {
					RecordGapClassified("discrete")
					RecordGapClassified("continuous")
				}, ShouldNotPanic)
			})

			Convey("And it should record run lifecycle counters", func() {
				So(func() {
					RecordImputationRun()
					RecordImputationRunBusy()
					RecordImputationRunDuration(120.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording scoring metrics", func() {
			Convey("Then it should record rescores and cohort size", func() {
				So(func() {
					RecordRescore()
					UpdateCohortSize(50)
					UpdateCohortSize(0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record requests and durations", func() {
				So(func() {
					RecordHTTPRequest("ranking", "GET", "200")
					RecordHTTPRequest("impute", "POST", "409")
					RecordHTTPRequestDuration("ranking", "GET", "200", 12.5)
				}, ShouldNotPanic)
			})

			Convey("And it should record errors by component", func() {
				So(func() {
					RecordErrorByComponent("http", "client_error")
					RecordErrorByComponent("app", "invalid_cohort")
				}, ShouldNotPanic)
			})
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		Convey("When gathering after recording", func() {
			RecordImputation("normal-sample")
			families, err := GetRegistry().Gather()

			Convey("Then the namespaced families are present", func() {
				So(err, ShouldBeNil)
				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["gradefill_core_imputations_total"], ShouldBeTrue)
				So(names["gradefill_core_cohort_size"], ShouldBeTrue)
			})
		})
	})
}
