package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given no file and no environment", t, func() {
		cfg, err := Load(context.Background())

		Convey("Then the defaults pass validation", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.Algorithm, ShouldEqual, "normal")
			So(cfg.JitterAmplitude, ShouldEqual, 2.5)
			So(cfg.MaxRankingLimit, ShouldEqual, 100)
			So(len(cfg.TimeSlots), ShouldEqual, 3)
			So(len(cfg.Subjects), ShouldEqual, 4)
		})

		Convey("And the final slot carries extra weight", func() {
			So(err, ShouldBeNil)
			So(cfg.TimeSlots[2].ID, ShouldEqual, "t3")
			So(cfg.TimeSlots[2].Weight, ShouldEqual, 1.5)
		})
	})
}

func TestEnvOverride(t *testing.T) {
	Convey("Given environment overrides", t, func() {
		t.Setenv("GRADEFILL_ADDR", ":7070")
		t.Setenv("GRADEFILL_ALGORITHM", "regression")
		t.Setenv("GRADEFILL_LOG_LEVEL", "debug")

		cfg, err := Load(context.Background())

		Convey("Then flat keys override the defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.Algorithm, ShouldEqual, "regression")
			So(cfg.LogLevel, ShouldEqual, "debug")
		})

		Convey("And untouched settings keep their defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.MaxRankingLimit, ShouldEqual, 100)
		})
	})
}

func TestFileOverride(t *testing.T) {
	Convey("Given a YAML configuration file", t, func() {
		path := filepath.Join(t.TempDir(), "config.yaml")
		body := "addr: \":6060\"\nseed: 42\ntime_slots:\n  - id: only\n    label: Only\n    weight: 1\n"
		So(os.WriteFile(path, []byte(body), 0o600), ShouldBeNil)
		t.Setenv("GRADEFILL_CONFIG", path)

		cfg, err := Load(context.Background())

		Convey("Then the file layers over the defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
			So(cfg.Seed, ShouldEqual, 42)
			So(len(cfg.TimeSlots), ShouldEqual, 1)
			So(cfg.TimeSlots[0].ID, ShouldEqual, "only")
		})

		Convey("And the environment still wins over the file", func() {
			t.Setenv("GRADEFILL_ADDR", ":5050")
			cfg, err := Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":5050")
		})
	})

	Convey("Given a missing configuration file", t, func() {
		t.Setenv("GRADEFILL_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

		_, err := Load(context.Background())

		Convey("Then the load fails", func() {
			So(errors.Is(err, ErrLoadConfig), ShouldBeTrue)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given a default configuration", t, func() {
		base := New(context.Background())

		Convey("When a subject has zero full marks", func() {
			base.Subjects[0].FullMarks = 0

			Convey("Then validation rejects it", func() {
				So(errors.Is(base.validate(), ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When two time slots share an id", func() {
			base.TimeSlots[1].ID = base.TimeSlots[0].ID

			Convey("Then validation rejects it", func() {
				So(errors.Is(base.validate(), ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When a subject weight is negative", func() {
			base.Subjects[0].Weight = -1

			Convey("Then validation rejects it", func() {
				So(errors.Is(base.validate(), ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the subject list is empty", func() {
			base.Subjects = nil

			Convey("Then validation rejects it", func() {
				So(errors.Is(base.validate(), ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the ranking limit is zero", func() {
			base.MaxRankingLimit = 0

			Convey("Then validation rejects it", func() {
				So(errors.Is(base.validate(), ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}

func TestModelConversion(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := New(context.Background())

		Convey("When converted to domain types", func() {
			slots := cfg.ModelTimeSlots()
			subjects := cfg.ModelSubjects()

			Convey("Then order and fields carry over", func() {
				So(len(slots), ShouldEqual, len(cfg.TimeSlots))
				So(string(slots[0].ID), ShouldEqual, cfg.TimeSlots[0].ID)
				So(len(subjects), ShouldEqual, len(cfg.Subjects))
				So(string(subjects[3].ID), ShouldEqual, "arts")
				So(string(subjects[3].Category), ShouldEqual, "sub")
				So(subjects[3].Weight, ShouldEqual, 0.5)
			})
		})
	})
}
