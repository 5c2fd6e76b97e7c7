package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/gradefill/internal/adapters/repository"
	"github.com/okian/gradefill/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ranked(id string, score float64) *model.StudentRecord {
	st := model.NewStudentRecord(id, "Student "+id)
	st.SetValue("t1", "math", score)
	st.FinalScore = score
	return st
}

func TestMemStore(t *testing.T) {
	Convey("Given a store holding a ranked cohort", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore(ctx)
		store.Replace(ctx, []*model.StudentRecord{ranked("a", 90), ranked("b", 80), ranked("c", 70)})

		Convey("When counting", func() {
			So(store.Count(ctx), ShouldEqual, 3)
		})

		Convey("When fetching a student by id", func() {
			st, err := store.Student(ctx, "b")

			Convey("Then a copy of the record comes back", func() {
				So(err, ShouldBeNil)
				So(st.ID, ShouldEqual, "b")
				So(st.FinalScore, ShouldEqual, 80)
			})

			Convey("And mutating the copy leaves the store untouched", func() {
				st.SetValue("t1", "math", 0)
				again, err := store.Student(ctx, "b")
				So(err, ShouldBeNil)
				v, _ := again.Value("t1", "math")
				So(v, ShouldEqual, 80)
			})
		})

		Convey("When fetching an unknown id", func() {
			_, err := store.Student(ctx, "zz")

			Convey("Then the not-found sentinel comes back", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When asking for the top entries", func() {
			top, err := store.TopN(ctx, 2)

			Convey("Then ranks follow the stored order", func() {
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 2)
				So(top[0].Rank, ShouldEqual, 1)
				So(top[0].StudentID, ShouldEqual, "a")
				So(top[1].StudentID, ShouldEqual, "b")
			})
		})

		Convey("When the limit exceeds the cohort size", func() {
			top, err := store.TopN(ctx, 10)

			Convey("Then the whole cohort comes back", func() {
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 3)
			})
		})

		Convey("When the limit is below one", func() {
			_, err := store.TopN(ctx, 0)

			Convey("Then the limit sentinel comes back", func() {
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})
		})

		Convey("When taking a snapshot", func() {
			snap := store.Snapshot(ctx)

			Convey("Then it preserves order", func() {
				So(len(snap), ShouldEqual, 3)
				So(snap[0].ID, ShouldEqual, "a")
			})

			Convey("And it is isolated from the store", func() {
				snap[0].FinalScore = 0
				snap[0].SetValue("t1", "math", 1)
				st, err := store.Student(ctx, "a")
				So(err, ShouldBeNil)
				So(st.FinalScore, ShouldEqual, 90)
			})
		})

		Convey("When the cohort is replaced wholesale", func() {
			store.Replace(ctx, []*model.StudentRecord{ranked("x", 100)})

			Convey("Then old records are gone", func() {
				So(store.Count(ctx), ShouldEqual, 1)
				_, err := store.Student(ctx, "a")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestMemStoreEmpty(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore(ctx)

		Convey("Then reads degrade instead of panicking", func() {
			So(store.Count(ctx), ShouldEqual, 0)
			So(store.Snapshot(ctx), ShouldBeEmpty)
			top, err := store.TopN(ctx, 5)
			So(err, ShouldBeNil)
			So(top, ShouldBeEmpty)
		})
	})
}
