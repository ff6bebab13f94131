package event

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestEmitter(t *testing.T) {
	Convey("Given an emitter", t, func() {
		var e Emitter[string, int]
		var got []int

		Convey("Listeners should run in registration order", func() {
			e.On("a", func(v int) { got = append(got, v) })
			e.On("a", func(v int) { got = append(got, v*10) })
			e.On("b", func(v int) { got = append(got, -v) })

			e.Emit("a", 1)
			So(got, ShouldResemble, []int{1, 10})
			So(e.Count("a"), ShouldEqual, 2)
		})

		Convey("Once listeners should fire at most once", func() {
			e.Once("a", func(v int) { got = append(got, v) })
			e.Emit("a", 1)
			e.Emit("a", 2)
			So(got, ShouldResemble, []int{1})
			So(e.Count("a"), ShouldEqual, 0)
		})

		Convey("A once listener that emits again should not recurse", func() {
			e.Once("a", func(v int) {
				got = append(got, v)
				e.Emit("a", v+1)
			})
			e.Emit("a", 1)
			So(got, ShouldResemble, []int{1})
		})

		Convey("Off should remove a listener", func() {
			h := e.On("a", func(v int) { got = append(got, v) })
			So(e.Off(h), ShouldBeTrue)
			So(e.Off(h), ShouldBeFalse)
			e.Emit("a", 1)
			So(got, ShouldBeEmpty)
		})

		Convey("Removing a later listener during emit should skip it", func() {
			var second Handle
			e.On("a", func(v int) {
				got = append(got, v)
				e.Off(second)
			})
			second = e.On("a", func(v int) { got = append(got, 100) })

			e.Emit("a", 1)
			So(got, ShouldResemble, []int{1})
		})

		Convey("Listeners added during emit should wait for the next emission", func() {
			e.On("a", func(v int) {
				got = append(got, v)
				if v == 1 {
					e.On("a", func(v int) { got = append(got, v*100) })
				}
			})

			e.Emit("a", 1)
			So(got, ShouldResemble, []int{1})

			e.Emit("a", 2)
			So(got, ShouldResemble, []int{1, 2, 200})
		})

		Convey("Clear should drop everything, even mid-emit", func() {
			e.On("a", func(int) { e.Clear() })
			e.On("a", func(v int) { got = append(got, v) })
			e.Emit("a", 1)
			So(got, ShouldBeEmpty)
			So(e.Count("a"), ShouldEqual, 0)
		})
	})
}
