package spacetime

import (
	"errors"
	"math"
	"testing"

	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/anisan-cli/spacetime/source"
)

func TestClipTimes(t *testing.T) {
	Convey("Given a clip on [2, 10)", t, func() {
		comp, _, _ := newTestComposition()
		lo.Must(comp.Add("", span("a", 2, 10)))
		c, _ := comp.ClipByID("a")

		changes := 0
		c.On(ClipTimeChange, func(*Clip) { changes++ })

		Convey("To should follow the clip length until set", func() {
			So(c.SetFrom(1), ShouldBeNil)
			So(c.To(), ShouldEqual, 9.0)
			So(c.SetTo(5), ShouldBeNil)
			So(c.To(), ShouldEqual, 5.0)
			So(c.SetTo(math.Inf(1)), ShouldBeNil)
			So(c.To(), ShouldEqual, 9.0)
			So(changes, ShouldEqual, 0)
		})

		Convey("Trim should narrow the clip and move From along", func() {
			So(c.Trim(4, 8), ShouldBeNil)
			So(c.Start(), ShouldEqual, 4.0)
			So(c.End(), ShouldEqual, 8.0)
			So(c.From(), ShouldEqual, 2.0)
			So(changes, ShouldEqual, 1)
			So(comp.Duration(), ShouldEqual, 8.0)
			shouldBeConsistent(comp)

			Convey("A later trim can only narrow further", func() {
				So(c.Trim(math.NaN(), 6), ShouldBeNil)
				So(c.Start(), ShouldEqual, 4.0)
				So(c.End(), ShouldEqual, 6.0)
			})
		})

		Convey("Trim should reject an empty window", func() {
			So(errors.Is(c.Trim(5, 5), ErrInvalidRange), ShouldBeTrue)
			So(changes, ShouldEqual, 0)
		})

		Convey("Trim to a disjoint window should collapse the clip", func() {
			So(c.Trim(20, 30), ShouldBeNil)
			So(c.Start(), ShouldEqual, 20.0)
			So(c.End()-c.Start(), ShouldAlmostEqual, MinClipLength, 1e-12)
		})

		Convey("SetEnd before Start should pull Start back", func() {
			So(c.SetEnd(1), ShouldBeNil)
			So(c.End(), ShouldEqual, 1.0)
			So(c.Start(), ShouldAlmostEqual, 1-MinClipLength, 1e-12)
			shouldBeConsistent(comp)
		})

		Convey("SetStart past End should push End out", func() {
			So(c.SetStart(12), ShouldBeNil)
			So(c.Start(), ShouldEqual, 12.0)
			So(c.End(), ShouldAlmostEqual, 12+MinClipLength, 1e-12)
			So(comp.Duration(), ShouldAlmostEqual, 12+MinClipLength, 1e-12)
			shouldBeConsistent(comp)
		})

		Convey("Moving the clip under the playhead should activate it", func() {
			So(c.Active(), ShouldBeFalse)
			So(c.SetStart(0), ShouldBeNil)
			So(c.Active(), ShouldBeTrue)
			shouldBeConsistent(comp)
		})

		Convey("NaN should be refused", func() {
			So(errors.Is(c.SetStart(math.NaN()), ErrInvalidTime), ShouldBeTrue)
			So(errors.Is(c.SetEnd(math.NaN()), ErrInvalidTime), ShouldBeTrue)
			So(errors.Is(c.SetFrom(math.NaN()), ErrInvalidTime), ShouldBeTrue)
			So(errors.Is(c.SetTo(math.NaN()), ErrInvalidTime), ShouldBeTrue)
		})
	})
}

func TestSplice(t *testing.T) {
	Convey("Given a clip on [0, 10)", t, func() {
		comp, _, _ := newTestComposition()
		lo.Must(comp.Add("text", ClipOptions{ID: "a", End: mo.Some(10.0), Params: map[string]any{"text": "x"}}))
		c, _ := comp.ClipByID("a")

		Convey("A range inside should split it on the same layer", func() {
			So(c.Splice(3, 7), ShouldBeNil)
			So(comp.Clips(), ShouldHaveLength, 2)

			layer := c.Layer()
			So(layer.Len(), ShouldEqual, 2)
			rest := layer.Clips()[1]
			So(c.Start(), ShouldEqual, 0.0)
			So(c.End(), ShouldEqual, 3.0)
			So(rest.Start(), ShouldEqual, 7.0)
			So(rest.End(), ShouldEqual, 10.0)
			So(rest.From(), ShouldEqual, 7.0)
			So(rest.Type(), ShouldEqual, "text")
			So(rest.Params()["text"], ShouldEqual, "x")
			So(rest.ID(), ShouldNotEqual, c.ID())
			So(comp.Duration(), ShouldEqual, 10.0)
			shouldBeConsistent(comp)
		})

		Convey("A range over the head should trim the start", func() {
			So(c.Splice(-5, 3), ShouldBeNil)
			So(c.Start(), ShouldEqual, 3.0)
			So(c.From(), ShouldEqual, 3.0)
			So(comp.Clips(), ShouldHaveLength, 1)
		})

		Convey("A range over the tail should trim the end", func() {
			So(c.Splice(7, 20), ShouldBeNil)
			So(c.End(), ShouldEqual, 7.0)
			So(comp.Duration(), ShouldEqual, 7.0)
		})

		Convey("A range covering the clip should remove it", func() {
			So(c.Splice(0, 10), ShouldBeNil)
			So(c.Removed(), ShouldBeTrue)
			So(comp.Clips(), ShouldBeEmpty)
			So(comp.Duration(), ShouldEqual, 0.0)
		})

		Convey("A remainder shorter than MinClipLength should be dropped", func() {
			So(c.Splice(0.001, 9.999), ShouldBeNil)
			So(c.Removed(), ShouldBeTrue)
		})

		Convey("Disjoint or empty ranges should change nothing", func() {
			So(c.Splice(20, 30), ShouldBeNil)
			So(c.Splice(5, 5), ShouldBeNil)
			So(c.Splice(8, 3), ShouldBeNil)
			So(c.Start(), ShouldEqual, 0.0)
			So(c.End(), ShouldEqual, 10.0)
			So(comp.Clips(), ShouldHaveLength, 1)
		})

		Convey("A NaN start should be refused", func() {
			So(errors.Is(c.Splice(math.NaN(), 1), ErrInvalidTime), ShouldBeTrue)
		})
	})
}

func TestClipState(t *testing.T) {
	Convey("Given an active clip", t, func() {
		comp, _, rec := newTestComposition()
		lo.Must(comp.Add("", span("a", 0, 10)))
		c, _ := comp.ClipByID("a")
		rec.reset()

		Convey("Disable and Enable should toggle activation", func() {
			c.Disable()
			So(c.Enabled(), ShouldBeFalse)
			So(c.Active(), ShouldBeFalse)

			So(comp.SetCurrentTime(2), ShouldBeNil)
			So(c.Active(), ShouldBeFalse)

			c.Enable()
			So(c.Active(), ShouldBeTrue)
			So(rec.entries(), ShouldResemble, []string{"deactivate:a", "activate:a"})
		})

		Convey("Seeking past To should park the source at To", func() {
			So(c.SetTo(3), ShouldBeNil)
			So(comp.SetCurrentTime(5), ShouldBeNil)
			So(c.Source().CurrentTime(), ShouldEqual, 3.0)
			So(c.IsCurrent(), ShouldBeTrue)
		})

		Convey("Metadata should merge and notify only on change", func() {
			loaded := 0
			c.On(ClipLoadedMetadata, func(*Clip) { loaded++ })

			c.LoadMetadata(map[string]any{"width": 640})
			c.LoadMetadata(map[string]any{"width": 640})
			So(loaded, ShouldEqual, 1)
			So(c.Metadata()["width"], ShouldEqual, 640)

			Convey("A shorter duration should pull the end in", func() {
				c.LoadMetadata(map[string]any{"duration": 4})
				So(loaded, ShouldEqual, 2)
				So(c.End(), ShouldEqual, 4.0)
				So(comp.Duration(), ShouldEqual, 4.0)
				shouldBeConsistent(comp)
			})
		})

		Convey("Source events should be forwarded", func() {
			var got []ClipEvent
			for _, ev := range []ClipEvent{ClipPlaying, ClipWaiting, ClipError} {
				c.On(ev, func(c *Clip) { got = append(got, ev) })
			}

			src := c.Source().(*source.Base)
			src.Notify(source.Playing)
			So(c.Playing(), ShouldBeTrue)

			src.Notify(source.Error)
			So(c.Playing(), ShouldBeFalse)
			So(c.ReadyState(), ShouldEqual, source.HaveMetadata)
			So(got, ShouldResemble, []ClipEvent{ClipPlaying, ClipError, ClipWaiting})
		})

		Convey("String should name the type, id and window", func() {
			So(c.String(), ShouldEqual, "[a (0s-10s)]")
		})
	})
}
