package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetrics(t *testing.T) {
	Convey("Given metrics on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := New(reg)

		Convey("Counters should follow the recorded events", func() {
			m.Update(3)
			m.Update(0)
			m.Seeked()
			m.TimerArmed(250 * time.Millisecond)
			m.Activated()
			m.Activated()
			m.Deactivated()
			m.Spliced("split")
			m.SourceFailed("")

			So(testutil.ToFloat64(m.Updates), ShouldEqual, 2.0)
			So(testutil.ToFloat64(m.Seeks), ShouldEqual, 1.0)
			So(testutil.ToFloat64(m.TimersArmed), ShouldEqual, 1.0)
			So(testutil.ToFloat64(m.ActiveClips), ShouldEqual, 1.0)
			So(testutil.ToFloat64(m.Activations), ShouldEqual, 2.0)
			So(testutil.ToFloat64(m.Splices.WithLabelValues("split")), ShouldEqual, 1.0)
			So(testutil.ToFloat64(m.SourceErrors.WithLabelValues("null")), ShouldEqual, 1.0)
		})

		Convey("Gauges should be exported under the namespace", func() {
			m.SetClips(4)
			m.SetDuration(7)

			expected := `
# HELP spacetime_clips Number of clips in the composition
# TYPE spacetime_clips gauge
spacetime_clips 4
`
			err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "spacetime_clips")
			So(err, ShouldBeNil)
			So(testutil.ToFloat64(m.DurationValue), ShouldEqual, 7.0)
		})

		Convey("Totals should sum every label set", func() {
			m.Spliced("split")
			m.Spliced("removed")
			m.Update(2)
			m.SetClips(3)

			totals, err := Totals(reg)
			So(err, ShouldBeNil)
			So(totals["spacetime_clip_splices_total"], ShouldEqual, 2.0)
			So(totals["spacetime_update_crossings"], ShouldEqual, 1.0)
			So(totals["spacetime_clips"], ShouldEqual, 3.0)
		})

		Convey("Write should produce the text exposition format", func() {
			m.Seeked()

			var b strings.Builder
			So(Write(reg, &b), ShouldBeNil)
			So(b.String(), ShouldContainSubstring, "# TYPE spacetime_seeks_total counter")
			So(b.String(), ShouldContainSubstring, "spacetime_seeks_total 1")
		})

		Convey("Registering twice on one registry should panic", func() {
			So(func() { New(reg) }, ShouldPanic)
		})
	})

	Convey("A nil *Metrics should record nothing", t, func() {
		var m *Metrics
		So(func() {
			m.Update(1)
			m.TimerArmed(time.Second)
			m.Seeked()
			m.Stalled()
			m.Finished()
			m.RateChanged()
			m.SetDuration(1)
			m.SetClips(1)
			m.Activated()
			m.Deactivated()
			m.Spliced("removed")
			m.SourceFailed("media")
		}, ShouldNotPanic)
	})
}
