package source

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type recorder struct {
	kinds    []Kind
	metadata []map[string]any
}

func (r *recorder) Notify(kind Kind) {
	r.kinds = append(r.kinds, kind)
}

func (r *recorder) Metadata(values map[string]any) {
	r.metadata = append(r.metadata, values)
}

func TestBase(t *testing.T) {
	Convey("Given a base source", t, func() {
		rec := &recorder{}
		b := NewBase(rec)

		Convey("It should report the defaults", func() {
			So(b.CurrentTime(), ShouldEqual, 0.0)
			So(math.IsInf(b.Duration(), 1), ShouldBeTrue)
			So(b.ReadyState(), ShouldEqual, HaveEnoughData)
			So(b.Seeking(), ShouldBeFalse)
			So(math.IsInf(b.Buffered().End(0), 1), ShouldBeTrue)
			So(b.Paused(), ShouldBeTrue)
		})

		Convey("Play and pause should report their own events", func() {
			b.Play()
			b.Play()
			b.Pause()
			b.Pause()
			So(rec.kinds, ShouldResemble, []Kind{Play, Playing, Playing, Pause})
		})

		Convey("Seeking should recall the position", func() {
			b.SetCurrentTime(4)
			b.SetCurrentTime(4)
			b.SetCurrentTime(math.NaN())
			So(b.CurrentTime(), ShouldEqual, 4.0)
			So(rec.kinds, ShouldResemble, []Kind{Seeking, Seeked})
		})

		Convey("A nil sink should be tolerated", func() {
			So(func() {
				nb := NewBase(nil)
				nb.Play()
				nb.SetCurrentTime(1)
			}, ShouldNotPanic)
		})
	})
}

func TestText(t *testing.T) {
	Convey("Given a text source", t, func() {
		a, err := Text(Options{Params: map[string]any{"text": "first\r\nsecond\n\nfourth"}}, nil)
		So(err, ShouldBeNil)
		text := a.(*TextSource)

		Convey("It should split lines and keep blank ones", func() {
			So(text.Lines(), ShouldResemble, []string{"first", "second", "", "fourth"})
		})

		Convey("SetText should replace the content", func() {
			text.SetText("")
			So(text.Lines(), ShouldBeEmpty)
			text.SetText("hello")
			So(text.String(), ShouldEqual, "hello")
		})
	})
}

func TestMedia(t *testing.T) {
	Convey("Given a media source", t, func() {
		rec := &recorder{}

		Convey("Nothing should be known before loading", func() {
			a, err := Media(Options{Params: map[string]any{"duration": "0:30"}}, rec)
			So(err, ShouldBeNil)
			So(a.ReadyState(), ShouldEqual, HaveNothing)
			So(math.IsInf(a.Duration(), 1), ShouldBeTrue)
			So(a.Buffered().Len(), ShouldEqual, 0)
		})

		Convey("The first load should resolve metadata and buffer everything", func() {
			a, _ := Media(Options{Params: map[string]any{"duration": "0:30"}}, rec)
			a.Load(0, 10)
			a.Load(10, 20)

			So(a.Duration(), ShouldEqual, 30.0)
			So(a.ReadyState(), ShouldEqual, HaveEnoughData)
			So(rec.metadata, ShouldResemble, []map[string]any{{"duration": 30.0}})
			So(rec.kinds, ShouldResemble, []Kind{Progress, Progress})
			So(a.Buffered().End(0), ShouldEqual, 30.0)
		})

		Convey("Chunked buffering should only cover what was loaded", func() {
			a, _ := Media(Options{Params: map[string]any{"duration": 30, "buffer": 5}}, rec)
			a.Load(10, 20)
			So(a.Buffered().Start(0), ShouldEqual, 10.0)
			So(a.Buffered().End(0), ShouldEqual, 15.0)
			So(a.ReadyState(), ShouldEqual, HaveMetadata)

			a.SetCurrentTime(12)
			So(a.ReadyState(), ShouldEqual, HaveEnoughData)
		})

		Convey("A failing source should report an error once", func() {
			a, _ := Media(Options{Params: map[string]any{"duration": 30, "fail": true}}, rec)
			a.Load(0, 10)
			a.Load(0, 10)
			So(rec.kinds, ShouldResemble, []Kind{Error})
			So(a.ReadyState(), ShouldEqual, HaveMetadata)
		})
	})
}

func TestNull(t *testing.T) {
	Convey("The null source should behave like Base", t, func() {
		a, err := Null(Options{}, nil)
		So(err, ShouldBeNil)
		So(a.ReadyState(), ShouldEqual, HaveEnoughData)
		So(HaveFutureData.String(), ShouldEqual, "future")
		So(ReadyState(9).String(), ShouldEqual, "ReadyState(9)")
	})
}
