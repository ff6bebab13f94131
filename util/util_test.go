package util

import (
	"math"
	"regexp"
	"testing"

	"github.com/anisan-cli/spacetime/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "clip", "clips"), ShouldEqual, "1 clip")
		So(Quantify(0, "clip", "clips"), ShouldEqual, "0 clips")
		So(Quantify(2, "clip", "clips"), ShouldEqual, "2 clips")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestReGroups(t *testing.T) {
	Convey("ReGroups", t, func() {
		re := regexp.MustCompile(`^(?P<type>\w*)@(?P<start>[^-]+)-(?P<end>.+)$`)

		Convey("Should map named groups", func() {
			groups := ReGroups(re, "text@1-2.5")
			So(groups["type"], ShouldEqual, "text")
			So(groups["start"], ShouldEqual, "1")
			So(groups["end"], ShouldEqual, "2.5")
		})

		Convey("Should return an empty map without a match", func() {
			So(ReGroups(re, "nope"), ShouldBeEmpty)
		})
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
		So(Max[int](), ShouldEqual, 0)
	})
}

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(5, 0, 10), ShouldEqual, 5)
		So(Clamp(-1, 0, 10), ShouldEqual, 0)
		So(Clamp(11, 0, 10), ShouldEqual, 10)

		Convey("Should accept an infinite upper bound", func() {
			So(Clamp(1e12, 0, math.Inf(1)), ShouldEqual, 1e12)
		})

		Convey("Should prefer the lower bound when bounds cross", func() {
			So(Clamp(5, 3, 1), ShouldEqual, 3)
		})
	})
}

func TestDelete(t *testing.T) {
	Convey("Given an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()

		Convey("Delete should remove files and directories", func() {
			lo.Must0(fs.MkdirAll("/tmp/spacetime/logs", 0o755))
			lo.Must0(fs.WriteFile("/tmp/spacetime/logs/a.log", []byte("x"), 0o644))

			So(Delete("/tmp/spacetime/logs/a.log"), ShouldBeNil)
			So(lo.Must(fs.Exists("/tmp/spacetime/logs/a.log")), ShouldBeFalse)

			So(Delete("/tmp/spacetime"), ShouldBeNil)
			So(lo.Must(fs.Exists("/tmp/spacetime")), ShouldBeFalse)
		})

		Convey("Delete should fail for a missing path", func() {
			So(Delete("/missing"), ShouldNotBeNil)
		})
	})
}
