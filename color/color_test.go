package color

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	. "github.com/smartystreets/goconvey/convey"
)

func TestColors(t *testing.T) {
	Convey("Colors should map to their ANSI codes", t, func() {
		for c, code := range map[lipgloss.Color]string{
			Red:      "1",
			Green:    "2",
			Yellow:   "3",
			Blue:     "4",
			Purple:   "5",
			Cyan:     "6",
			HiBlue:   "12",
			HiPurple: "13",
		} {
			So(string(c), ShouldEqual, code)
		}
	})

	Convey("New should accept hex values", t, func() {
		So(New("#ffb703"), ShouldEqual, lipgloss.Color("#ffb703"))
	})
}
