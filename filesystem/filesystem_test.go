package filesystem

import (
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})

		Convey("WriteFile should create missing directories", func() {
			SetMemMapFs()
			So(WriteFile("/a/b/c.txt", []byte("hi")), ShouldBeNil)
			So(lo.Must(API().IsDir("/a/b")), ShouldBeTrue)
			So(string(lo.Must(API().ReadFile("/a/b/c.txt"))), ShouldEqual, "hi")
		})
	})
}
