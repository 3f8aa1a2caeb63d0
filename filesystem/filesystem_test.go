package filesystem

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBackends(t *testing.T) {
	Convey("Filesystem backends", t, func() {
		Convey("SetOsFs activates the native backend", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("SetMemMapFs activates the in-memory backend", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})
	})
}
