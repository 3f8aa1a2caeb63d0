package stream

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/streamscout-cli/streamscout/flags"
)

func TestStructurallyValid(t *testing.T) {
	Convey("StructurallyValid", t, func() {
		Convey("HLS needs a playlist URL", func() {
			s := &Stream{ID: "a", Type: TypeHLS, PlaylistURL: "https://cdn.example/pl.m3u8"}
			So(s.StructurallyValid(), ShouldBeTrue)

			s.PlaylistURL = ""
			So(s.StructurallyValid(), ShouldBeFalse)
		})

		Convey("File needs at least one quality with a URL", func() {
			s := &Stream{ID: "b", Type: TypeFile, Qualities: map[Quality]Variant{
				Quality720: {Format: FormatMP4, URL: "https://cdn.example/720.mp4"},
			}}
			So(s.StructurallyValid(), ShouldBeTrue)

			s.Qualities = map[Quality]Variant{Quality720: {Format: FormatMP4}}
			So(s.StructurallyValid(), ShouldBeFalse)

			s.Qualities = nil
			So(s.StructurallyValid(), ShouldBeFalse)
		})

		Convey("Unknown types and nil streams are invalid", func() {
			So((&Stream{Type: "vhs"}).StructurallyValid(), ShouldBeFalse)
			So((*Stream)(nil).StructurallyValid(), ShouldBeFalse)
		})
	})
}

func TestClone(t *testing.T) {
	Convey("Clone", t, func() {
		s := &Stream{
			ID:      "c",
			Type:    TypeFile,
			Headers: map[string]string{"Referer": "https://site.example"},
			Flags:   flags.NewSet(flags.CORSAllowed),
			Qualities: map[Quality]Variant{
				Quality1080: {Format: FormatMP4, URL: "https://cdn.example/1080.mp4"},
			},
		}

		clone := s.Clone()
		clone.Headers["Referer"] = "changed"
		clone.Flags.Add(flags.IPLocked)
		delete(clone.Qualities, Quality1080)

		So(s.Headers["Referer"], ShouldEqual, "https://site.example")
		So(s.Flags.Has(flags.IPLocked), ShouldBeFalse)
		So(s.Qualities, ShouldContainKey, Quality1080)
	})
}

func TestBest(t *testing.T) {
	Convey("Best", t, func() {
		qualities := map[Quality]Variant{
			Quality480:  {URL: "a"},
			Quality1080: {URL: "b"},
		}
		So(Best(qualities), ShouldEqual, Quality1080)
		So(Best(nil), ShouldEqual, QualityUnknown)
	})
}
