package history

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/streamscout-cli/streamscout/filesystem"
	"github.com/streamscout-cli/streamscout/provider"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given a media item", t, func() {
		media := &provider.Media{
			Type:        provider.Movie,
			Title:       "The Matrix",
			ReleaseYear: 1999,
			TMDBID:      "603",
		}

		Convey("When saving a resolution", func() {
			err := Save(media, "flixhq", "upcloud", "hls")

			Convey("Then the error should be nil", func() {
				So(err, ShouldBeNil)

				Convey("And the record should be retrievable", func() {
					records, err := Get()
					So(err, ShouldBeNil)
					So(len(records), ShouldBeGreaterThan, 0)
					So(records[media.Key()].SourceID, ShouldEqual, "flixhq")
					So(records[media.Key()].EmbedID, ShouldEqual, "upcloud")
				})

				Convey("And Lookup should find it", func() {
					record := Lookup(media)
					So(record.IsPresent(), ShouldBeTrue)
					So(record.MustGet().Title, ShouldEqual, "The Matrix")
				})

				Convey("And a later save replaces it", func() {
					So(Save(media, "vidsrc", "", "file"), ShouldBeNil)
					record := Lookup(media)
					So(record.MustGet().SourceID, ShouldEqual, "vidsrc")
					So(record.MustGet().EmbedID, ShouldBeEmpty)
				})

				Convey("And Remove deletes it", func() {
					So(Remove(media), ShouldBeNil)
					So(Lookup(media).IsAbsent(), ShouldBeTrue)
				})
			})
		})

		Convey("Lookup on unknown media is absent", func() {
			unknown := &provider.Media{Type: provider.Movie, TMDBID: "0"}
			So(Lookup(unknown).IsAbsent(), ShouldBeTrue)
		})
	})
}
