package provider

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/streamscout-cli/streamscout/flags"
)

type fakeSource struct {
	info Info
}

func (f *fakeSource) Info() Info { return f.info }
func (f *fakeSource) ScrapeMovie(context.Context, *ScrapeContext) (*SourceOutput, error) {
	return nil, ErrNotFound
}
func (f *fakeSource) ScrapeShow(context.Context, *ScrapeContext) (*SourceOutput, error) {
	return nil, ErrNotFound
}

type fakeEmbed struct {
	info Info
}

func (f *fakeEmbed) Info() Info { return f.info }
func (f *fakeEmbed) Scrape(context.Context, *EmbedScrapeContext) (*EmbedOutput, error) {
	return nil, ErrNotFound
}

func src(id string, rank int) Source {
	return &fakeSource{info: Info{ID: id, Name: id, Rank: rank, Flags: flags.NewSet(), MediaTypes: []MediaType{Movie, Show}}}
}

func emb(id string, rank int) Embed {
	return &fakeEmbed{info: Info{ID: id, Name: id, Rank: rank, Flags: flags.NewSet()}}
}

func TestNewRegistry(t *testing.T) {
	Convey("NewRegistry", t, func() {
		Convey("Sorts sources by descending rank", func() {
			r, err := NewRegistry([]Source{src("a", 10), src("b", 50), src("c", 30)}, nil)
			So(err, ShouldBeNil)

			sources := r.Sources()
			So(sources[0].Info().ID, ShouldEqual, "b")
			So(sources[1].Info().ID, ShouldEqual, "c")
			So(sources[2].Info().ID, ShouldEqual, "a")
		})

		Convey("Rejects duplicate ids across kinds", func() {
			_, err := NewRegistry([]Source{src("a", 10)}, []Embed{emb("a", 20)})
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects duplicate source ranks", func() {
			_, err := NewRegistry([]Source{src("a", 10), src("b", 10)}, nil)
			So(err, ShouldNotBeNil)
		})

		Convey("Rejects duplicate embed ranks", func() {
			_, err := NewRegistry(nil, []Embed{emb("x", 5), emb("y", 5)})
			So(err, ShouldNotBeNil)
		})

		Convey("Allows the same rank across different kinds", func() {
			_, err := NewRegistry([]Source{src("a", 10)}, []Embed{emb("b", 10)})
			So(err, ShouldBeNil)
		})

		Convey("Lookup by id", func() {
			r, err := NewRegistry([]Source{src("a", 10)}, []Embed{emb("b", 20)})
			So(err, ShouldBeNil)

			_, ok := r.SourceByID("a")
			So(ok, ShouldBeTrue)
			_, ok = r.EmbedByID("b")
			So(ok, ShouldBeTrue)
			_, ok = r.SourceByID("nope")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMediaKey(t *testing.T) {
	Convey("Media.Key", t, func() {
		movie := &Media{Type: Movie, TMDBID: "603"}
		So(movie.Key(), ShouldEqual, "movie:603")

		show := &Media{Type: Show, TMDBID: "1396", Season: SeasonRef{Number: 2}, Episode: EpisodeRef{Number: 5}}
		So(show.Key(), ShouldEqual, "show:1396:s2:e5")
	})
}

func TestHandlesMedia(t *testing.T) {
	Convey("Info.HandlesMedia", t, func() {
		movieOnly := Info{MediaTypes: []MediaType{Movie}}
		So(movieOnly.HandlesMedia(Movie), ShouldBeTrue)
		So(movieOnly.HandlesMedia(Show), ShouldBeFalse)
	})
}

func TestReportProgress(t *testing.T) {
	Convey("ScrapeContext.ReportProgress", t, func() {
		Convey("Nil callback is a valid substitute", func() {
			ctx := &ScrapeContext{}
			So(func() { ctx.ReportProgress(50) }, ShouldNotPanic)
		})

		Convey("Callback receives the percentage", func() {
			var got int
			ctx := &ScrapeContext{Progress: func(p int) { got = p }}
			ctx.ReportProgress(42)
			So(got, ShouldEqual, 42)
		})
	})
}
