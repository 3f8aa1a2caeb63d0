package resolve

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/streamscout-cli/streamscout/flags"
	"github.com/streamscout-cli/streamscout/network"
	"github.com/streamscout-cli/streamscout/probe"
	"github.com/streamscout-cli/streamscout/provider"
	"github.com/streamscout-cli/streamscout/stream"
)

// stubClient answers every request with a fixed status and counts calls.
type stubClient struct {
	status int
	calls  atomic.Int64
}

func (c *stubClient) Request(_ context.Context, _ string, _ *network.Options) (*network.Response, error) {
	c.calls.Add(1)
	return &network.Response{StatusCode: c.status}, nil
}

type fakeSource struct {
	info  provider.Info
	out   *provider.SourceOutput
	err   error
	calls *[]string
}

func (f *fakeSource) Info() provider.Info { return f.info }

func (f *fakeSource) ScrapeMovie(context.Context, *provider.ScrapeContext) (*provider.SourceOutput, error) {
	*f.calls = append(*f.calls, f.info.ID)
	return f.out, f.err
}

func (f *fakeSource) ScrapeShow(context.Context, *provider.ScrapeContext) (*provider.SourceOutput, error) {
	*f.calls = append(*f.calls, f.info.ID)
	return f.out, f.err
}

type fakeEmbed struct {
	info  provider.Info
	out   *provider.EmbedOutput
	err   error
	calls *[]string
}

func (f *fakeEmbed) Info() provider.Info { return f.info }

func (f *fakeEmbed) Scrape(context.Context, *provider.EmbedScrapeContext) (*provider.EmbedOutput, error) {
	*f.calls = append(*f.calls, f.info.ID)
	return f.out, f.err
}

func hlsStream(id string) *stream.Stream {
	return &stream.Stream{
		ID:          id,
		Type:        stream.TypeHLS,
		PlaylistURL: "https://cdn.example/" + id + ".m3u8",
		Flags:       flags.NewSet(flags.CORSAllowed),
	}
}

func anyFeatures() flags.Features {
	return flags.DeriveFeatures(flags.TargetAny, true, true)
}

func movie() *provider.Media {
	return &provider.Media{Type: provider.Movie, Title: "Heat", TMDBID: "949"}
}

func mustRegistry(sources []provider.Source, embeds []provider.Embed) *provider.Registry {
	r, err := provider.NewRegistry(sources, embeds)
	So(err, ShouldBeNil)
	return r
}

func TestSourceOrdering(t *testing.T) {
	Convey("Source attempt order", t, func() {
		var attempts []string
		notFound := func(id string, rank int) *fakeSource {
			return &fakeSource{
				info:  provider.Info{ID: id, Name: id, Rank: rank, MediaTypes: []provider.MediaType{provider.Movie}},
				err:   provider.ErrNotFound,
				calls: &attempts,
			}
		}

		registry := mustRegistry([]provider.Source{
			notFound("ten", 10), notFound("fifty", 50), notFound("thirty", 30),
		}, nil)

		opts := &Options{Registry: registry, Media: movie(), Features: anyFeatures()}

		Convey("Defaults to descending rank", func() {
			_, err := All(context.Background(), opts)
			So(err, ShouldEqual, provider.ErrNotFound)
			So(attempts, ShouldResemble, []string{"fifty", "thirty", "ten"})
		})

		Convey("An explicit override comes first, rest by rank", func() {
			opts.SourceOrder = []string{"ten"}
			_, err := All(context.Background(), opts)
			So(err, ShouldEqual, provider.ErrNotFound)
			So(attempts, ShouldResemble, []string{"ten", "fifty", "thirty"})
		})
	})
}

func TestShortCircuit(t *testing.T) {
	Convey("The first playable stream ends the resolution", t, func() {
		var attempts []string
		winner := &fakeSource{
			info:  provider.Info{ID: "winner", Rank: 200, MediaTypes: []provider.MediaType{provider.Movie}},
			out:   &provider.SourceOutput{Streams: []*stream.Stream{hlsStream("a")}},
			calls: &attempts,
		}
		never := &fakeSource{
			info:  provider.Info{ID: "never", Rank: 100, MediaTypes: []provider.MediaType{provider.Movie}},
			out:   &provider.SourceOutput{Streams: []*stream.Stream{hlsStream("b")}},
			calls: &attempts,
		}

		registry := mustRegistry([]provider.Source{never, winner}, nil)
		opts := &Options{Registry: registry, Media: movie(), Features: anyFeatures()}

		result, err := All(context.Background(), opts)
		So(err, ShouldBeNil)
		So(result.SourceID, ShouldEqual, "winner")
		So(result.Stream.ID, ShouldEqual, "a")
		So(attempts, ShouldResemble, []string{"winner"})
	})
}

func TestProviderErrorsAreAbsorbed(t *testing.T) {
	Convey("A failing source never aborts the loop", t, func() {
		var attempts []string
		var events []Event

		failing := &fakeSource{
			info:  provider.Info{ID: "failing", Rank: 30, MediaTypes: []provider.MediaType{provider.Movie}},
			err:   errors.New("origin returned garbage"),
			calls: &attempts,
		}
		empty := &fakeSource{
			info:  provider.Info{ID: "empty", Rank: 20, MediaTypes: []provider.MediaType{provider.Movie}},
			out:   &provider.SourceOutput{},
			calls: &attempts,
		}
		good := &fakeSource{
			info:  provider.Info{ID: "good", Rank: 10, MediaTypes: []provider.MediaType{provider.Movie}},
			out:   &provider.SourceOutput{Streams: []*stream.Stream{hlsStream("ok")}},
			calls: &attempts,
		}

		registry := mustRegistry([]provider.Source{failing, empty, good}, nil)
		opts := &Options{
			Registry:   registry,
			Media:      movie(),
			Features:   anyFeatures(),
			OnProgress: func(e Event) { events = append(events, e) },
		}

		result, err := All(context.Background(), opts)
		So(err, ShouldBeNil)
		So(result.SourceID, ShouldEqual, "good")
		So(attempts, ShouldResemble, []string{"failing", "empty", "good"})

		Convey("And the outcomes are reported per provider", func() {
			byID := map[string]Status{}
			for _, e := range events {
				byID[e.ProviderID] = e.Status
			}
			So(byID["failing"], ShouldEqual, StatusFailure)
			So(byID["empty"], ShouldEqual, StatusNotFound)
			So(byID["good"], ShouldEqual, StatusSuccess)
		})
	})

	Convey("A panicking source counts as a failure", t, func() {
		var attempts []string
		panicking := &panickingSource{}
		good := &fakeSource{
			info:  provider.Info{ID: "good", Rank: 10, MediaTypes: []provider.MediaType{provider.Movie}},
			out:   &provider.SourceOutput{Streams: []*stream.Stream{hlsStream("ok")}},
			calls: &attempts,
		}

		registry := mustRegistry([]provider.Source{panicking, good}, nil)
		opts := &Options{Registry: registry, Media: movie(), Features: anyFeatures()}

		result, err := All(context.Background(), opts)
		So(err, ShouldBeNil)
		So(result.SourceID, ShouldEqual, "good")
	})
}

type panickingSource struct{}

func (panickingSource) Info() provider.Info {
	return provider.Info{ID: "panics", Rank: 99, MediaTypes: []provider.MediaType{provider.Movie}}
}

func (panickingSource) ScrapeMovie(context.Context, *provider.ScrapeContext) (*provider.SourceOutput, error) {
	panic("nil dereference inside a scraper")
}

func (panickingSource) ScrapeShow(context.Context, *provider.ScrapeContext) (*provider.SourceOutput, error) {
	panic("nil dereference inside a scraper")
}

func TestFeatureGating(t *testing.T) {
	Convey("Feature gating", t, func() {
		Convey("Disallowed streams are dropped", func() {
			var attempts []string
			locked := hlsStream("locked")
			locked.Flags = flags.NewSet(flags.CORSAllowed, flags.IPLocked)

			src := &fakeSource{
				info:  provider.Info{ID: "src", Rank: 10, MediaTypes: []provider.MediaType{provider.Movie}},
				out:   &provider.SourceOutput{Streams: []*stream.Stream{locked}},
				calls: &attempts,
			}
			registry := mustRegistry([]provider.Source{src}, nil)

			// consistentIP=false disallows ip-locked streams.
			opts := &Options{
				Registry: registry,
				Media:    movie(),
				Features: flags.DeriveFeatures(flags.TargetAny, false, true),
			}

			_, err := All(context.Background(), opts)
			So(err, ShouldEqual, provider.ErrNotFound)
		})

		Convey("Incompatible providers are never invoked", func() {
			var attempts []string
			src := &fakeSource{
				info: provider.Info{
					ID: "cf", Rank: 10,
					MediaTypes: []provider.MediaType{provider.Movie},
					Flags:      flags.NewSet(flags.IPLocked),
				},
				out:   &provider.SourceOutput{Streams: []*stream.Stream{hlsStream("x")}},
				calls: &attempts,
			}
			registry := mustRegistry([]provider.Source{src}, nil)
			opts := &Options{
				Registry: registry,
				Media:    movie(),
				Features: flags.DeriveFeatures(flags.TargetAny, false, true),
			}

			_, err := All(context.Background(), opts)
			So(err, ShouldEqual, provider.ErrNotFound)
			So(attempts, ShouldBeEmpty)
		})

		Convey("Streams lacking CORS are rewritten, not dropped", func() {
			var attempts []string
			raw := hlsStream("raw")
			raw.Flags = flags.NewSet()
			raw.Headers = map[string]string{"Referer": "https://origin.example"}

			src := &fakeSource{
				info:  provider.Info{ID: "src", Rank: 10, MediaTypes: []provider.MediaType{provider.Movie}},
				out:   &provider.SourceOutput{Streams: []*stream.Stream{raw}},
				calls: &attempts,
			}
			registry := mustRegistry([]provider.Source{src}, nil)
			opts := &Options{
				Registry:     registry,
				Media:        movie(),
				Features:     flags.DeriveFeatures(flags.TargetBrowser, true, true),
				ProxyStreams: true,
			}

			result, err := All(context.Background(), opts)
			So(err, ShouldBeNil)
			So(result.Stream.Flags.Has(flags.CORSAllowed), ShouldBeTrue)
			So(result.Stream.Headers, ShouldBeEmpty)
			So(strings.Contains(result.Stream.PlaylistURL, "url="), ShouldBeTrue)

			Convey("And the source's own stream object is untouched", func() {
				So(raw.Flags.Has(flags.CORSAllowed), ShouldBeFalse)
				So(raw.Headers, ShouldNotBeEmpty)
			})
		})
	})
}

func TestDeferredEmbeds(t *testing.T) {
	Convey("Deferred embeds", t, func() {
		var attempts []string

		Convey("Are drained in order after all sources, tagged with their source", func() {
			srcA := &fakeSource{
				info: provider.Info{ID: "src-a", Rank: 20, MediaTypes: []provider.MediaType{provider.Movie}},
				out: &provider.SourceOutput{Embeds: []provider.EmbedRef{
					{EmbedID: "emb-dead", URL: "https://a.example/1"},
					{EmbedID: "emb-live", URL: "https://a.example/2"},
				}},
				calls: &attempts,
			}
			srcB := &fakeSource{
				info:  provider.Info{ID: "src-b", Rank: 10, MediaTypes: []provider.MediaType{provider.Movie}},
				err:   provider.ErrNotFound,
				calls: &attempts,
			}

			dead := &fakeEmbed{
				info:  provider.Info{ID: "emb-dead", Rank: 2},
				err:   provider.ErrNotFound,
				calls: &attempts,
			}
			live := &fakeEmbed{
				info:  provider.Info{ID: "emb-live", Rank: 1},
				out:   &provider.EmbedOutput{Streams: []*stream.Stream{hlsStream("embedded")}},
				calls: &attempts,
			}

			registry := mustRegistry([]provider.Source{srcA, srcB}, []provider.Embed{dead, live})
			opts := &Options{Registry: registry, Media: movie(), Features: anyFeatures()}

			result, err := All(context.Background(), opts)
			So(err, ShouldBeNil)
			So(result.SourceID, ShouldEqual, "src-a")
			So(result.EmbedID, ShouldEqual, "emb-live")
			So(attempts, ShouldResemble, []string{"src-a", "src-b", "emb-dead", "emb-live"})
		})

		Convey("Unregistered and disabled embeds are skipped", func() {
			src := &fakeSource{
				info: provider.Info{ID: "src", Rank: 10, MediaTypes: []provider.MediaType{provider.Movie}},
				out: &provider.SourceOutput{Embeds: []provider.EmbedRef{
					{EmbedID: "ghost", URL: "https://x.example/1"},
					{EmbedID: "off", URL: "https://x.example/2"},
				}},
				calls: &attempts,
			}
			off := &fakeEmbed{
				info:  provider.Info{ID: "off", Rank: 1, Disabled: true},
				calls: &attempts,
			}

			registry := mustRegistry([]provider.Source{src}, []provider.Embed{off})
			opts := &Options{Registry: registry, Media: movie(), Features: anyFeatures()}

			_, err := All(context.Background(), opts)
			So(err, ShouldEqual, provider.ErrNotFound)
			So(attempts, ShouldResemble, []string{"src"})
		})

		Convey("The embed override reorders within a source's batch", func() {
			src := &fakeSource{
				info: provider.Info{ID: "src", Rank: 10, MediaTypes: []provider.MediaType{provider.Movie}},
				out: &provider.SourceOutput{Embeds: []provider.EmbedRef{
					{EmbedID: "one", URL: "https://x.example/1"},
					{EmbedID: "two", URL: "https://x.example/2"},
				}},
				calls: &attempts,
			}
			one := &fakeEmbed{info: provider.Info{ID: "one", Rank: 2}, err: provider.ErrNotFound, calls: &attempts}
			two := &fakeEmbed{info: provider.Info{ID: "two", Rank: 1}, err: provider.ErrNotFound, calls: &attempts}

			registry := mustRegistry([]provider.Source{src}, []provider.Embed{one, two})
			opts := &Options{
				Registry:   registry,
				Media:      movie(),
				Features:   anyFeatures(),
				EmbedOrder: []string{"two"},
			}

			_, err := All(context.Background(), opts)
			So(err, ShouldEqual, provider.ErrNotFound)
			So(attempts, ShouldResemble, []string{"src", "two", "one"})
		})
	})
}

func TestProbeFallback(t *testing.T) {
	Convey("A stream that fails its probe falls through to the embeds", t, func() {
		var attempts []string
		denied := &stubClient{status: http.StatusForbidden}

		src := &fakeSource{
			info: provider.Info{ID: "src", Rank: 10, MediaTypes: []provider.MediaType{provider.Movie}},
			out: &provider.SourceOutput{
				Streams: []*stream.Stream{hlsStream("unreachable")},
				Embeds:  []provider.EmbedRef{{EmbedID: "emb", URL: "https://x.example/1"}},
			},
			calls: &attempts,
		}

		trusted := hlsStream("trusted")
		trusted.SkipValidation = true
		emb := &fakeEmbed{
			info:  provider.Info{ID: "emb", Rank: 1},
			out:   &provider.EmbedOutput{Streams: []*stream.Stream{trusted}},
			calls: &attempts,
		}

		registry := mustRegistry([]provider.Source{src}, []provider.Embed{emb})
		opts := &Options{
			Registry: registry,
			Media:    movie(),
			Features: anyFeatures(),
			Prober:   probe.New(denied, denied, nil),
		}

		result, err := All(context.Background(), opts)
		So(err, ShouldBeNil)
		So(result.SourceID, ShouldEqual, "src")
		So(result.EmbedID, ShouldEqual, "emb")
		So(result.Stream.ID, ShouldEqual, "trusted")
		So(attempts, ShouldResemble, []string{"src", "emb"})
	})
}

func TestNoProviders(t *testing.T) {
	Convey("Zero eligible providers resolves to not found with no network calls", t, func() {
		client := &stubClient{status: http.StatusOK}
		showOnly := &fakeSource{
			info:  provider.Info{ID: "shows", Rank: 10, MediaTypes: []provider.MediaType{provider.Show}},
			calls: &[]string{},
		}

		registry := mustRegistry([]provider.Source{showOnly}, nil)
		opts := &Options{
			Registry: registry,
			Media:    movie(),
			Features: anyFeatures(),
			Client:   client,
			Proxied:  client,
			Prober:   probe.New(client, client, nil),
		}

		result, err := All(context.Background(), opts)
		So(result, ShouldBeNil)
		So(err, ShouldEqual, provider.ErrNotFound)
		So(client.calls.Load(), ShouldEqual, 0)
	})
}

func TestSingleProviderRuns(t *testing.T) {
	Convey("Source", t, func() {
		var attempts []string

		Convey("Surfaces provider errors directly", func() {
			boom := errors.New("boom")
			src := &fakeSource{
				info:  provider.Info{ID: "src", Rank: 10, MediaTypes: []provider.MediaType{provider.Movie}},
				err:   boom,
				calls: &attempts,
			}
			registry := mustRegistry([]provider.Source{src}, nil)
			opts := &Options{Registry: registry, Media: movie(), Features: anyFeatures()}

			_, err := Source(context.Background(), opts, "src")
			So(err, ShouldEqual, boom)
		})

		Convey("Falls through to the source's own embeds", func() {
			src := &fakeSource{
				info:  provider.Info{ID: "src", Rank: 10, MediaTypes: []provider.MediaType{provider.Movie}},
				out:   &provider.SourceOutput{Embeds: []provider.EmbedRef{{EmbedID: "emb", URL: "u"}}},
				calls: &attempts,
			}
			emb := &fakeEmbed{
				info:  provider.Info{ID: "emb", Rank: 1},
				out:   &provider.EmbedOutput{Streams: []*stream.Stream{hlsStream("via-embed")}},
				calls: &attempts,
			}
			registry := mustRegistry([]provider.Source{src}, []provider.Embed{emb})
			opts := &Options{Registry: registry, Media: movie(), Features: anyFeatures()}

			result, err := Source(context.Background(), opts, "src")
			So(err, ShouldBeNil)
			So(result.EmbedID, ShouldEqual, "emb")
		})

		Convey("An unknown id is an error", func() {
			registry := mustRegistry(nil, nil)
			opts := &Options{Registry: registry, Media: movie(), Features: anyFeatures()}
			_, err := Source(context.Background(), opts, "nope")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Embed", t, func() {
		var attempts []string
		emb := &fakeEmbed{
			info:  provider.Info{ID: "emb", Rank: 1},
			out:   &provider.EmbedOutput{Streams: []*stream.Stream{hlsStream("direct")}},
			calls: &attempts,
		}
		registry := mustRegistry(nil, []provider.Embed{emb})
		opts := &Options{Registry: registry, Media: movie(), Features: anyFeatures()}

		Convey("Resolves one embed directly", func() {
			result, err := Embed(context.Background(), opts, "emb", "https://x.example/ref")
			So(err, ShouldBeNil)
			So(result.EmbedID, ShouldEqual, "emb")
			So(result.Stream.ID, ShouldEqual, "direct")
		})

		Convey("An unknown id is an error", func() {
			_, err := Embed(context.Background(), opts, "nope", "u")
			So(err, ShouldNotBeNil)
		})
	})
}
