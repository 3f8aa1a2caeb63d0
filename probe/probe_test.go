package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/streamscout-cli/streamscout/network"
	"github.com/streamscout-cli/streamscout/stream"
)

// countingClient wraps a client and counts issued requests.
type countingClient struct {
	inner network.Client
	calls atomic.Int64
}

func (c *countingClient) Request(ctx context.Context, rawURL string, opts *network.Options) (*network.Response, error) {
	c.calls.Add(1)
	return c.inner.Request(ctx, rawURL, opts)
}

func newProber(client network.Client) *Prober {
	return New(client, client, nil)
}

func TestProbeHLS(t *testing.T) {
	Convey("HLS probing", t, func() {
		direct := network.NewDirect(0)

		Convey("Data URIs are valid without a network call", func() {
			counting := &countingClient{inner: direct}
			prober := newProber(counting)

			s := &stream.Stream{Type: stream.TypeHLS, PlaylistURL: "data:application/vnd.apple.mpegurl;base64,I0VYVE0zVQ=="}
			probed, ok := prober.Stream(context.Background(), "src", s)

			So(ok, ShouldBeTrue)
			So(probed, ShouldEqual, s)
			So(counting.calls.Load(), ShouldEqual, 0)
		})

		Convey("Reachable playlists pass", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("#EXTM3U"))
			}))
			defer server.Close()

			s := &stream.Stream{Type: stream.TypeHLS, PlaylistURL: server.URL}
			_, ok := newProber(direct).Stream(context.Background(), "src", s)
			So(ok, ShouldBeTrue)
		})

		Convey("403 responses fail", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}))
			defer server.Close()

			s := &stream.Stream{Type: stream.TypeHLS, PlaylistURL: server.URL}
			_, ok := newProber(direct).Stream(context.Background(), "src", s)
			So(ok, ShouldBeFalse)
		})

		Convey("The wrong-ip token fails even on 200", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("error_wrong_ip"))
			}))
			defer server.Close()

			s := &stream.Stream{Type: stream.TypeHLS, PlaylistURL: server.URL}
			_, ok := newProber(direct).Stream(context.Background(), "src", s)
			So(ok, ShouldBeFalse)
		})

		Convey("A JSON denial payload fails even on 200", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":403,"msg":"Access Denied"}`))
			}))
			defer server.Close()

			s := &stream.Stream{Type: stream.TypeHLS, PlaylistURL: server.URL}
			_, ok := newProber(direct).Stream(context.Background(), "src", s)
			So(ok, ShouldBeFalse)
		})

		Convey("Unreachable origins fail without erroring", func() {
			s := &stream.Stream{Type: stream.TypeHLS, PlaylistURL: "http://127.0.0.1:1/pl.m3u8"}
			So(func() {
				_, ok := newProber(direct).Stream(context.Background(), "src", s)
				So(ok, ShouldBeFalse)
			}, ShouldNotPanic)
		})
	})
}

func TestProbeFile(t *testing.T) {
	Convey("File probing", t, func() {
		direct := network.NewDirect(0)

		good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write([]byte{0x00, 0x00})
		}))
		defer good.Close()

		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer bad.Close()

		Convey("Failing variants are pruned, survivors kept", func() {
			s := &stream.Stream{
				Type: stream.TypeFile,
				Qualities: map[stream.Quality]stream.Variant{
					stream.Quality1080: {URL: good.URL + "/1080.mp4"},
					stream.Quality720:  {URL: bad.URL + "/720.mp4"},
				},
			}

			probed, ok := newProber(direct).Stream(context.Background(), "src", s)
			So(ok, ShouldBeTrue)
			So(probed.Qualities, ShouldContainKey, stream.Quality1080)
			So(probed.Qualities, ShouldNotContainKey, stream.Quality720)

			Convey("The original stream keeps all variants", func() {
				So(s.Qualities, ShouldContainKey, stream.Quality720)
			})
		})

		Convey("A stream with no surviving variants is invalid", func() {
			s := &stream.Stream{
				Type: stream.TypeFile,
				Qualities: map[stream.Quality]stream.Variant{
					stream.Quality720: {URL: bad.URL + "/720.mp4"},
				},
			}
			_, ok := newProber(direct).Stream(context.Background(), "src", s)
			So(ok, ShouldBeFalse)
		})

		Convey("Probes request only the first two bytes", func() {
			var gotRange string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotRange = r.Header.Get("Range")
				w.WriteHeader(http.StatusPartialContent)
			}))
			defer server.Close()

			s := &stream.Stream{
				Type:      stream.TypeFile,
				Qualities: map[stream.Quality]stream.Variant{stream.Quality1080: {URL: server.URL}},
			}
			_, ok := newProber(direct).Stream(context.Background(), "src", s)
			So(ok, ShouldBeTrue)
			So(gotRange, ShouldEqual, "bytes=0-1")
		})
	})
}

func TestProbeSkips(t *testing.T) {
	Convey("Probe exemptions", t, func() {
		direct := network.NewDirect(0)
		counting := &countingClient{inner: direct}

		Convey("SkipValidation streams are never probed", func() {
			prober := newProber(counting)
			s := &stream.Stream{Type: stream.TypeHLS, PlaylistURL: "http://127.0.0.1:1/x.m3u8", SkipValidation: true}
			probed, ok := prober.Stream(context.Background(), "src", s)
			So(ok, ShouldBeTrue)
			So(probed, ShouldEqual, s)
			So(counting.calls.Load(), ShouldEqual, 0)
		})

		Convey("Providers on the unreliable-probe list are never probed", func() {
			prober := New(counting, counting, []string{"noisy"})
			s := &stream.Stream{Type: stream.TypeHLS, PlaylistURL: "http://127.0.0.1:1/x.m3u8"}
			_, ok := prober.Stream(context.Background(), "noisy", s)
			So(ok, ShouldBeTrue)
			So(counting.calls.Load(), ShouldEqual, 0)
		})
	})
}

func TestAlreadyProxied(t *testing.T) {
	Convey("alreadyProxied", t, func() {
		Convey("Known relays are detected by host", func() {
			So(alreadyProxied("https://m3u8.streamscout.stream/pl.m3u8"), ShouldBeTrue)
		})

		Convey("Plain origin URLs are not proxied", func() {
			So(alreadyProxied("https://cdn.example/pl.m3u8"), ShouldBeFalse)
		})

		Convey("A url query parameter alone is not enough", func() {
			So(alreadyProxied("https://cdn.example/pl.m3u8?url=aHR0cA=="), ShouldBeFalse)
		})
	})
}
