package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildURL(t *testing.T) {
	Convey("buildURL", t, func() {
		Convey("Relative URLs resolve against the base", func() {
			final, err := buildURL("/search", &Options{BaseURL: "https://site.example/api/"})
			So(err, ShouldBeNil)
			So(final, ShouldEqual, "https://site.example/search")
		})

		Convey("Absolute URLs ignore the base", func() {
			final, err := buildURL("https://other.example/x", &Options{BaseURL: "https://site.example"})
			So(err, ShouldBeNil)
			So(final, ShouldEqual, "https://other.example/x")
		})

		Convey("Query values are appended", func() {
			final, err := buildURL("https://site.example/search", &Options{
				Query: url.Values{"q": []string{"dune"}},
			})
			So(err, ShouldBeNil)
			So(final, ShouldEqual, "https://site.example/search?q=dune")
		})
	})
}

func TestDirect(t *testing.T) {
	Convey("Direct client", t, func() {
		var gotHeader string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotHeader = r.Header.Get("X-Custom")
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		}))
		defer server.Close()

		client := NewDirect(0)
		resp, err := client.Request(context.Background(), server.URL, &Options{
			Headers: map[string]string{"X-Custom": "yes"},
		})

		So(err, ShouldBeNil)
		So(resp.StatusCode, ShouldEqual, http.StatusTeapot)
		So(string(resp.Body), ShouldEqual, "short and stout")
		So(gotHeader, ShouldEqual, "yes")

		Convey("Text returns the body only", func() {
			body, err := Text(context.Background(), client, server.URL, nil)
			So(err, ShouldBeNil)
			So(body, ShouldEqual, "short and stout")
		})
	})
}
