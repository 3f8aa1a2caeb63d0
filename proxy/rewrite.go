package proxy

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/streamscout-cli/streamscout/flags"
	"github.com/streamscout-cli/streamscout/stream"
)

// NeedsProxy reports whether a caller restricted to plain cross-origin fetches
// can play the stream directly. Streams lacking the CORS flag, or requiring
// custom headers, must flow through the relay.
func NeedsProxy(s *stream.Stream) bool {
	return !s.Flags.Has(flags.CORSAllowed) || len(s.Headers) > 0
}

// Endpoint composes the proxied URL for a single target URL and header map.
// The relay contract is ?url=<base64 url>&h=<base64 json headers>.
func Endpoint(rawURL string, headers map[string]string) string {
	q := url.Values{}
	q.Set("url", base64.StdEncoding.EncodeToString([]byte(rawURL)))

	if len(headers) > 0 {
		encoded, err := json.Marshal(headers)
		if err == nil {
			q.Set("h", base64.StdEncoding.EncodeToString(encoded))
		}
	}

	base := Base()
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}

// Rewrite routes every URL of the stream through the relay when the target's
// features demand cross-origin access. The rewritten stream's flags become
// exactly {CORSAllowed} and its header map is cleared: forwarding the original
// headers is now the relay's job.
func Rewrite(s *stream.Stream, features flags.Features) *stream.Stream {
	if !features.Requires.Has(flags.CORSAllowed) {
		return s
	}

	out := s.Clone()

	switch out.Type {
	case stream.TypeHLS:
		out.PlaylistURL = Endpoint(out.PlaylistURL, out.Headers)
	case stream.TypeFile:
		for q, variant := range out.Qualities {
			variant.URL = Endpoint(variant.URL, mergeHeaders(out.Headers, variant.Headers))
			variant.Headers = nil
			out.Qualities[q] = variant
		}
	}

	out.Flags = flags.NewSet(flags.CORSAllowed)
	out.Headers = nil
	out.ProxyDepth = s.ProxyDepth + 1

	return out
}

// mergeHeaders overlays variant headers on top of the stream-wide ones.
func mergeHeaders(base, extra map[string]string) map[string]string {
	if len(base) == 0 {
		return extra
	}
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
