// Package probe performs live reachability checks against candidate streams.
//
// A probe is a cheap signal, not a download: HLS playlists get a plain GET,
// file variants get a two-byte range request. Network failure means "could not
// reach", never an error; the orchestrator simply moves on.
package probe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/streamscout-cli/streamscout/log"
	"github.com/streamscout-cli/streamscout/network"
	"github.com/streamscout-cli/streamscout/proxy"
	"github.com/streamscout-cli/streamscout/stream"
	"golang.org/x/sync/errgroup"
)

// wrongIPToken is the literal body some origins return for IP-locked content.
const wrongIPToken = "error_wrong_ip"

// alwaysProxiedHosts are relays whose URLs are proxied by construction;
// probing them through the proxied client would double-encode the request.
var alwaysProxiedHosts = []string{
	"m3u8.streamscout.stream",
}

// Prober checks candidate streams for reachability.
type Prober struct {
	// Client performs the normal probe requests.
	Client network.Client

	// Direct bypasses the proxy for URLs that already point at a relay.
	Direct network.Client

	// Skip holds provider ids exempt from probing; maintained alongside
	// provider registration for origins whose probes return noise.
	Skip map[string]struct{}
}

// New constructs a Prober. skipIDs lists providers with unreliable probes.
func New(client, direct network.Client, skipIDs []string) *Prober {
	skip := make(map[string]struct{}, len(skipIDs))
	for _, id := range skipIDs {
		skip[id] = struct{}{}
	}
	return &Prober{Client: client, Direct: direct, Skip: skip}
}

// Stream probes the given stream and returns the surviving form of it.
// For file streams the result carries only the variants that answered; an HLS
// stream survives or dies whole. ok is false when nothing remains reachable.
func (p *Prober) Stream(ctx context.Context, providerID string, s *stream.Stream) (*stream.Stream, bool) {
	if s.SkipValidation {
		return s, true
	}
	if _, skip := p.Skip[providerID]; skip {
		return s, true
	}

	switch s.Type {
	case stream.TypeHLS:
		// Inline playlists cannot 404; accept without a network call.
		if strings.HasPrefix(s.PlaylistURL, "data:") {
			return s, true
		}
		if p.check(ctx, s.PlaylistURL, s.Headers, false) {
			return s, true
		}
		return nil, false

	case stream.TypeFile:
		return p.probeFile(ctx, s)

	default:
		return nil, false
	}
}

// probeFile range-probes every quality variant concurrently and prunes the
// ones that fail. The variants are independent and the requests cheap, so
// this is the one place the engine fans out.
func (p *Prober) probeFile(ctx context.Context, s *stream.Stream) (*stream.Stream, bool) {
	type verdict struct {
		quality stream.Quality
		ok      bool
	}

	results := make([]verdict, 0, len(s.Qualities))
	resultCh := make(chan verdict, len(s.Qualities))

	g, gctx := errgroup.WithContext(ctx)
	for quality, variant := range s.Qualities {
		g.Go(func() error {
			headers := variant.Headers
			if headers == nil {
				headers = s.Headers
			}
			resultCh <- verdict{quality: quality, ok: p.check(gctx, variant.URL, headers, true)}
			return nil
		})
	}
	_ = g.Wait()
	close(resultCh)
	for v := range resultCh {
		results = append(results, v)
	}

	out := s.Clone()
	out.Qualities = make(map[stream.Quality]stream.Variant)
	for _, v := range results {
		if v.ok {
			out.Qualities[v.quality] = s.Qualities[v.quality]
		}
	}

	if len(out.Qualities) == 0 {
		return nil, false
	}
	return out, true
}

// check issues one probe request and interprets the reachability signal.
func (p *Prober) check(ctx context.Context, rawURL string, headers map[string]string, ranged bool) bool {
	if rawURL == "" {
		return false
	}

	opts := &network.Options{Headers: map[string]string{}}
	for k, v := range headers {
		opts.Headers[k] = v
	}
	if ranged {
		// First two bytes are plenty to prove the asset answers.
		opts.Headers["Range"] = "bytes=0-1"
	}

	client := p.Client
	if alreadyProxied(rawURL) {
		// A second proxy hop would double-encode the probe and corrupt the signal.
		client = p.Direct
	}

	resp, err := client.Request(ctx, rawURL, opts)
	if err != nil {
		log.Debugf("probe: %s unreachable: %v", rawURL, err)
		return false
	}

	if resp.StatusCode == http.StatusForbidden {
		return false
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return false
	}

	body := strings.TrimSpace(string(resp.Body))
	if body == wrongIPToken {
		return false
	}

	// Some origins answer 200 with a JSON denial payload.
	var denial struct {
		Status int    `json:"status"`
		Msg    string `json:"msg"`
	}
	if err := json.Unmarshal([]byte(body), &denial); err == nil {
		if denial.Status == http.StatusForbidden && denial.Msg == "Access Denied" {
			return false
		}
	}

	return true
}

// alreadyProxied decides whether the URL already points at a rewriting relay:
// either it carries the engine's own proxy query parameter against the
// configured base, or its host is a known always-proxied relay.
func alreadyProxied(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	for _, host := range alwaysProxiedHosts {
		if strings.EqualFold(u.Host, host) {
			return true
		}
	}

	encoded := u.Query().Get("url")
	if encoded == "" {
		return false
	}
	if base, err := url.Parse(proxy.Base()); err == nil && strings.EqualFold(u.Host, base.Host) {
		if _, err := base64.StdEncoding.DecodeString(encoded); err == nil {
			return true
		}
	}
	return false
}
