// Fingerprint client with uTLS-based Chrome Client Hello emulation.
//
// Several streaming origins sit behind anti-bot layers (Cloudflare, DDoS-Guard)
// that reject the stock Go TLS fingerprint. This client mimics Chrome 120's
// handshake via refraction-networking/utls. Protocol negotiation is automatic:
// an HTTP/2 attempt first, with a transparent fallback to a forced HTTP/1.1
// transport when the handshake or request fails.
package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	utls "github.com/refraction-networking/utls"
	"github.com/spf13/viper"
	"github.com/streamscout-cli/streamscout/constant"
	"github.com/streamscout-cli/streamscout/internal/cache"
	"github.com/streamscout-cli/streamscout/key"
	"golang.org/x/net/http2"
)

// Fingerprint performs requests with a spoofed Chrome TLS fingerprint.
type Fingerprint struct {
	timeout time.Duration
}

// NewFingerprint constructs a Fingerprint client with the given per-request timeout.
func NewFingerprint(timeout time.Duration) *Fingerprint {
	if timeout <= 0 {
		timeout = Timeout()
	}
	return &Fingerprint{timeout: timeout}
}

// h2Transport is a shared HTTP/2 transport for servers that negotiate h2.
var (
	h2Transport     *http2.Transport
	h2TransportOnce sync.Once
)

func getH2Transport() *http2.Transport {
	h2TransportOnce.Do(func() {
		h2Transport = &http2.Transport{
			// Custom DialTLSContext provides utls connections.
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialTLS(ctx, network, addr)
			},
		}
	})
	return h2Transport
}

// h1Transport is a shared HTTP/1.1 transport for servers that negotiate http/1.1 only.
var h1Transport = &http.Transport{
	DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialTLSH1(ctx, network, addr)
	},
}

type cachedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// Request performs an HTTP request with Chrome TLS fingerprint spoofing.
// GET responses are served from the disk cache when response caching is enabled.
func (f *Fingerprint) Request(ctx context.Context, rawURL string, opts *Options) (*Response, error) {
	final, err := buildURL(rawURL, opts)
	if err != nil {
		return nil, err
	}

	method := http.MethodGet
	if opts != nil && opts.Method != "" {
		method = opts.Method
	}

	cacheable := method == http.MethodGet && viper.GetBool(key.NetworkCacheResponses)
	var cacheKey string
	if cacheable {
		cacheKey = cache.GenerateKey(final, method)
		var entry cachedResponse
		if cache.Read(cacheKey, &entry) {
			return &Response{
				Body:       []byte(entry.Body),
				FinalURL:   final,
				StatusCode: entry.Status,
			}, nil
		}
	}

	resp, err := f.do(ctx, method, final, opts)
	if err != nil {
		return nil, err
	}

	if cacheable && resp.StatusCode == http.StatusOK {
		_ = cache.Write(cacheKey, cachedResponse{Status: resp.StatusCode, Body: string(resp.Body)})
	}

	return resp, nil
}

// do routes the request through the H2 transport first and falls back to H1 on failure.
func (f *Fingerprint) do(ctx context.Context, method, finalURL string, opts *Options) (*Response, error) {
	build := func() (*http.Request, error) {
		var body io.Reader
		if opts != nil {
			body = opts.Body
		}
		req, err := http.NewRequestWithContext(ctx, method, finalURL, body)
		if err != nil {
			return nil, err
		}

		// Default headers to look like a real browser; custom headers override.
		req.Header.Set("User-Agent", constant.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")
		if opts != nil {
			for k, v := range opts.Headers {
				req.Header.Set(k, v)
			}
		}
		return req, nil
	}

	req, err := build()
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: f.timeout, Transport: getH2Transport()}
	resp, err := client.Do(req)
	if err != nil {
		req2, buildErr := build()
		if buildErr != nil {
			return nil, buildErr
		}
		h1Client := &http.Client{Timeout: f.timeout, Transport: h1Transport}
		resp, err = h1Client.Do(req2)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalResp := finalURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalResp = resp.Request.URL.String()
	}

	return &Response{
		Body:       data,
		FinalURL:   finalResp,
		Headers:    resp.Header,
		StatusCode: resp.StatusCode,
	}, nil
}

// dialTLS creates a TLS connection mimicking Chrome 120's fingerprint.
// Advertises both h2 and http/1.1 (natural Chrome behavior).
func dialTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: DefaultTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
	}, utls.HelloChrome_120)

	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}

// dialTLSH1 creates a TLS connection forcing HTTP/1.1 only (for fallback).
func dialTLSH1(ctx context.Context, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: DefaultTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
		NextProtos: []string{"http/1.1"},
	}, utls.HelloChrome_120)

	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
