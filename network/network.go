// Package network provides the HTTP client abstraction consumed by providers and the resolution engine.
//
// Three implementations exist: Direct (stock client with a tuned transport),
// Fingerprint (Chrome TLS fingerprint via uTLS for origins that reject stock Go
// clients), and Proxied (routes every request through the rewriting proxy).
// All of them enforce a per-request timeout so a hung origin cannot stall a
// resolution indefinitely.
package network

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/streamscout-cli/streamscout/key"
)

// DefaultTimeout is the per-request ceiling applied when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Options carries the optional parameters of a single request.
type Options struct {
	// Method defaults to GET.
	Method string

	// Headers are sent verbatim; a default User-Agent is applied when absent.
	Headers map[string]string

	// Query is appended to the URL's query string.
	Query url.Values

	// Body is the request payload, if any.
	Body io.Reader

	// BaseURL is prepended to relative request URLs.
	BaseURL string
}

// Response is the normalized result of a request.
type Response struct {
	Body       []byte
	FinalURL   string
	Headers    http.Header
	StatusCode int
}

// Client is the minimal request surface the engine depends on.
type Client interface {
	Request(ctx context.Context, rawURL string, opts *Options) (*Response, error)
}

// Text is the body-only convenience variant of Client.Request.
func Text(ctx context.Context, c Client, rawURL string, opts *Options) (string, error) {
	resp, err := c.Request(ctx, rawURL, opts)
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

// Timeout resolves the configured per-request ceiling.
func Timeout() time.Duration {
	if secs := viper.GetInt(key.RequestsTimeout); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return DefaultTimeout
}

// buildURL composes the final request URL from an optional base, the raw URL, and extra query values.
func buildURL(rawURL string, opts *Options) (string, error) {
	if opts != nil && opts.BaseURL != "" && !strings.Contains(rawURL, "://") {
		base, err := url.Parse(opts.BaseURL)
		if err != nil {
			return "", err
		}
		ref, err := url.Parse(rawURL)
		if err != nil {
			return "", err
		}
		rawURL = base.ResolveReference(ref).String()
	}

	if opts == nil || len(opts.Query) == 0 {
		return rawURL, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range opts.Query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
