package network

import (
	"context"

	"github.com/streamscout-cli/streamscout/proxy"
)

// Proxied wraps another client and routes every request through the rewriting
// relay, so scraper traffic reaches origins that block the engine's own network.
type Proxied struct {
	Inner Client
}

// NewProxied constructs a Proxied client around the given inner client.
func NewProxied(inner Client) *Proxied {
	return &Proxied{Inner: inner}
}

// Request rewrites the target URL into a relay URL and performs the request
// with the inner client. The original headers travel inside the relay
// parameters; the outgoing request itself carries none of them.
func (p *Proxied) Request(ctx context.Context, rawURL string, opts *Options) (*Response, error) {
	final, err := buildURL(rawURL, opts)
	if err != nil {
		return nil, err
	}

	var headers map[string]string
	inner := &Options{}
	if opts != nil {
		headers = opts.Headers
		inner.Method = opts.Method
		inner.Body = opts.Body
	}

	return p.Inner.Request(ctx, proxy.Endpoint(final, headers), inner)
}
