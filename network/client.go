package network

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/streamscout-cli/streamscout/constant"
)

// Direct is the stock HTTP client with a transport tuned for concurrent provider communication.
type Direct struct {
	client *http.Client
}

// NewDirect constructs a Direct client with the given per-request timeout.
// A non-positive timeout falls back to the configured default.
func NewDirect(timeout time.Duration) *Direct {
	if timeout <= 0 {
		timeout = Timeout()
	}
	return &Direct{
		client: &http.Client{
			Timeout:   timeout,
			Transport: newTransport(),
		},
	}
}

// newTransport initializes a tuned http.Transport with optimized pool and timeout parameters.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	return t
}

// Request performs an HTTP request and normalizes the response.
func (d *Direct) Request(ctx context.Context, rawURL string, opts *Options) (*Response, error) {
	final, err := buildURL(rawURL, opts)
	if err != nil {
		return nil, err
	}

	method := http.MethodGet
	var body io.Reader
	if opts != nil {
		if opts.Method != "" {
			method = opts.Method
		}
		body = opts.Body
	}

	req, err := http.NewRequestWithContext(ctx, method, final, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	if opts != nil {
		for k, v := range opts.Headers {
			req.Header.Set(k, v)
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	finalURL := final
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		Body:       data,
		FinalURL:   finalURL,
		Headers:    resp.Header,
		StatusCode: resp.StatusCode,
	}, nil
}
