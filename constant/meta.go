// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Streamscout is the canonical application identifier used for filesystem paths and CLI branding.
	Streamscout = "streamscout"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is the default HTTP User-Agent string used for network requests to external providers.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultProxyBase is the fallback stream-rewriting proxy endpoint.
	// A malformed proxy configuration always degrades to this URL instead of failing a request.
	DefaultProxyBase = "https://proxy.streamscout.stream/worker"
)

// Build metadata, injected at link time via -ldflags.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
