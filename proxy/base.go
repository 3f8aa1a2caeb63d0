// Package proxy rewrites stream URLs through the header-forwarding CORS relay.
package proxy

import (
	"net/url"
	"strings"

	"github.com/spf13/viper"
	"github.com/streamscout-cli/streamscout/constant"
	"github.com/streamscout-cli/streamscout/key"
)

// SetBase overrides the proxy base URL at runtime.
// The raw value is kept as configured; normalization happens on every read so
// the operation can never fail.
func SetBase(raw string) {
	viper.Set(key.ProxyBaseURL, raw)
}

// Base returns the normalized proxy base URL.
func Base() string {
	return Normalize(viper.GetString(key.ProxyBaseURL), viper.GetString(key.ProxyOrigin))
}

// Normalize resolves a configured proxy base into an absolute URL.
// Absolute URLs pass through, protocol-relative values get https prepended,
// root-relative paths resolve against the caller's origin when known, and bare
// hostnames get a scheme inferred. The function is idempotent and never fails:
// a malformed configuration degrades to the hardcoded default instead of
// failing the request.
func Normalize(raw, origin string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return constant.DefaultProxyBase
	}

	switch {
	case strings.Contains(raw, "://"):
		if _, err := url.Parse(raw); err != nil {
			return constant.DefaultProxyBase
		}
		return strings.TrimSuffix(raw, "/")

	case strings.HasPrefix(raw, "//"):
		return Normalize("https:"+raw, origin)

	case strings.HasPrefix(raw, "/"):
		if origin == "" {
			return constant.DefaultProxyBase
		}
		base, err := url.Parse(origin)
		if err != nil || base.Scheme == "" || base.Host == "" {
			return constant.DefaultProxyBase
		}
		ref, err := url.Parse(raw)
		if err != nil {
			return constant.DefaultProxyBase
		}
		return strings.TrimSuffix(base.ResolveReference(ref).String(), "/")

	default:
		// Bare hostname: localhost-style hosts speak plain http, everything else https.
		scheme := "https://"
		if strings.HasPrefix(raw, "localhost") {
			scheme = "http://"
		}
		return Normalize(scheme+raw, origin)
	}
}
