// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Resolution Target - these keys describe the caller's runtime capability class.
const (
	Target               = "target"
	RequestsConsistentIP = "requests.consistent_ip"
	RequestsTimeout      = "requests.timeout"
)

// Provider Ordering - these keys override the default rank-based provider iteration order.
const (
	SourcesOrder = "sources.order"
	EmbedsOrder  = "embeds.order"
)

// Stream Proxying - these keys govern the rewriting of streams through the CORS proxy.
const (
	ProxyBaseURL = "proxy.base_url"
	ProxyStreams = "proxy.streams"
	ProxyOrigin  = "proxy.origin"
)

// Network - these keys tune the scraping HTTP clients.
const (
	NetworkSpoofTLS       = "network.spoof_tls"
	NetworkCacheResponses = "network.cache_responses"
)

// Resolution History - these keys configure the persistence of winning-source records.
const (
	HistorySaveOnResolve = "history.save_on_resolve"
	HistorySeedOrdering  = "history.seed_ordering"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the command-line application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
