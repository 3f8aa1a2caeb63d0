package provider

import (
	"context"
	"errors"

	"github.com/streamscout-cli/streamscout/flags"
	"github.com/streamscout-cli/streamscout/network"
	"github.com/streamscout-cli/streamscout/stream"
)

// ErrNotFound is the distinguishable signal a scraper returns when the
// requested title or episode cannot be located. It is an expected outcome,
// not a failure; any other error counts as a provider failure.
var ErrNotFound = errors.New("media not found")

// Info describes a registered provider. Immutable once registered.
type Info struct {
	// ID is globally unique across sources and embeds.
	ID   string
	Name string

	// Rank orders providers; higher is preferred. Unique within a provider kind.
	Rank int

	// Flags are the provider's declared capabilities; individual streams carry
	// their own actual flags per response.
	Flags flags.Set

	Disabled bool

	// MediaTypes restricts which media kinds a source handles. Sources only.
	MediaTypes []MediaType

	// UnreliableProbe exempts the provider's streams from the reachability
	// probe. Some origins are themselves used as the probe mechanism and the
	// probe returns noise for them.
	UnreliableProbe bool
}

// HandlesMedia reports whether the provider accepts the given media kind.
func (i Info) HandlesMedia(t MediaType) bool {
	for _, mt := range i.MediaTypes {
		if mt == t {
			return true
		}
	}
	return false
}

// ScrapeContext exposes the engine's capabilities to a scraper invocation.
type ScrapeContext struct {
	// Client is the unauthenticated scraping HTTP client.
	Client network.Client

	// Proxied routes requests through the rewriting relay with the same surface.
	Proxied network.Client

	Features flags.Features
	Media    *Media

	// Progress reports scrape advancement in percent. Fire-and-forget: it never
	// affects control flow and a nil callback is always a valid substitute.
	Progress func(percent int)
}

// ReportProgress invokes the progress callback when one is set.
func (c *ScrapeContext) ReportProgress(percent int) {
	if c != nil && c.Progress != nil {
		c.Progress(percent)
	}
}

// EmbedScrapeContext extends ScrapeContext with the opaque reference a source emitted.
type EmbedScrapeContext struct {
	ScrapeContext

	// URL is the opaque embed reference produced by the originating source.
	URL string
}

// EmbedRef is a source's pointer to a downstream embed provider.
type EmbedRef struct {
	EmbedID string `json:"embedId"`
	URL     string `json:"url"`
}

// SourceOutput is what a source scrape returns: directly playable streams,
// references to embeds, or both. Zero streams and zero embeds is treated as
// not found by the orchestrator.
type SourceOutput struct {
	Streams []*stream.Stream
	Embeds  []EmbedRef
}

// EmbedOutput is what an embed scrape returns.
type EmbedOutput struct {
	Streams []*stream.Stream
}

// Source is a provider that locates media on a specific site and returns
// streams and/or embed references. Implementations live outside the engine;
// only this contract is fixed.
type Source interface {
	Info() Info
	ScrapeMovie(ctx context.Context, scrape *ScrapeContext) (*SourceOutput, error)
	ScrapeShow(ctx context.Context, scrape *ScrapeContext) (*SourceOutput, error)
}

// Embed is a provider that turns one opaque reference into exactly one stream.
type Embed interface {
	Info() Info
	Scrape(ctx context.Context, scrape *EmbedScrapeContext) (*EmbedOutput, error)
}
