// Package resolve orchestrates a resolution request across the ranked
// provider set.
//
// The flow is two sequenced phases with a single success predicate: walk the
// eligible sources in order, and if none yields a playable stream, drain the
// embeds they deferred. Sources run one at a time; fanning out would multiply
// load on the origins being scraped and invite bans. The first structurally
// valid, feature-compatible stream that answers a probe wins and ends the
// resolution.
package resolve

import (
	"context"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/streamscout-cli/streamscout/flags"
	"github.com/streamscout-cli/streamscout/network"
	"github.com/streamscout-cli/streamscout/probe"
	"github.com/streamscout-cli/streamscout/provider"
	"github.com/streamscout-cli/streamscout/proxy"
	"github.com/streamscout-cli/streamscout/stream"
	"github.com/streamscout-cli/streamscout/util"
)

// Options carries everything one resolution request needs. Each request owns
// its options; nothing here is shared across in-flight resolutions except the
// read-only registry.
type Options struct {
	Registry *provider.Registry
	Media    *provider.Media
	Features flags.Features

	// SourceOrder and EmbedOrder list provider ids to try first, in the given
	// order. Providers not listed follow in descending rank order.
	SourceOrder []string
	EmbedOrder  []string

	// ProxyStreams permits rewriting streams through the relay.
	ProxyStreams bool

	Client  network.Client
	Proxied network.Client
	Prober  *probe.Prober

	OnProgress func(Event)
}

// Result is a successful resolution. EmbedID is empty when the source itself
// produced the stream.
type Result struct {
	SourceID string         `json:"sourceId"`
	EmbedID  string         `json:"embedId,omitempty"`
	Stream   *stream.Stream `json:"stream"`
}

// deferredEmbed is one embed reference waiting in the fallback queue,
// tagged with the source that discovered it.
type deferredEmbed struct {
	sourceID string
	ref      provider.EmbedRef
}

// All runs the full resolution: every eligible source in order, then the
// deferred embed queue. Returns provider.ErrNotFound when everything is
// exhausted; individual provider failures never surface as errors here.
func All(ctx context.Context, opts *Options) (*Result, error) {
	deferred := &util.Queue[deferredEmbed]{}

	for _, src := range opts.eligibleSources() {
		info := src.Info()
		opts.emit(Event{ProviderID: info.ID, Status: StatusPending})

		output, err := opts.scrapeSource(ctx, src)
		switch {
		case err == nil && len(output.Streams) == 0 && len(output.Embeds) == 0:
			// An empty result means the same thing as a not-found signal.
			opts.emit(Event{ProviderID: info.ID, Percentage: 100, Status: StatusNotFound})
			continue
		case errorIsNotFound(err):
			opts.emit(Event{ProviderID: info.ID, Percentage: 100, Status: StatusNotFound})
			continue
		case err != nil:
			opts.emit(Event{ProviderID: info.ID, Percentage: 100, Status: StatusFailure, Err: err})
			continue
		}

		if s, ok := opts.firstPlayable(ctx, info.ID, output.Streams); ok {
			opts.emit(Event{ProviderID: info.ID, Percentage: 100, Status: StatusSuccess})
			return &Result{SourceID: info.ID, Stream: s}, nil
		}

		opts.deferEmbeds(deferred, info.ID, output.Embeds)
	}

	for deferred.Len() > 0 {
		item := deferred.Pop()
		result, err := opts.tryEmbed(ctx, item)
		if err != nil {
			continue
		}
		return result, nil
	}

	return nil, provider.ErrNotFound
}

// Source resolves through exactly one named source. Unlike All, provider
// errors surface to the caller directly.
func Source(ctx context.Context, opts *Options, sourceID string) (*Result, error) {
	src, ok := opts.Registry.SourceByID(sourceID)
	if !ok {
		return nil, fmt.Errorf("no source with id %q", sourceID)
	}

	info := src.Info()
	opts.emit(Event{ProviderID: info.ID, Status: StatusPending})

	output, err := opts.scrapeSource(ctx, src)
	if err != nil {
		opts.emit(Event{ProviderID: info.ID, Percentage: 100, Status: failureStatus(err), Err: err})
		return nil, err
	}
	if len(output.Streams) == 0 && len(output.Embeds) == 0 {
		opts.emit(Event{ProviderID: info.ID, Percentage: 100, Status: StatusNotFound})
		return nil, provider.ErrNotFound
	}

	if s, ok := opts.firstPlayable(ctx, info.ID, output.Streams); ok {
		opts.emit(Event{ProviderID: info.ID, Percentage: 100, Status: StatusSuccess})
		return &Result{SourceID: info.ID, Stream: s}, nil
	}

	deferred := &util.Queue[deferredEmbed]{}
	opts.deferEmbeds(deferred, info.ID, output.Embeds)
	for deferred.Len() > 0 {
		result, err := opts.tryEmbed(ctx, deferred.Pop())
		if err != nil {
			continue
		}
		return result, nil
	}

	opts.emit(Event{ProviderID: info.ID, Percentage: 100, Status: StatusNotFound})
	return nil, provider.ErrNotFound
}

// Embed resolves through exactly one named embed with the given opaque
// reference. Provider errors surface to the caller directly.
func Embed(ctx context.Context, opts *Options, embedID, url string) (*Result, error) {
	emb, ok := opts.Registry.EmbedByID(embedID)
	if !ok {
		return nil, fmt.Errorf("no embed with id %q", embedID)
	}

	info := emb.Info()
	opts.emit(Event{ProviderID: info.ID, Status: StatusPending})

	output, err := opts.scrapeEmbed(ctx, emb, url)
	if err != nil {
		opts.emit(Event{ProviderID: info.ID, Percentage: 100, Status: failureStatus(err), Err: err})
		return nil, err
	}

	if s, ok := opts.firstPlayable(ctx, info.ID, output.Streams); ok {
		opts.emit(Event{ProviderID: info.ID, Percentage: 100, Status: StatusSuccess})
		return &Result{EmbedID: info.ID, Stream: s}, nil
	}

	opts.emit(Event{ProviderID: info.ID, Percentage: 100, Status: StatusNotFound})
	return nil, provider.ErrNotFound
}

// eligibleSources filters the registry to sources that handle the requested
// media kind and pass the feature gate, then applies the explicit ordering:
// listed ids first in list order, the rest in descending rank order.
func (o *Options) eligibleSources() []provider.Source {
	eligible := lo.Filter(o.Registry.Sources(), func(s provider.Source, _ int) bool {
		info := s.Info()
		if info.Disabled || !info.HandlesMedia(o.Media.Type) {
			return false
		}
		return flags.Compatible(o.Features, info.Flags)
	})

	return reorder(eligible, o.SourceOrder, func(s provider.Source) string {
		return s.Info().ID
	})
}

// deferEmbeds appends a source's embed references to the fallback queue,
// keeping only enabled registered embeds and honoring the explicit embed
// ordering within this source's batch.
func (o *Options) deferEmbeds(queue *util.Queue[deferredEmbed], sourceID string, refs []provider.EmbedRef) {
	usable := lo.Filter(refs, func(ref provider.EmbedRef, _ int) bool {
		emb, ok := o.Registry.EmbedByID(ref.EmbedID)
		return ok && !emb.Info().Disabled
	})

	ordered := reorder(usable, o.EmbedOrder, func(ref provider.EmbedRef) string {
		return ref.EmbedID
	})

	for _, ref := range ordered {
		queue.Push(deferredEmbed{sourceID: sourceID, ref: ref})
	}
}

// tryEmbed runs one deferred embed and converts its outcome into progress
// events; any error means "keep draining".
func (o *Options) tryEmbed(ctx context.Context, item deferredEmbed) (*Result, error) {
	emb, ok := o.Registry.EmbedByID(item.ref.EmbedID)
	if !ok {
		return nil, provider.ErrNotFound
	}

	info := emb.Info()
	o.emit(Event{ProviderID: info.ID, Status: StatusPending})

	output, err := o.scrapeEmbed(ctx, emb, item.ref.URL)
	switch {
	case errorIsNotFound(err):
		o.emit(Event{ProviderID: info.ID, Percentage: 100, Status: StatusNotFound})
		return nil, err
	case err != nil:
		o.emit(Event{ProviderID: info.ID, Percentage: 100, Status: StatusFailure, Err: err})
		return nil, err
	}

	if s, ok := o.firstPlayable(ctx, info.ID, output.Streams); ok {
		o.emit(Event{ProviderID: info.ID, Percentage: 100, Status: StatusSuccess})
		return &Result{SourceID: item.sourceID, EmbedID: info.ID, Stream: s}, nil
	}

	o.emit(Event{ProviderID: info.ID, Percentage: 100, Status: StatusNotFound})
	return nil, provider.ErrNotFound
}

// firstPlayable filters candidate streams down to the structurally valid,
// feature-compatible ones, rewrites through the relay where needed, and
// probes the first survivor. Rank order already encoded the priority, so only
// one candidate from a winning provider is ever validated.
func (o *Options) firstPlayable(ctx context.Context, providerID string, streams []*stream.Stream) (*stream.Stream, bool) {
	kept := lo.Filter(streams, func(s *stream.Stream, _ int) bool {
		if !s.StructurallyValid() {
			return false
		}
		if flags.Compatible(o.Features, s.Flags) {
			return true
		}
		// A stream that only misses a required flag can still be rescued by
		// the relay; one carrying a disallowed flag cannot.
		return o.ProxyStreams && proxy.NeedsProxy(s) && !disallowedBy(o.Features, s.Flags)
	})
	if len(kept) == 0 {
		return nil, false
	}

	candidate := kept[0]
	if o.ProxyStreams && proxy.NeedsProxy(candidate) {
		candidate = proxy.Rewrite(candidate, o.Features)
	}

	if o.Prober == nil {
		return candidate, true
	}
	return o.Prober.Stream(ctx, providerID, candidate)
}

// reorder places items whose id appears in the override list first, in list
// order, and preserves the existing order for the rest.
func reorder[T any](items []T, order []string, id func(T) string) []T {
	if len(order) == 0 {
		return items
	}

	position := make(map[string]int, len(order))
	for i, v := range order {
		position[v] = i
	}

	out := append([]T(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, iOk := position[id(out[i])]
		pj, jOk := position[id(out[j])]
		switch {
		case iOk && jOk:
			return pi < pj
		case iOk:
			return true
		default:
			return false
		}
	})
	return out
}

// disallowedBy reports whether the stream carries any flag the features forbid.
func disallowedBy(f flags.Features, set flags.Set) bool {
	for _, flag := range f.Disallowed.List() {
		if set.Has(flag) {
			return true
		}
	}
	return false
}

func failureStatus(err error) Status {
	if errorIsNotFound(err) {
		return StatusNotFound
	}
	return StatusFailure
}
