package provider

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Registry is the immutable, validated set of providers a resolution runs
// against. Built once at startup; read-only afterwards, so concurrent
// resolutions share it without locking.
type Registry struct {
	sources []Source
	embeds  []Embed

	sourceByID map[string]Source
	embedByID  map[string]Embed
}

// NewRegistry validates and indexes the given providers.
// Duplicate ids (across both kinds) and duplicate ranks (within a kind) are
// configuration errors raised here, at setup, never at request time.
func NewRegistry(sources []Source, embeds []Embed) (*Registry, error) {
	r := &Registry{
		sourceByID: make(map[string]Source, len(sources)),
		embedByID:  make(map[string]Embed, len(embeds)),
	}

	seenIDs := make(map[string]struct{}, len(sources)+len(embeds))
	sourceRanks := make(map[int]string, len(sources))
	embedRanks := make(map[int]string, len(embeds))

	for _, s := range sources {
		info := s.Info()
		if info.ID == "" {
			return nil, fmt.Errorf("source with empty id")
		}
		if _, dup := seenIDs[info.ID]; dup {
			return nil, fmt.Errorf("duplicate provider id %q", info.ID)
		}
		if other, dup := sourceRanks[info.Rank]; dup {
			return nil, fmt.Errorf("duplicate source rank %d (%q and %q)", info.Rank, other, info.ID)
		}
		seenIDs[info.ID] = struct{}{}
		sourceRanks[info.Rank] = info.ID
		r.sourceByID[info.ID] = s
	}

	for _, e := range embeds {
		info := e.Info()
		if info.ID == "" {
			return nil, fmt.Errorf("embed with empty id")
		}
		if _, dup := seenIDs[info.ID]; dup {
			return nil, fmt.Errorf("duplicate provider id %q", info.ID)
		}
		if other, dup := embedRanks[info.Rank]; dup {
			return nil, fmt.Errorf("duplicate embed rank %d (%q and %q)", info.Rank, other, info.ID)
		}
		seenIDs[info.ID] = struct{}{}
		embedRanks[info.Rank] = info.ID
		r.embedByID[info.ID] = e
	}

	// Canonical order is descending rank; explicit overrides reorder per request.
	r.sources = append([]Source(nil), sources...)
	sort.SliceStable(r.sources, func(i, j int) bool {
		return r.sources[i].Info().Rank > r.sources[j].Info().Rank
	})

	r.embeds = append([]Embed(nil), embeds...)
	sort.SliceStable(r.embeds, func(i, j int) bool {
		return r.embeds[i].Info().Rank > r.embeds[j].Info().Rank
	})

	return r, nil
}

// Sources returns the registered sources in descending rank order.
func (r *Registry) Sources() []Source {
	return append([]Source(nil), r.sources...)
}

// Embeds returns the registered embeds in descending rank order.
func (r *Registry) Embeds() []Embed {
	return append([]Embed(nil), r.embeds...)
}

// SourceByID finds a registered source by id.
func (r *Registry) SourceByID(id string) (Source, bool) {
	s, ok := r.sourceByID[id]
	return s, ok
}

// EmbedByID finds a registered embed by id.
func (r *Registry) EmbedByID(id string) (Embed, bool) {
	e, ok := r.embedByID[id]
	return e, ok
}

// UnreliableProbeIDs lists providers whose streams must not be probed.
func (r *Registry) UnreliableProbeIDs() []string {
	var ids []string
	for _, s := range r.sources {
		if s.Info().UnreliableProbe {
			ids = append(ids, s.Info().ID)
		}
	}
	for _, e := range r.embeds {
		if e.Info().UnreliableProbe {
			ids = append(ids, e.Info().ID)
		}
	}
	return ids
}

// Builtins returns the compiled-in providers. Site scrapers register here at
// build time; the engine itself ships none.
func Builtins() (sources []Source, embeds []Embed) {
	return builtinSources, builtinEmbeds
}

var (
	builtinSources []Source
	builtinEmbeds  []Embed
)

// RegisterSource adds a compiled-in source. Called from init functions of
// scraper packages.
func RegisterSource(s Source) {
	builtinSources = append(builtinSources, s)
}

// RegisterEmbed adds a compiled-in embed. Called from init functions of
// scraper packages.
func RegisterEmbed(e Embed) {
	builtinEmbeds = append(builtinEmbeds, e)
}

// Names lists provider display names, sources first.
func Names(r *Registry) []string {
	names := lo.Map(r.Sources(), func(s Source, _ int) string { return s.Info().Name })
	return append(names, lo.Map(r.Embeds(), func(e Embed, _ int) string { return e.Info().Name })...)
}
