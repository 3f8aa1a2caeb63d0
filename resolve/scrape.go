package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/streamscout-cli/streamscout/log"
	"github.com/streamscout-cli/streamscout/provider"
)

// scrapeSource invokes one source plug-in. A panicking plug-in is converted
// into a provider failure so a single bad scraper cannot abort the loop.
func (o *Options) scrapeSource(ctx context.Context, src provider.Source) (output *provider.SourceOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("source %s panicked: %v", src.Info().ID, r)
			output, err = nil, fmt.Errorf("source %s panicked: %v", src.Info().ID, r)
		}
	}()

	scrape := o.newScrapeContext(src.Info().ID)
	if o.Media.Type == provider.Show {
		return src.ScrapeShow(ctx, scrape)
	}
	return src.ScrapeMovie(ctx, scrape)
}

// scrapeEmbed invokes one embed plug-in with the same panic boundary.
func (o *Options) scrapeEmbed(ctx context.Context, emb provider.Embed, url string) (output *provider.EmbedOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("embed %s panicked: %v", emb.Info().ID, r)
			output, err = nil, fmt.Errorf("embed %s panicked: %v", emb.Info().ID, r)
		}
	}()

	scrape := &provider.EmbedScrapeContext{
		ScrapeContext: *o.newScrapeContext(emb.Info().ID),
		URL:           url,
	}
	return emb.Scrape(ctx, scrape)
}

// newScrapeContext wires the engine's capabilities and this request's
// progress channel into the plug-in call.
func (o *Options) newScrapeContext(providerID string) *provider.ScrapeContext {
	return &provider.ScrapeContext{
		Client:   o.Client,
		Proxied:  o.Proxied,
		Features: o.Features,
		Media:    o.Media,
		Progress: func(percent int) {
			o.emit(Event{ProviderID: providerID, Percentage: percent, Status: StatusPending})
		},
	}
}

func errorIsNotFound(err error) bool {
	return err != nil && errors.Is(err, provider.ErrNotFound)
}
