// Package cmd implements the command-line interface for streamscout.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/streamscout-cli/streamscout/color"
	"github.com/streamscout-cli/streamscout/flags"
	"github.com/streamscout-cli/streamscout/history"
	"github.com/streamscout-cli/streamscout/key"
	"github.com/streamscout-cli/streamscout/network"
	"github.com/streamscout-cli/streamscout/probe"
	"github.com/streamscout-cli/streamscout/provider"
	"github.com/streamscout-cli/streamscout/resolve"
	"github.com/streamscout-cli/streamscout/style"
)

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().String("type", "movie", "Media kind: movie or show")
	resolveCmd.Flags().String("title", "", "Media title")
	resolveCmd.Flags().Int("year", 0, "Release year")
	resolveCmd.Flags().String("tmdb", "", "TMDB id of the media")
	resolveCmd.Flags().String("imdb", "", "IMDB id of the media")
	resolveCmd.Flags().Int("season", 0, "Season number (shows only)")
	resolveCmd.Flags().Int("episode", 0, "Episode number (shows only)")

	resolveCmd.Flags().String("from-source", "", "Resolve through exactly this source id")
	resolveCmd.Flags().String("from-embed", "", "Resolve through exactly this embed id")
	resolveCmd.Flags().String("url", "", "Opaque embed reference, required with --from-embed")
	resolveCmd.Flags().BoolP("json", "j", false, "Print the resolution result as JSON")

	lo.Must0(resolveCmd.MarkFlagRequired("tmdb"))
	resolveCmd.MarkFlagsMutuallyExclusive("from-source", "from-embed")
	resolveCmd.MarkFlagsRequiredTogether("from-embed", "url")

	resolveCmd.SetOut(os.Stdout)
}

// resolveCmd runs a resolution request against the registered providers.
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a movie or show episode to a playable stream",
	Long: `Resolve queries the registered sources in rank order, validates candidate
streams against the caller's runtime capabilities, probes them for
reachability and prints the first playable result.`,
	Example: `  streamscout resolve --tmdb 603 --title "The Matrix" --year 1999
  streamscout resolve --type show --tmdb 1396 --season 2 --episode 5 --title "Breaking Bad"
  streamscout resolve --tmdb 603 --from-source flixhq --json`,
	Run: func(cmd *cobra.Command, args []string) {
		media, err := mediaFromFlags(cmd)
		handleErr(err)

		target, err := flags.ParseTarget(viper.GetString(key.Target))
		handleErr(err)

		sources, embeds := provider.Builtins()
		registry, err := provider.NewRegistry(sources, embeds)
		handleErr(err)

		asJson := lo.Must(cmd.Flags().GetBool("json"))
		opts := newResolveOptions(registry, media, target, !asJson)

		var result *resolve.Result
		switch {
		case cmd.Flags().Changed("from-source"):
			result, err = resolve.Source(cmd.Context(), opts, lo.Must(cmd.Flags().GetString("from-source")))
		case cmd.Flags().Changed("from-embed"):
			result, err = resolve.Embed(cmd.Context(), opts,
				lo.Must(cmd.Flags().GetString("from-embed")),
				lo.Must(cmd.Flags().GetString("url")))
		default:
			result, err = resolve.All(cmd.Context(), opts)
		}

		if errors.Is(err, provider.ErrNotFound) {
			handleErr(errors.New("no stream available"))
		}
		handleErr(err)

		if viper.GetBool(key.HistorySaveOnResolve) {
			_ = history.Save(media, result.SourceID, result.EmbedID, string(result.Stream.Type))
		}

		if asJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(result))
			return
		}

		printResult(cmd, result)
	},
}

// mediaFromFlags builds the media descriptor from the command flags.
func mediaFromFlags(cmd *cobra.Command) (*provider.Media, error) {
	media := &provider.Media{
		Title:       lo.Must(cmd.Flags().GetString("title")),
		ReleaseYear: lo.Must(cmd.Flags().GetInt("year")),
		TMDBID:      lo.Must(cmd.Flags().GetString("tmdb")),
		IMDBID:      lo.Must(cmd.Flags().GetString("imdb")),
	}

	switch kind := lo.Must(cmd.Flags().GetString("type")); kind {
	case string(provider.Movie):
		media.Type = provider.Movie
	case string(provider.Show):
		media.Type = provider.Show
		media.Season = provider.SeasonRef{Number: lo.Must(cmd.Flags().GetInt("season"))}
		media.Episode = provider.EpisodeRef{Number: lo.Must(cmd.Flags().GetInt("episode"))}
		if media.Season.Number == 0 || media.Episode.Number == 0 {
			return nil, errors.New("shows require --season and --episode")
		}
	default:
		return nil, fmt.Errorf("unknown media type %q", kind)
	}

	return media, nil
}

// newResolveOptions assembles the per-request engine wiring from the
// configuration surface.
func newResolveOptions(registry *provider.Registry, media *provider.Media, target flags.Target, verbose bool) *resolve.Options {
	timeout := time.Duration(viper.GetInt(key.RequestsTimeout)) * time.Second

	var client network.Client
	if viper.GetBool(key.NetworkSpoofTLS) {
		client = network.NewFingerprint(timeout)
	} else {
		client = network.NewDirect(timeout)
	}
	proxied := network.NewProxied(client)

	opts := &resolve.Options{
		Registry: registry,
		Media:    media,
		Features: flags.DeriveFeatures(
			target,
			viper.GetBool(key.RequestsConsistentIP),
			viper.GetBool(key.ProxyStreams),
		),
		SourceOrder:  viper.GetStringSlice(key.SourcesOrder),
		EmbedOrder:   viper.GetStringSlice(key.EmbedsOrder),
		ProxyStreams: viper.GetBool(key.ProxyStreams),
		Client:       client,
		Proxied:      proxied,
		Prober:       probe.New(proxied, client, registry.UnreliableProbeIDs()),
	}

	// A previously winning source gets the first shot on repeat resolutions.
	if viper.GetBool(key.HistorySeedOrdering) {
		if record, ok := history.Lookup(media).Get(); ok {
			opts.SourceOrder = append([]string{record.SourceID}, opts.SourceOrder...)
			if record.EmbedID != "" {
				opts.EmbedOrder = append([]string{record.EmbedID}, opts.EmbedOrder...)
			}
		}
	}

	if verbose {
		opts.OnProgress = func(e resolve.Event) {
			if e.Status == resolve.StatusPending && e.Percentage == 0 {
				fmt.Fprintf(os.Stderr, "%s %s\n", style.Faint("trying"), e.ProviderID)
			}
		}
	}

	return opts
}

// printResult renders a successful resolution for terminal consumption.
func printResult(cmd *cobra.Command, result *resolve.Result) {
	header := style.New().Bold(true).Foreground(color.Green).Render

	cmd.Printf("%s %s", header("resolved via"), result.SourceID)
	if result.EmbedID != "" {
		cmd.Printf(" %s %s", style.Faint("through"), result.EmbedID)
	}
	cmd.Println()

	s := result.Stream
	cmd.Printf("%s %s\n", style.Faint("type"), string(s.Type))
	if s.PlaylistURL != "" {
		cmd.Printf("%s %s\n", style.Faint("playlist"), s.PlaylistURL)
	}
	for quality, variant := range s.Qualities {
		cmd.Printf("%s %s\n", style.Fg(color.Yellow)(string(quality)), variant.URL)
	}
	for _, caption := range s.Captions {
		cmd.Printf("%s [%s] %s\n", style.Faint("caption"), caption.Language, caption.URL)
	}
}
