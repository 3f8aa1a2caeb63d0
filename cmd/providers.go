// Package cmd implements the command-line interface for streamscout.
package cmd

import (
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/streamscout-cli/streamscout/color"
	"github.com/streamscout-cli/streamscout/flags"
	"github.com/streamscout-cli/streamscout/provider"
	"github.com/streamscout-cli/streamscout/style"
)

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.Flags().BoolP("sources", "s", false, "Display only sources")
	providersCmd.Flags().BoolP("embeds", "e", false, "Display only embeds")
	providersCmd.MarkFlagsMutuallyExclusive("sources", "embeds")

	providersCmd.SetOut(os.Stdout)
}

// providersCmd lists the registered providers in their attempt order.
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Display the registered sources and embeds in rank order",
	Run: func(cmd *cobra.Command, args []string) {
		sourcesOnly := lo.Must(cmd.Flags().GetBool("sources"))
		embedsOnly := lo.Must(cmd.Flags().GetBool("embeds"))

		sources, embeds := provider.Builtins()
		registry, err := provider.NewRegistry(sources, embeds)
		handleErr(err)

		headerStyle := style.New().Bold(true).Foreground(color.HiPurple).Render

		if !embedsOnly {
			cmd.Println(headerStyle("Sources"))
			for _, s := range registry.Sources() {
				printProviderInfo(cmd, s.Info())
			}
		}

		if !sourcesOnly && !embedsOnly {
			cmd.Println()
		}

		if !sourcesOnly {
			cmd.Println(headerStyle("Embeds"))
			for _, e := range registry.Embeds() {
				printProviderInfo(cmd, e.Info())
			}
		}
	},
}

func printProviderInfo(cmd *cobra.Command, info provider.Info) {
	line := []string{
		style.Fg(color.Yellow)(info.ID),
		style.Faint(info.Name),
	}

	if len(info.Flags) > 0 {
		rendered := lo.Map(info.Flags.List(), func(f flags.Flag, _ int) string { return string(f) })
		line = append(line, style.Fg(color.Cyan)(strings.Join(rendered, ",")))
	}
	if info.Disabled {
		line = append(line, style.Fg(color.Red)("disabled"))
	}

	cmd.Printf("  %3d %s\n", info.Rank, strings.Join(line, " "))
}
