// Package cmd implements the command-line interface for streamscout.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/streamscout-cli/streamscout/color"
	"github.com/streamscout-cli/streamscout/constant"
	"github.com/streamscout-cli/streamscout/flags"
	"github.com/streamscout-cli/streamscout/key"
	"github.com/streamscout-cli/streamscout/log"
	"github.com/streamscout-cli/streamscout/provider"
	"github.com/streamscout-cli/streamscout/style"
	"github.com/streamscout-cli/streamscout/util"
	"github.com/streamscout-cli/streamscout/version"
	"github.com/streamscout-cli/streamscout/where"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("target", "t", "", "Set the runtime capability class of the caller")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("target", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return lo.Map(flags.Targets, func(t flags.Target, _ int) string { return string(t) }), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.Target, rootCmd.PersistentFlags().Lookup("target")))

	rootCmd.PersistentFlags().StringSliceP("source", "S", []string{}, "Specify the source ids to try first, in order")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("source", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		sources, _ := provider.Builtins()
		return lo.Map(sources, func(s provider.Source, _ int) string { return s.Info().ID }), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.SourcesOrder, rootCmd.PersistentFlags().Lookup("source")))

	rootCmd.PersistentFlags().StringSliceP("embed", "E", []string{}, "Specify the embed ids to try first, in order")
	lo.Must0(viper.BindPFlag(key.EmbedsOrder, rootCmd.PersistentFlags().Lookup("embed")))

	rootCmd.PersistentFlags().BoolP("write-history", "H", true, "Remember the winning source for each resolved media")
	lo.Must0(viper.BindPFlag(key.HistorySaveOnResolve, rootCmd.PersistentFlags().Lookup("write-history")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the streamscout application.
var rootCmd = &cobra.Command{
	Use:   constant.Streamscout,
	Short: "A command-line engine that resolves movies and shows to playable streams",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A command-line engine that resolves movies and shows to playable streams"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(cmd.Help())
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.Fg(color.Red)("✗"), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
