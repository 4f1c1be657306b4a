// Package cmd implements the anifeed command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/anisan-cli/anifeed/aggregator"
	"github.com/anisan-cli/anifeed/color"
	"github.com/anisan-cli/anifeed/constant"
	"github.com/anisan-cli/anifeed/icon"
	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/log"
	"github.com/anisan-cli/anifeed/provider"
	"github.com/anisan-cli/anifeed/style"
	"github.com/anisan-cli/anifeed/tui"
	"github.com/anisan-cli/anifeed/util"
	"github.com/charmbracelet/lipgloss"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Icon variant: "+strings.Join(icon.AvailableVariants(), ", "))
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringSliceP("source", "S", []string{}, "Sources to aggregate, the first one backs the landing screen")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("source", completionSources))
	lo.Must0(viper.BindPFlag(key.DefaultSources, rootCmd.PersistentFlags().Lookup("source")))
}

var rootCmd = &cobra.Command{
	Use:   constant.App,
	Short: "Browse featured, latest and searched anime across catalogs",
	Long: constant.Banner + "\n\n" +
		lipgloss.NewStyle().Italic(true).Foreground(color.Purple).Render("    Browse featured, latest and searched anime across catalogs"),
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("version")) {
			versionCmd.SetContext(cmd.Context())
			versionCmd.Run(versionCmd, args)
			return
		}

		agg, closeSources := newAggregator()
		defer closeSources()

		handleErr(tui.Run(cmd.Context(), &tui.Options{Aggregator: agg}))
	},
}

// Execute runs the root command until it finishes or the process is interrupted.
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}

// newAggregator creates the configured sources. The returned func releases them.
func newAggregator() (*aggregator.Aggregator, func()) {
	sources, err := provider.Sources(viper.GetStringSlice(key.DefaultSources)...)
	handleErr(err)

	log.Infof("aggregating %s", util.Quantify(len(sources), "source", "sources"))

	return aggregator.New(sources...), func() {
		for _, src := range sources {
			if closer, ok := src.(interface{ Close() }); ok {
				closer.Close()
			}
		}
	}
}

func completionSources(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return lo.Map(provider.All(), func(p *provider.Provider, _ int) string {
		return p.Name
	}), cobra.ShellCompDirectiveNoFileComp
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.Failure(icon.Get(icon.Fail)), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
