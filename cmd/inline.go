package cmd

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/anisan-cli/anifeed/filesystem"
	"github.com/anisan-cli/anifeed/inline"
	"github.com/anisan-cli/anifeed/query"
	"github.com/anisan-cli/anifeed/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inlineCmd)

	inlineCmd.Flags().StringP("mode", "m", "", "What to list: "+strings.Join(inline.AvailableModes(), ", ")+". Defaults to search when a query is given")
	lo.Must0(inlineCmd.RegisterFlagCompletionFunc("mode", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return inline.AvailableModes(), cobra.ShellCompDirectiveNoFileComp
	}))

	inlineCmd.Flags().StringP("query", "q", "", "Search query")
	lo.Must0(inlineCmd.RegisterFlagCompletionFunc("query", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	}))

	inlineCmd.Flags().StringP("anime", "a", "", "Pick one anime and list its episodes")
	inlineCmd.Flags().StringP("episodes", "e", "", "Filter the episodes of the picked anime")
	inlineCmd.Flags().BoolP("json", "j", false, "Write JSON")
	inlineCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
}

var inlineCmd = &cobra.Command{
	Use:   "inline",
	Short: "List anime without the interactive interface",
	Long: `Print featured, latest or searched anime, or the episodes of one of them.

Anime selectors:
  first - first anime in the list
  last - last anime in the list
  [number] - anime by index, starting from 0
  exact:[title] - anime with exactly this title

Episode selectors:
  first - first episode
  last - last episode
  all - every episode
  [number] - episode by index, starting from 0
  [from]-[to] - inclusive range of indexes
  @[substring]@ - episodes whose identifier contains the substring`,
	Example: `  anifeed inline --mode latest --json
  anifeed inline -q "cowboy bebop" -a first -e all`,
	PreRun: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetString("episodes")) != "" && lo.Must(cmd.Flags().GetString("anime")) == "" {
			lo.Must0(cmd.MarkFlagRequired("anime"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		q := lo.Must(cmd.Flags().GetString("query"))

		mode := inline.Mode(lo.Must(cmd.Flags().GetString("mode")))
		if mode == "" {
			mode = lo.Ternary(q != "", inline.ModeSearch, inline.ModeFeatured)
		}

		options := &inline.Options{
			Mode:  mode,
			Query: q,
			JSON:  lo.Must(cmd.Flags().GetBool("json")),
		}

		if flag := lo.Must(cmd.Flags().GetString("anime")); flag != "" {
			picker, err := parseAnimeFlag(flag)
			handleErr(err)
			options.AnimePicker = mo.Some(picker)
		}

		if flag := lo.Must(cmd.Flags().GetString("episodes")); flag != "" {
			filter, err := inline.ParseEpisodesFilter(flag)
			handleErr(err)
			options.EpisodesFilter = mo.Some(filter)
		}

		var out io.Writer = os.Stdout
		if output := lo.Must(cmd.Flags().GetString("output")); output != "" {
			f, err := filesystem.API().Create(output)
			handleErr(err)
			defer util.Ignore(f.Close)
			out = f
		}
		options.Out = out

		agg, closeSources := newAggregator()
		defer closeSources()
		options.Aggregator = agg

		if mode == inline.ModeSearch && q != "" {
			_ = query.Remember(q, 1)
		}

		handleErr(inline.Run(cmd.Context(), options))
	},
}

func parseAnimeFlag(flag string) (inline.AnimePicker, error) {
	if title, ok := strings.CutPrefix(flag, "exact:"); ok {
		return inline.ParseAnimePicker("exact", title)
	}

	if _, err := strconv.ParseUint(flag, 10, 16); err == nil {
		return inline.ParseAnimePicker("index", flag)
	}

	return inline.ParseAnimePicker(flag, "")
}

func init() {
	inlineCmd.AddCommand(inlineSchemaCmd)
}

var inlineSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the inline output",
	Run: func(cmd *cobra.Command, args []string) {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(inline.Schema()))
	},
}
