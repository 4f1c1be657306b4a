package cmd

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/AlecAivazis/survey/v2"
	"github.com/anisan-cli/anifeed/color"
	"github.com/anisan-cli/anifeed/constant"
	"github.com/anisan-cli/anifeed/filesystem"
	"github.com/anisan-cli/anifeed/icon"
	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/provider"
	"github.com/anisan-cli/anifeed/provider/custom"
	"github.com/anisan-cli/anifeed/style"
	"github.com/anisan-cli/anifeed/transport"
	"github.com/anisan-cli/anifeed/util"
	"github.com/anisan-cli/anifeed/where"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const scriptExtension = ".lua"

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage built-in and custom sources",
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)

	sourcesListCmd.Flags().BoolP("raw", "r", false, "Print names only")
	sourcesListCmd.Flags().BoolP("custom", "c", false, "List only custom Lua sources")
	sourcesListCmd.Flags().BoolP("builtin", "b", false, "List only built-in sources")

	sourcesListCmd.MarkFlagsMutuallyExclusive("custom", "builtin")
	sourcesListCmd.SetOut(os.Stdout)
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available sources",
	Run: func(cmd *cobra.Command, args []string) {
		raw := lo.Must(cmd.Flags().GetBool("raw"))
		headerStyle := lipgloss.NewStyle().Foreground(color.Blue).Bold(true).Render
		defaults := viper.GetStringSlice(key.DefaultSources)

		list := func(header string, providers []*provider.Provider) {
			if !raw {
				cmd.Println(headerStyle(header))
			}

			for _, p := range providers {
				if raw {
					cmd.Println(p.Name)
					continue
				}

				line := fmt.Sprintf("%s %s", icon.Get(icon.Source), p.Name)
				if lo.Contains(defaults, p.Name) || lo.Contains(defaults, p.ID) {
					line += " " + style.Faint("(default)")
				}
				cmd.Println(line)
			}
		}

		switch {
		case lo.Must(cmd.Flags().GetBool("builtin")):
			list("Builtin:", provider.Builtins())
		case lo.Must(cmd.Flags().GetBool("custom")):
			list("Custom:", provider.Customs())
		default:
			list("Builtin:", provider.Builtins())
			if !raw {
				cmd.Println()
			}
			list("Custom:", provider.Customs())
		}
	},
}

func completionCustomSources(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return lo.Map(provider.Customs(), func(p *provider.Provider, _ int) string {
		return p.Name
	}), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	sourcesCmd.AddCommand(sourcesRemoveCmd)

	sourcesRemoveCmd.Flags().StringArrayP("name", "n", []string{}, "Name of the custom source to remove")
	lo.Must0(sourcesRemoveCmd.MarkFlagRequired("name"))
	lo.Must0(sourcesRemoveCmd.RegisterFlagCompletionFunc("name", completionCustomSources))
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove custom Lua sources",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range lo.Must(cmd.Flags().GetStringArray("name")) {
			path := filepath.Join(where.Sources(), util.SanitizeFilename(name)+scriptExtension)
			handleErr(filesystem.API().Remove(path))
			fmt.Printf("%s removed %s\n", style.Success(icon.Get(icon.Success)), style.Fg(color.Yellow)(name))
		}
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesGenCmd)

	sourcesGenCmd.Flags().StringP("name", "n", "", "Name of the new source")
	sourcesGenCmd.Flags().StringP("url", "u", "", "Base URL of the site the source scrapes")
}

var sourcesGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a Lua source from a template",
	Long: `Generate a Lua source with every required function stubbed out.
Missing name or url are asked for interactively.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SetOut(os.Stdout)

		author := "Anonymous"
		if usr, err := user.Current(); err == nil {
			author = usr.Username
		}

		s := struct {
			Name             string
			URL              string
			Author           string
			FeaturedAnimesFn string
			LatestAnimesFn   string
			SearchAnimesFn   string
			AnimeEpisodesFn  string
		}{
			Name:             lo.Must(cmd.Flags().GetString("name")),
			URL:              lo.Must(cmd.Flags().GetString("url")),
			Author:           author,
			FeaturedAnimesFn: constant.FeaturedAnimesFn,
			LatestAnimesFn:   constant.LatestAnimesFn,
			SearchAnimesFn:   constant.SearchAnimesFn,
			AnimeEpisodesFn:  constant.AnimeEpisodesFn,
		}

		var questions []*survey.Question
		if s.Name == "" {
			questions = append(questions, &survey.Question{
				Name:     "Name",
				Prompt:   &survey.Input{Message: "Source name"},
				Validate: survey.Required,
			})
		}
		if s.URL == "" {
			questions = append(questions, &survey.Question{
				Name:     "URL",
				Prompt:   &survey.Input{Message: "Site URL", Default: "https://"},
				Validate: survey.Required,
			})
		}
		if len(questions) > 0 {
			handleErr(survey.Ask(questions, &s))
		}

		tmpl, err := template.New("source").Funcs(template.FuncMap{
			"repeat": strings.Repeat,
			"plus":   func(a, b int) int { return a + b },
			"max":    util.Max[int],
		}).Parse(constant.SourceTemplate)
		handleErr(err)

		target := filepath.Join(where.Sources(), util.SanitizeFilename(s.Name)+scriptExtension)
		f, err := filesystem.API().Create(target)
		handleErr(err)
		defer util.Ignore(f.Close)

		handleErr(tmpl.Execute(f, s))
		cmd.Println(target)
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesUpdateCmd)

	sourcesUpdateCmd.Flags().StringArrayP("name", "n", []string{}, "Update only these custom sources")
	lo.Must0(sourcesUpdateCmd.RegisterFlagCompletionFunc("name", completionCustomSources))
	sourcesUpdateCmd.Flags().String("url", "", "Base URL the scripts are downloaded from")
	lo.Must0(viper.BindPFlag(key.SourcesUpdateURL, sourcesUpdateCmd.Flags().Lookup("url")))
}

var sourcesUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download newer versions of custom Lua sources",
	Run: func(cmd *cobra.Command, args []string) {
		files := lo.Map(lo.Must(cmd.Flags().GetStringArray("name")), func(name string, _ int) string {
			return util.SanitizeFilename(name) + scriptExtension
		})

		erase := util.PrintErasable(fmt.Sprintf("%s Updating sources...", icon.Get(icon.Progress)))
		updated, err := provider.Update(cmd.Context(), transport.Default(), viper.GetString(key.SourcesUpdateURL), files...)
		erase()
		handleErr(err)

		if len(updated) == 0 {
			fmt.Printf("%s everything is up to date\n", style.Success(icon.Get(icon.Success)))
			return
		}

		for _, file := range updated {
			fmt.Printf("%s updated %s\n", style.Success(icon.Get(icon.Success)), style.Fg(color.Yellow)(util.FileStem(file)))
		}
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesCheckCmd)
}

var sourcesCheckCmd = &cobra.Command{
	Use:     "check [file]",
	Short:   "Load a Lua source and check it defines every required function",
	Args:    cobra.ExactArgs(1),
	Example: "  anifeed sources check ./example.lua",
	Run: func(cmd *cobra.Command, args []string) {
		src, err := custom.LoadSource(args[0])
		handleErr(err)
		defer src.Close()

		fmt.Printf("%s %s %s is valid\n", style.Success(icon.Get(icon.Success)), icon.Get(icon.Lua), src.Name())
	},
}
