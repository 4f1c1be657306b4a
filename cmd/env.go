package cmd

import (
	"os"
	"slices"

	"github.com/anisan-cli/anifeed/color"
	"github.com/anisan-cli/anifeed/config"
	"github.com/anisan-cli/anifeed/where"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Only variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Only variables that are unset")

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables anifeed reads",
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))
		name := lipgloss.NewStyle().Bold(true).Foreground(color.Purple).Render

		envs := lo.Map(config.EnvExposed, func(k string, _ int) string {
			field := config.Default[k]
			return field.Env()
		})
		envs = append(envs, where.EnvConfigPath)
		slices.Sort(envs)

		for _, env := range envs {
			value, present := os.LookupEnv(env)
			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			cmd.Print(name(env), "=")
			if present {
				cmd.Println(lipgloss.NewStyle().Foreground(color.Green).Render(value))
			} else {
				cmd.Println(lipgloss.NewStyle().Foreground(color.Red).Render("unset"))
			}
		}
	},
}
