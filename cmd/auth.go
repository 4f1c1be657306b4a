package cmd

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/anisan-cli/anifeed/auth"
	"github.com/anisan-cli/anifeed/color"
	"github.com/anisan-cli/anifeed/icon"
	"github.com/anisan-cli/anifeed/provider/jsonapi"
	"github.com/anisan-cli/anifeed/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.PersistentFlags().StringP("source", "s", jsonapi.ID, "Source the token belongs to")
	lo.Must0(authCmd.RegisterFlagCompletionFunc("source", completionSources))
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage API tokens kept in the system keyring",
}

func init() {
	authCmd.AddCommand(authSetCmd)
	authSetCmd.Flags().StringP("token", "t", "", "Token to store. Asked for when omitted")
}

var authSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store a bearer token for a source",
	Run: func(cmd *cobra.Command, args []string) {
		sourceID := lo.Must(cmd.Flags().GetString("source"))
		token := lo.Must(cmd.Flags().GetString("token"))

		if token == "" {
			handleErr(survey.AskOne(&survey.Password{
				Message: fmt.Sprintf("Token for %s", sourceID),
			}, &token, survey.WithValidator(survey.Required)))
		}

		if token == "" {
			handleErr(errors.New("empty token"))
		}

		handleErr(auth.SetToken(sourceID, token))
		fmt.Printf("%s stored token for %s\n", style.Success(icon.Get(icon.Success)), style.Fg(color.Purple)(sourceID))
	},
}

func init() {
	authCmd.AddCommand(authDeleteCmd)
}

var authDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Delete the stored token of a source",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		sourceID := lo.Must(cmd.Flags().GetString("source"))
		handleErr(auth.DeleteToken(sourceID))
		fmt.Printf("%s deleted token for %s\n", style.Success(icon.Get(icon.Success)), style.Fg(color.Purple)(sourceID))
	},
}
