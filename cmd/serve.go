package cmd

import (
	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/server"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "Listen address")
	lo.Must0(viper.BindPFlag(key.ServerAddress, serveCmd.Flags().Lookup("address")))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the aggregated catalogs over HTTP",
	Long: `Serve a JSON API over the configured sources.

Routes:
  GET /featured?source=
  GET /search?q=&source=
  GET /episodes?source=&url=&title=
  GET /healthz
  GET /metrics`,
	Run: func(cmd *cobra.Command, args []string) {
		agg, closeSources := newAggregator()
		defer closeSources()

		srv := server.New(agg, server.ConfigFromViper())
		cmd.Printf("listening on http://%s\n", viper.GetString(key.ServerAddress))
		handleErr(srv.ListenAndServe(cmd.Context()))
	},
}
