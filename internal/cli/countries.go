package cli

import (
	"fxetl/internal/app"

	"github.com/spf13/cobra"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "Fetch and clean the country reference data only",
	RunE: func(cmd *cobra.Command, args []string) error {
		applyOutputFlags(cmd, appCfg)
		return app.RunCountries(cmd.Context(), appCfg)
	},
}

func init() {
	addOutputFlags(countriesCmd)
	rootCmd.AddCommand(countriesCmd)
}
