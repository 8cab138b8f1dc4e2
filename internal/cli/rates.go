package cli

import (
	"fxetl/internal/app"

	"github.com/spf13/cobra"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Fetch and clean the FX rate timeseries only",
	RunE: func(cmd *cobra.Command, args []string) error {
		win, err := parseWindow(startFlag, endFlag)
		if err != nil {
			return err
		}
		applyOutputFlags(cmd, appCfg)
		return app.RunRates(cmd.Context(), appCfg, win, symbolsFlag)
	},
}

func init() {
	addWindowFlags(ratesCmd)
	addOutputFlags(ratesCmd)
	rootCmd.AddCommand(ratesCmd)
}
