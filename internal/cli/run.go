package cli

import (
	"fxetl/internal/app"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: countries, rates, enrichment, gold views and warehouse load",
	RunE: func(cmd *cobra.Command, args []string) error {
		win, err := parseWindow(startFlag, endFlag)
		if err != nil {
			return err
		}
		applyOutputFlags(cmd, appCfg)
		return app.RunAll(cmd.Context(), appCfg, win, symbolsFlag)
	},
}

func init() {
	addWindowFlags(runCmd)
	addOutputFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
