package cli

import (
	"context"
	"fmt"
	"fxetl/internal/app"
	"fxetl/internal/config"
	"fxetl/internal/domain"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	logLevel string

	appCfg *config.AppConfig
)

var (
	startFlag   string
	endFlag     string
	symbolsFlag []string

	bronzeDirFlag   string
	silverDirFlag   string
	goldDirFlag     string
	formatFlag      string
	compressionFlag string
	partitionByFlag string
	overwriteFlag   bool
)

var rootCmd = &cobra.Command{
	Use:           "fxetl",
	Short:         "Batch ETL for country reference data and FX rate timeseries",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Init(cfgPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}
		setupLogger(cfg.Logging.Level)
		appCfg = cfg
		logrus.Info("✅ Config initialization successful")
		return nil
	},
}

func setupLogger(level string) {
	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(level); err != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(lvl)
	}
}

// Execute runs the CLI with a root context canceled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&startFlag, "start", "", "window start, YYYY-MM-DD (default: end minus 9 days)")
	cmd.Flags().StringVar(&endFlag, "end", "", "window end, YYYY-MM-DD (default: today)")
	cmd.Flags().StringSliceVar(&symbolsFlag, "symbols", nil, "currency codes to fetch")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&bronzeDirFlag, "bronze-dir", "", "bronze layer output directory")
	cmd.Flags().StringVar(&silverDirFlag, "silver-dir", "", "silver layer output directory")
	cmd.Flags().StringVar(&goldDirFlag, "gold-dir", "", "gold layer output directory")
	cmd.Flags().StringVar(&formatFlag, "format", "", "output format: parquet or csv")
	cmd.Flags().StringVar(&compressionFlag, "compression", "", "parquet compression: snappy, gzip, zstd, brotli, uncompressed")
	cmd.Flags().StringVar(&partitionByFlag, "partition-by", "", "partition column for the gold timeseries (empty disables)")
	cmd.Flags().BoolVar(&overwriteFlag, "overwrite", false, "overwrite existing outputs")
}

// applyOutputFlags copies explicitly set output flags over the loaded
// config, so flags win only when given.
func applyOutputFlags(cmd *cobra.Command, cfg *config.AppConfig) {
	f := cmd.Flags()
	if f.Changed("bronze-dir") {
		cfg.Output.BronzeDir = bronzeDirFlag
	}
	if f.Changed("silver-dir") {
		cfg.Output.SilverDir = silverDirFlag
	}
	if f.Changed("gold-dir") {
		cfg.Output.GoldDir = goldDirFlag
	}
	if f.Changed("format") {
		cfg.Output.Format = formatFlag
	}
	if f.Changed("compression") {
		cfg.Output.Compression = compressionFlag
	}
	if f.Changed("partition-by") {
		cfg.Output.PartitionBy = partitionByFlag
	}
	if f.Changed("overwrite") {
		cfg.Output.Overwrite = overwriteFlag
	}
}

func parseWindow(start, end string) (app.Window, error) {
	var win app.Window

	if end == "" {
		win.End = time.Now().UTC().Truncate(24 * time.Hour)
	} else {
		d, err := time.Parse(domain.DateLayout, end)
		if err != nil {
			return app.Window{}, fmt.Errorf("invalid --end date %q: %w", end, err)
		}
		win.End = d
	}
	if start == "" {
		win.Start = win.End.AddDate(0, 0, -9)
	} else {
		d, err := time.Parse(domain.DateLayout, start)
		if err != nil {
			return app.Window{}, fmt.Errorf("invalid --start date %q: %w", start, err)
		}
		win.Start = d
	}
	return win, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warning, error")
}
