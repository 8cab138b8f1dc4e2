package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fxetl/internal/adapters"
	"fxetl/internal/adapters/apilayer"
	"fxetl/internal/adapters/exchangeratehost"
	"fxetl/internal/adapters/frankfurter"
	"fxetl/internal/adapters/httpclient"
	"fxetl/internal/adapters/postgres"
	"fxetl/internal/config"
	"fxetl/internal/countries"
	"fxetl/internal/domain"
	"fxetl/internal/platform/db"
	"fxetl/internal/rates"
	"fxetl/internal/transform"
	"fxetl/internal/writer"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Window is the inclusive date span a pipeline run covers.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) String() string {
	return w.Start.Format(domain.DateLayout) + ".." + w.End.Format(domain.DateLayout)
}

// RunAll executes the full pipeline: countries, rates, enrichment, gold
// views and, when configured, the warehouse load.
func RunAll(ctx context.Context, cfg *config.AppConfig, win Window, symbols []string) error {
	log := runLogger()
	log.WithFields(logrus.Fields{
		"provider": cfg.Provider.Name,
		"base":     cfg.Pipeline.Base,
		"window":   win.String(),
		"format":   cfg.Output.Format,
	}).Info("Starting pipeline run")

	hc := newHTTPClient(cfg.HTTPClient)

	_, cleanCountries, err := stageCountries(ctx, log, cfg, hc)
	if err != nil {
		return err
	}

	cleanRates, err := stageRates(ctx, log, cfg, hc, resolveSymbols(symbols, cfg.Pipeline.Symbols, cleanCountries), win)
	if err != nil {
		return err
	}
	if len(cleanRates) == 0 {
		log.Warn("No usable rate rows, skipping enrichment and gold stages")
		return nil
	}

	enriched, quality, err := transform.EnrichRates(cleanCountries, cleanRates)
	if err != nil {
		return fmt.Errorf("failed to enrich rates: %w", err)
	}
	log.WithFields(logrus.Fields{
		"rows":      quality.Rows,
		"nulls":     quality.NullsPerColumn,
		"unmatched": quality.Unmatched,
		"date_min":  quality.DateMin,
		"date_max":  quality.DateMax,
	}).Info("Enriched quality report")
	if _, err := writer.WriteDataset(cfg.Output.SilverDir, "rates_enriched", enriched, flatOpts(cfg.Output)); err != nil {
		return err
	}

	views, err := transform.BuildGoldViews(enriched)
	if err != nil {
		return fmt.Errorf("failed to build gold views: %w", err)
	}
	if len(views.Timeseries) == 0 {
		log.Warn("Gold views are empty, nothing to publish")
		return nil
	}
	if _, err := writer.WriteDataset(cfg.Output.GoldDir, "enriched_latest", views.Latest, flatOpts(cfg.Output)); err != nil {
		return err
	}
	tsOpts := flatOpts(cfg.Output)
	tsOpts.PartitionBy = cfg.Output.PartitionBy
	if _, err := writer.WriteDataset(cfg.Output.GoldDir, "country_timeseries", views.Timeseries, tsOpts); err != nil {
		return err
	}
	log.Infof("✅ Gold views published: %d latest rows, %d timeseries rows", len(views.Latest), len(views.Timeseries))

	if cfg.Warehouse.Enabled {
		if err := loadWarehouse(ctx, log, cfg, win, views.Timeseries); err != nil {
			return err
		}
	}

	log.Info("✅ Pipeline finished successfully")
	return nil
}

// RunCountries executes only the countries extraction and cleaning.
func RunCountries(ctx context.Context, cfg *config.AppConfig) error {
	log := runLogger()
	log.WithField("format", cfg.Output.Format).Info("Starting countries pipeline")

	hc := newHTTPClient(cfg.HTTPClient)
	if _, _, err := stageCountries(ctx, log, cfg, hc); err != nil {
		return err
	}

	log.Info("✅ Countries pipeline finished")
	return nil
}

// RunRates executes only the rate extraction and cleaning for an
// explicit symbol set.
func RunRates(ctx context.Context, cfg *config.AppConfig, win Window, symbols []string) error {
	log := runLogger()
	log.WithFields(logrus.Fields{
		"provider": cfg.Provider.Name,
		"base":     cfg.Pipeline.Base,
		"window":   win.String(),
	}).Info("Starting rates pipeline")

	syms := symbols
	if len(syms) == 0 {
		syms = cfg.Pipeline.Symbols
	}
	if len(syms) == 0 {
		return errors.New("no symbols given: pass --symbols or set pipeline.symbols")
	}

	hc := newHTTPClient(cfg.HTTPClient)
	if _, err := stageRates(ctx, log, cfg, hc, syms, win); err != nil {
		return err
	}

	log.Info("✅ Rates pipeline finished")
	return nil
}

func stageCountries(ctx context.Context, log *logrus.Entry, cfg *config.AppConfig, hc *httpclient.Client) ([]domain.Country, []domain.CountryRecord, error) {
	raw, err := countries.New(hc, cfg.Countries.BaseURL).FetchAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch countries: %w", err)
	}
	log.Infof("✅ Fetched %d countries", len(raw))

	if _, err := writer.WriteDataset(cfg.Output.BronzeDir, "countries_raw", raw, flatOpts(cfg.Output)); err != nil {
		return nil, nil, err
	}
	if exploded := countries.ExplodeCurrencies(raw); len(exploded) > 0 {
		if _, err := writer.WriteDataset(cfg.Output.BronzeDir, "country_currencies", exploded, flatOpts(cfg.Output)); err != nil {
			return nil, nil, err
		}
	}

	clean, quality, err := transform.CleanCountries(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to clean countries: %w", err)
	}
	log.WithFields(logrus.Fields{
		"rows":           quality.Rows,
		"nulls":          quality.NullsPerColumn,
		"duplicate_cca3": quality.DuplicateCCA3,
	}).Info("Countries quality report")

	if _, err := writer.WriteDataset(cfg.Output.SilverDir, "countries_clean", clean, flatOpts(cfg.Output)); err != nil {
		return nil, nil, err
	}
	return raw, clean, nil
}

func stageRates(ctx context.Context, log *logrus.Entry, cfg *config.AppConfig, hc *httpclient.Client, symbols []string, win Window) ([]domain.RateObservation, error) {
	primary, fallback, keyMissing := buildProviders(cfg, hc)
	svc := rates.NewService(primary, fallback, rates.Config{
		BatchSize:         cfg.Pipeline.BatchSize,
		MaxWindowDays:     cfg.Pipeline.MaxWindowDays,
		PrimaryKeyMissing: keyMissing,
	})

	obs, err := svc.FetchTimeseries(ctx, symbols, win.Start, win.End, cfg.Pipeline.Base)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rate timeseries: %w", err)
	}
	log.Infof("✅ Fetched %d rate observations", len(obs))
	if len(obs) == 0 {
		log.Warn("No rate observations for the requested window, nothing to write")
		return nil, nil
	}

	if _, err := writer.WriteDataset(cfg.Output.BronzeDir, "rates_raw", obs, flatOpts(cfg.Output)); err != nil {
		return nil, err
	}

	clean, quality, err := transform.CleanRates(obs)
	if err != nil {
		return nil, fmt.Errorf("failed to clean rates: %w", err)
	}
	log.WithFields(logrus.Fields{
		"rows":       quality.Rows,
		"nulls":      quality.NullsPerColumn,
		"currencies": quality.UniqueCurrencies,
		"date_min":   quality.DateMin,
		"date_max":   quality.DateMax,
	}).Info("Rates quality report")
	if len(clean) == 0 {
		log.Warn("All rate rows were dropped during cleaning")
		return nil, nil
	}

	if _, err := writer.WriteDataset(cfg.Output.SilverDir, "rates_clean", clean, flatOpts(cfg.Output)); err != nil {
		return nil, err
	}
	return clean, nil
}

func loadWarehouse(ctx context.Context, log *logrus.Entry, cfg *config.AppConfig, win Window, rows []domain.CountryRate) error {
	// Bounded context for connect and migrate; the load itself runs on
	// the run context.
	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.MigrateUp(connCtx, cfg.Warehouse.GetConnectionStr()); err != nil {
		return fmt.Errorf("failed to migrate warehouse: %w", err)
	}
	pool, err := db.CreatePoolAndPing(connCtx, cfg.Warehouse)
	if err != nil {
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	defer pool.Close()
	log.Info("✅ Postgres connection successful")

	n, err := postgres.NewCountryRateRepository(pool).ReplaceWindow(ctx, win.Start, win.End, rows)
	if err != nil {
		return fmt.Errorf("failed to load warehouse window %s: %w", win, err)
	}
	log.Infof("✅ Loaded %d rows into fx_country_rates", n)
	return nil
}

// resolveSymbols picks the symbol set for a full run: explicit flags win,
// then the configured list, then the distinct currency codes of the
// cleaned countries.
func resolveSymbols(flagSymbols, cfgSymbols []string, records []domain.CountryRecord) []string {
	if len(flagSymbols) > 0 {
		return flagSymbols
	}
	if len(cfgSymbols) > 0 {
		return cfgSymbols
	}
	codes := make([]string, 0, len(records))
	for _, r := range records {
		if r.CurrencyCode != "" {
			codes = append(codes, r.CurrencyCode)
		}
	}
	return codes
}

func buildProviders(cfg *config.AppConfig, hc *httpclient.Client) (primary, fallback adapters.RateProvider, keyMissing bool) {
	name, _ := rates.CanonicalProvider(cfg.Provider.Name)
	switch name {
	case rates.ProviderAPILayer:
		if rates.IsPlaceholderKey(cfg.Provider.APIKey) {
			return nil, frankfurter.New(hc, ""), true
		}
		return apilayer.New(hc, cfg.Provider.BaseURL, cfg.Provider.APIKey), frankfurter.New(hc, ""), false
	case rates.ProviderExchangerateHost:
		if rates.IsPlaceholderKey(cfg.Provider.APIKey) {
			return nil, frankfurter.New(hc, ""), true
		}
		return exchangeratehost.New(hc, cfg.Provider.BaseURL, cfg.Provider.APIKey), frankfurter.New(hc, ""), false
	default:
		return nil, frankfurter.New(hc, cfg.Provider.BaseURL), false
	}
}

func newHTTPClient(cfg config.HTTPClient) *httpclient.Client {
	policy := httpclient.DefaultRetryPolicy()
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.BackoffInitialSeconds > 0 {
		policy.InitialBackoff = time.Duration(cfg.BackoffInitialSeconds) * time.Second
	}
	if cfg.BackoffMaxSeconds > 0 {
		policy.MaxBackoff = time.Duration(cfg.BackoffMaxSeconds) * time.Second
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return httpclient.New(&http.Client{Timeout: timeout}, policy)
}

func flatOpts(out config.Output) writer.Options {
	return writer.Options{
		Format:      out.Format,
		Compression: out.Compression,
		Overwrite:   out.Overwrite,
	}
}

func runLogger() *logrus.Entry {
	return logrus.WithField("run_id", uuid.NewString())
}
