package adapters

import (
	"context"
	"fxetl/internal/domain"
	"time"
)

// RateProvider is a single upstream exchange-rate API. Implementations fetch
// the raw timeseries for one request and return it already normalized into
// long-format observations.
type RateProvider interface {
	Name() string
	FetchTimeseries(ctx context.Context, req domain.ProviderRequest) ([]domain.RateObservation, error)
}

// CountryClient fetches the country reference dataset.
type CountryClient interface {
	FetchAll(ctx context.Context) ([]domain.Country, error)
}

// CountryRateRepository persists enriched country rates into the warehouse.
type CountryRateRepository interface {
	ReplaceWindow(ctx context.Context, start, end time.Time, rows []domain.CountryRate) (int64, error)
}
