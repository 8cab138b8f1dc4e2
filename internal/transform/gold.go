package transform

import (
	"cmp"
	"fxetl/internal/domain"
	"math"
	"slices"
	"time"
)

// GoldViews holds the presentation-layer tables.
type GoldViews struct {
	// Latest is a one day snapshot: every country's rate on the newest
	// available date, sorted by (region, country_name, currency_code).
	Latest []domain.CountryRate
	// Timeseries is the full history sorted by
	// (date, region, country_name, currency_code).
	Timeseries []domain.CountryRate
}

// BuildGoldViews re-validates the enriched rows and shapes the two gold
// tables from them.
func BuildGoldViews(enriched []domain.EnrichedRate) (GoldViews, error) {
	if len(enriched) == 0 {
		return GoldViews{}, ErrNoEnriched
	}

	valid := make([]domain.CountryRate, 0, len(enriched))
	maxDate := ""
	for _, e := range enriched {
		if _, err := time.Parse(domain.DateLayout, e.Date); err != nil {
			continue
		}
		if e.CurrencyCode == "" || math.IsNaN(e.RateToBase) || math.IsInf(e.RateToBase, 0) {
			continue
		}
		valid = append(valid, domain.CountryRate{
			Date:         e.Date,
			CountryName:  e.CountryName,
			Region:       e.Region,
			Subregion:    e.Subregion,
			CurrencyCode: e.CurrencyCode,
			RateToBase:   e.RateToBase,
			Base:         e.Base,
			CCA3:         e.CCA3,
		})
		if e.Date > maxDate {
			maxDate = e.Date
		}
	}

	views := GoldViews{
		Latest:     make([]domain.CountryRate, 0, len(valid)),
		Timeseries: valid,
	}
	for _, r := range valid {
		if r.Date == maxDate {
			views.Latest = append(views.Latest, r)
		}
	}

	slices.SortStableFunc(views.Latest, func(a, b domain.CountryRate) int {
		if c := cmp.Compare(a.Region, b.Region); c != 0 {
			return c
		}
		if c := cmp.Compare(a.CountryName, b.CountryName); c != 0 {
			return c
		}
		return cmp.Compare(a.CurrencyCode, b.CurrencyCode)
	})
	slices.SortStableFunc(views.Timeseries, func(a, b domain.CountryRate) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Region, b.Region); c != 0 {
			return c
		}
		if c := cmp.Compare(a.CountryName, b.CountryName); c != 0 {
			return c
		}
		return cmp.Compare(a.CurrencyCode, b.CurrencyCode)
	})
	return views, nil
}
