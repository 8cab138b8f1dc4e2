package transform

import (
	"cmp"
	"fxetl/internal/domain"
	"slices"

	"github.com/sirupsen/logrus"
)

// EnrichRates left-joins the rate timeseries with the cleaned countries on
// currency_code. Currencies shared by several countries fan out into one row
// per country; rates with no matching country keep empty country columns and
// are counted as unmatched.
func EnrichRates(countries []domain.CountryRecord, rates []domain.RateObservation) ([]domain.EnrichedRate, domain.EnrichedQuality, error) {
	if len(countries) == 0 {
		return nil, domain.EnrichedQuality{}, ErrNoCountries
	}
	if len(rates) == 0 {
		return nil, domain.EnrichedQuality{}, ErrNoRates
	}

	byCurrency := make(map[string][]domain.CountryRecord, len(countries))
	for _, c := range countries {
		byCurrency[c.CurrencyCode] = append(byCurrency[c.CurrencyCode], c)
	}

	rows := make([]domain.EnrichedRate, 0, len(rates))
	for _, r := range rates {
		matches := byCurrency[r.CurrencyCode]
		if len(matches) == 0 {
			rows = append(rows, domain.EnrichedRate{
				Date:         r.Date,
				CurrencyCode: r.CurrencyCode,
				RateToBase:   r.RateToBase,
				Base:         r.Base,
			})
			continue
		}
		for _, c := range matches {
			rows = append(rows, domain.EnrichedRate{
				Date:         r.Date,
				CurrencyCode: r.CurrencyCode,
				RateToBase:   r.RateToBase,
				Base:         r.Base,
				CCA3:         c.CCA3,
				CountryName:  c.CountryName,
				Region:       c.Region,
				Subregion:    c.Subregion,
			})
		}
	}

	slices.SortStableFunc(rows, func(a, b domain.EnrichedRate) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Region, b.Region); c != 0 {
			return c
		}
		return cmp.Compare(a.CountryName, b.CountryName)
	})

	quality := enrichedQuality(rows)
	logrus.Infof("Enriched rates: rows=%d, unmatched=%d", quality.Rows, quality.Unmatched)
	return rows, quality, nil
}

func enrichedQuality(rows []domain.EnrichedRate) domain.EnrichedQuality {
	nulls := map[string]int{
		"date": 0, "currency_code": 0, "rate_to_base": 0, "base": 0,
		"cca3": 0, "country_name": 0, "region": 0, "subregion": 0,
	}
	for _, r := range rows {
		if r.Base == "" {
			nulls["base"]++
		}
		if r.CCA3 == "" {
			nulls["cca3"]++
		}
		if r.CountryName == "" {
			nulls["country_name"]++
		}
		if r.Region == "" {
			nulls["region"]++
		}
		if r.Subregion == "" {
			nulls["subregion"]++
		}
	}

	q := domain.EnrichedQuality{
		Rows:           len(rows),
		NullsPerColumn: nulls,
		Unmatched:      nulls["cca3"],
	}
	if len(rows) > 0 {
		q.DateMin = rows[0].Date
		q.DateMax = rows[len(rows)-1].Date
	}
	return q
}
