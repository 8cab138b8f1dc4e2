package transform

import (
	"cmp"
	"errors"
	"fxetl/internal/domain"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoCountries = errors.New("no country rows to clean")
	ErrNoRates     = errors.New("no rate rows to clean")
	ErrNoEnriched  = errors.New("no enriched rows to build gold views from")
)

const unknown = "Unknown"

// CleanCountries turns raw countries into flat validated records: the first
// listed currency becomes the country's currency_code, missing regions are
// filled with "Unknown", and cca3 duplicates collapse keeping the
// alphabetically first country name.
func CleanCountries(raw []domain.Country) ([]domain.CountryRecord, domain.CountriesQuality, error) {
	if len(raw) == 0 {
		return nil, domain.CountriesQuality{}, ErrNoCountries
	}

	records := make([]domain.CountryRecord, 0, len(raw))
	for _, c := range raw {
		rec := domain.CountryRecord{
			CountryName: strings.TrimSpace(c.Name),
			CCA2:        strings.ToUpper(strings.TrimSpace(c.CCA2)),
			CCA3:        strings.ToUpper(strings.TrimSpace(c.CCA3)),
			Region:      strings.TrimSpace(c.Region),
			Subregion:   strings.TrimSpace(c.Subregion),
			Population:  c.Population,
			Lat:         c.Lat,
			Lng:         c.Lng,
		}
		if rec.Region == "" {
			rec.Region = unknown
		}
		if rec.Subregion == "" {
			rec.Subregion = unknown
		}
		if len(c.Currencies) > 0 {
			rec.CurrencyCode = c.Currencies[0].Code
		}
		records = append(records, rec)
	}

	slices.SortStableFunc(records, func(a, b domain.CountryRecord) int {
		return cmp.Compare(a.CountryName, b.CountryName)
	})

	seen := make(map[string]struct{}, len(records))
	deduped := records[:0]
	for _, rec := range records {
		if _, ok := seen[rec.CCA3]; ok {
			continue
		}
		seen[rec.CCA3] = struct{}{}
		deduped = append(deduped, rec)
	}
	if removed := len(records) - len(deduped); removed > 0 {
		logrus.Infof("Removed %d duplicated countries by cca3", removed)
	}

	return deduped, countriesQuality(deduped), nil
}

func countriesQuality(rows []domain.CountryRecord) domain.CountriesQuality {
	nulls := map[string]int{
		"country_name": 0, "cca2": 0, "cca3": 0,
		"region": 0, "subregion": 0, "population": 0,
		"lat": 0, "lng": 0, "currency_code": 0,
	}
	duplicates := 0
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r.CountryName == "" {
			nulls["country_name"]++
		}
		if r.CCA2 == "" {
			nulls["cca2"]++
		}
		if r.CCA3 == "" {
			nulls["cca3"]++
		}
		if r.Region == "" {
			nulls["region"]++
		}
		if r.Subregion == "" {
			nulls["subregion"]++
		}
		if r.Lat == nil {
			nulls["lat"]++
		}
		if r.Lng == nil {
			nulls["lng"]++
		}
		if r.CurrencyCode == "" {
			nulls["currency_code"]++
		}
		if _, ok := seen[r.CCA3]; ok {
			duplicates++
		} else {
			seen[r.CCA3] = struct{}{}
		}
	}
	return domain.CountriesQuality{
		Rows:           len(rows),
		NullsPerColumn: nulls,
		DuplicateCCA3:  duplicates,
	}
}
