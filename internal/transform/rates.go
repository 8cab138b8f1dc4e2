package transform

import (
	"cmp"
	"fxetl/internal/domain"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CleanRates drops observations with an unparseable date, an empty currency
// code or a non-finite rate, then sorts by (date, currency_code). A missing
// base is tolerated. Rows surviving validation may legitimately be zero.
func CleanRates(raw []domain.RateObservation) ([]domain.RateObservation, domain.RatesQuality, error) {
	if len(raw) == 0 {
		return nil, domain.RatesQuality{}, ErrNoRates
	}

	rows := make([]domain.RateObservation, 0, len(raw))
	for _, r := range raw {
		if _, err := time.Parse(domain.DateLayout, r.Date); err != nil {
			continue
		}
		r.CurrencyCode = strings.ToUpper(strings.TrimSpace(r.CurrencyCode))
		if r.CurrencyCode == "" {
			continue
		}
		if math.IsNaN(r.RateToBase) || math.IsInf(r.RateToBase, 0) {
			continue
		}
		r.Base = strings.ToUpper(strings.TrimSpace(r.Base))
		rows = append(rows, r)
	}

	slices.SortFunc(rows, func(a, b domain.RateObservation) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.CurrencyCode, b.CurrencyCode)
	})

	quality := ratesQuality(rows)
	logrus.Infof("Cleaned rates: rows=%d, currencies=%d, window=%s..%s",
		quality.Rows, quality.UniqueCurrencies, quality.DateMin, quality.DateMax)
	return rows, quality, nil
}

func ratesQuality(rows []domain.RateObservation) domain.RatesQuality {
	nulls := map[string]int{"date": 0, "currency_code": 0, "rate_to_base": 0, "base": 0}
	currencies := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r.Base == "" {
			nulls["base"]++
		}
		currencies[r.CurrencyCode] = struct{}{}
	}

	q := domain.RatesQuality{
		Rows:             len(rows),
		NullsPerColumn:   nulls,
		UniqueCurrencies: len(currencies),
	}
	if len(rows) > 0 {
		q.DateMin = rows[0].Date
		q.DateMax = rows[len(rows)-1].Date
	}
	return q
}
