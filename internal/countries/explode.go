package countries

import "fxetl/internal/domain"

// ExplodeCurrencies flattens countries into one row per (country, currency).
// Countries without currencies contribute nothing; the result drives the
// default symbol universe for rate extraction.
func ExplodeCurrencies(list []domain.Country) []domain.CountryCurrency {
	rows := make([]domain.CountryCurrency, 0, len(list))
	for _, c := range list {
		for _, cur := range c.Currencies {
			rows = append(rows, domain.CountryCurrency{
				CCA2:           c.CCA2,
				CCA3:           c.CCA3,
				CountryName:    c.Name,
				Region:         c.Region,
				Subregion:      c.Subregion,
				CurrencyCode:   cur.Code,
				CurrencyName:   cur.Name,
				CurrencySymbol: cur.Symbol,
			})
		}
	}
	return rows
}
