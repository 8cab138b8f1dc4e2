package domain

// Currency is one entry of a country's currency listing, in document order.
type Currency struct {
	Code   string
	Name   string
	Symbol string
}

// Country is the flattened country reference record as fetched upstream.
// Currencies keeps the upstream listing order; the first entry is the
// country's primary currency.
type Country struct {
	Name       string     `parquet:"country_name" json:"country_name"`
	CCA2       string     `parquet:"cca2" json:"cca2"`
	CCA3       string     `parquet:"cca3" json:"cca3"`
	Region     string     `parquet:"region" json:"region"`
	Subregion  string     `parquet:"subregion" json:"subregion"`
	Population int64      `parquet:"population" json:"population"`
	Lat        *float64   `parquet:"lat" json:"lat"`
	Lng        *float64   `parquet:"lng" json:"lng"`
	Currencies []Currency `parquet:"-" json:"-"`
}

// CountryCurrency is one row of the exploded country x currency mapping.
type CountryCurrency struct {
	CCA2           string `parquet:"cca2" json:"cca2"`
	CCA3           string `parquet:"cca3" json:"cca3"`
	CountryName    string `parquet:"country_name" json:"country_name"`
	Region         string `parquet:"region" json:"region"`
	Subregion      string `parquet:"subregion" json:"subregion"`
	CurrencyCode   string `parquet:"currency_code" json:"currency_code"`
	CurrencyName   string `parquet:"currency_name" json:"currency_name"`
	CurrencySymbol string `parquet:"currency_symbol" json:"currency_symbol"`
}

// CountryRecord is the cleaned country row: missing region/subregion filled,
// primary currency extracted, deduplicated by CCA3.
type CountryRecord struct {
	CountryName  string   `parquet:"country_name" json:"country_name"`
	CCA2         string   `parquet:"cca2" json:"cca2"`
	CCA3         string   `parquet:"cca3" json:"cca3"`
	Region       string   `parquet:"region" json:"region"`
	Subregion    string   `parquet:"subregion" json:"subregion"`
	Population   int64    `parquet:"population" json:"population"`
	Lat          *float64 `parquet:"lat" json:"lat"`
	Lng          *float64 `parquet:"lng" json:"lng"`
	CurrencyCode string   `parquet:"currency_code" json:"currency_code"`
}

// EnrichedRate is a rate observation joined with its issuing countries.
// Country fields are empty when the currency matched no country.
type EnrichedRate struct {
	Date         string  `parquet:"date" json:"date"`
	CurrencyCode string  `parquet:"currency_code" json:"currency_code"`
	RateToBase   float64 `parquet:"rate_to_base" json:"rate_to_base"`
	Base         string  `parquet:"base" json:"base"`
	CCA3         string  `parquet:"cca3" json:"cca3"`
	CountryName  string  `parquet:"country_name" json:"country_name"`
	Region       string  `parquet:"region" json:"region"`
	Subregion    string  `parquet:"subregion" json:"subregion"`
}

// CountryRate is the presentation row shared by the gold views.
type CountryRate struct {
	Date         string  `parquet:"date" json:"date"`
	CountryName  string  `parquet:"country_name" json:"country_name"`
	Region       string  `parquet:"region" json:"region"`
	Subregion    string  `parquet:"subregion" json:"subregion"`
	CurrencyCode string  `parquet:"currency_code" json:"currency_code"`
	RateToBase   float64 `parquet:"rate_to_base" json:"rate_to_base"`
	Base         string  `parquet:"base" json:"base"`
	CCA3         string  `parquet:"cca3" json:"cca3"`
}
