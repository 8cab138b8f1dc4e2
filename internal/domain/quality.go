package domain

// CountriesQuality summarizes the cleaned country table.
type CountriesQuality struct {
	Rows           int
	NullsPerColumn map[string]int
	DuplicateCCA3  int
}

// RatesQuality summarizes the cleaned rate observation table.
// DateMin and DateMax are empty when the table has no rows.
type RatesQuality struct {
	Rows             int
	NullsPerColumn   map[string]int
	UniqueCurrencies int
	DateMin          string
	DateMax          string
}

// EnrichedQuality summarizes the rates x countries join.
// Unmatched counts rate rows whose currency matched no country.
type EnrichedQuality struct {
	Rows           int
	NullsPerColumn map[string]int
	DateMin        string
	DateMax        string
	Unmatched      int
}
