package domain

import "time"

// DateLayout is the calendar-day format used across all layers.
const DateLayout = "2006-01-02"

// RateObservation is one exchange rate quote for one calendar day.
// RateToBase is the amount of CurrencyCode one unit of Base buys,
// e.g. Base "USD", CurrencyCode "EUR", RateToBase 0.91 means 1 USD = 0.91 EUR.
type RateObservation struct {
	Date         string  `parquet:"date" json:"date"`
	CurrencyCode string  `parquet:"currency_code" json:"currency_code"`
	RateToBase   float64 `parquet:"rate_to_base" json:"rate_to_base"`
	Base         string  `parquet:"base" json:"base"`
}

// ProviderRequest describes one timeseries fetch against a rate provider.
// Credentials and timeouts belong to the provider, not the request.
type ProviderRequest struct {
	Symbols []string
	Start   time.Time
	End     time.Time
	Base    string
}
