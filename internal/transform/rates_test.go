package transform

import (
	"math"
	"testing"

	"fxetl/internal/domain"

	"github.com/stretchr/testify/require"
)

func obs(date, code string, rate float64, base string) domain.RateObservation {
	return domain.RateObservation{Date: date, CurrencyCode: code, RateToBase: rate, Base: base}
}

func TestCleanRates_EmptyInput(t *testing.T) {
	_, _, err := CleanRates(nil)
	require.ErrorIs(t, err, ErrNoRates)
}

func TestCleanRates_DropsInvalidRows(t *testing.T) {
	raw := []domain.RateObservation{
		obs("2024-01-02", "EUR", 0.91, "USD"),
		obs("2024-13-99", "JPY", 150, "USD"), // bad date
		obs("2024-01-01", "", 1.0, "USD"),    // no code
		obs("2024-01-01", "GBP", math.NaN(), "USD"),
		obs("2024-01-01", "CHF", math.Inf(1), "USD"),
		obs("2024-01-01", " eur ", 0.9, ""), // kept, code normalized, missing base tolerated
	}

	rows, quality, err := CleanRates(raw)
	require.NoError(t, err)
	require.Equal(t, []domain.RateObservation{
		obs("2024-01-01", "EUR", 0.9, ""),
		obs("2024-01-02", "EUR", 0.91, "USD"),
	}, rows)

	require.Equal(t, 2, quality.Rows)
	require.Equal(t, 1, quality.UniqueCurrencies)
	require.Equal(t, 1, quality.NullsPerColumn["base"])
	require.Equal(t, "2024-01-01", quality.DateMin)
	require.Equal(t, "2024-01-02", quality.DateMax)
}

func TestCleanRates_SortsByDateThenCode(t *testing.T) {
	raw := []domain.RateObservation{
		obs("2024-01-02", "JPY", 158, "EUR"),
		obs("2024-01-01", "USD", 1.08, "EUR"),
		obs("2024-01-01", "JPY", 157, "EUR"),
		obs("2024-01-02", "USD", 1.09, "EUR"),
	}

	rows, quality, err := CleanRates(raw)
	require.NoError(t, err)
	require.Equal(t, []domain.RateObservation{
		obs("2024-01-01", "JPY", 157, "EUR"),
		obs("2024-01-01", "USD", 1.08, "EUR"),
		obs("2024-01-02", "JPY", 158, "EUR"),
		obs("2024-01-02", "USD", 1.09, "EUR"),
	}, rows)
	require.Equal(t, 2, quality.UniqueCurrencies)
}

func TestCleanRates_AllRowsDroppedIsNotAnError(t *testing.T) {
	rows, quality, err := CleanRates([]domain.RateObservation{obs("garbage", "EUR", 1, "USD")})
	require.NoError(t, err)
	require.Empty(t, rows)
	require.Equal(t, 0, quality.Rows)
	require.Equal(t, "", quality.DateMin)
}
