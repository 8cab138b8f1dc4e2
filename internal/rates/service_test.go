package rates

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"testing"
	"time"

	"fxetl/internal/adapters/httpclient"
	"fxetl/internal/domain"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProvider struct {
	mock.Mock
	name string
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) FetchTimeseries(ctx context.Context, req domain.ProviderRequest) ([]domain.RateObservation, error) {
	args := m.Called(ctx, req)
	rows, _ := args.Get(0).([]domain.RateObservation)
	return rows, args.Error(1)
}

func withBase(base string) any {
	return mock.MatchedBy(func(req domain.ProviderRequest) bool { return req.Base == base })
}

func obs(date, code string, rate float64, base string) domain.RateObservation {
	return domain.RateObservation{Date: date, CurrencyCode: code, RateToBase: rate, Base: base}
}

var (
	testStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
)

// --- input validation ---

func TestFetchTimeseries_EmptySymbols(t *testing.T) {
	fallback := &MockProvider{name: "free"}
	svc := NewService(nil, fallback, Config{})

	rows, err := svc.FetchTimeseries(context.Background(), nil, testStart, testEnd, "USD")

	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
	fallback.AssertNotCalled(t, "FetchTimeseries", mock.Anything, mock.Anything)
}

func TestFetchTimeseries_AllSymbolsInvalid(t *testing.T) {
	fallback := &MockProvider{name: "free"}
	svc := NewService(nil, fallback, Config{})

	_, err := svc.FetchTimeseries(context.Background(), []string{"EURO", "jp", " "}, testStart, testEnd, "USD")

	require.ErrorIs(t, err, domain.ErrInvalidSymbolSet)
	fallback.AssertNotCalled(t, "FetchTimeseries", mock.Anything, mock.Anything)
}

func TestFetchTimeseries_ReversedWindow(t *testing.T) {
	fallback := &MockProvider{name: "free"}
	svc := NewService(nil, fallback, Config{})

	rows, err := svc.FetchTimeseries(context.Background(), []string{"EUR"}, testEnd, testStart, "USD")

	require.NoError(t, err)
	require.Empty(t, rows)
	fallback.AssertNotCalled(t, "FetchTimeseries", mock.Anything, mock.Anything)
}

func TestFetchTimeseries_WindowTooLarge_NoCalls(t *testing.T) {
	fallback := &MockProvider{name: "free"}
	svc := NewService(nil, fallback, Config{})

	end := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	_, err := svc.FetchTimeseries(context.Background(), []string{"EUR"}, testStart, end, "USD")

	require.ErrorIs(t, err, domain.ErrWindowTooLarge)
	fallback.AssertNotCalled(t, "FetchTimeseries", mock.Anything, mock.Anything)
}

func TestFetchTimeseries_WindowAtLimit(t *testing.T) {
	fallback := &MockProvider{name: "free"}
	svc := NewService(nil, fallback, Config{})

	// 365 days inclusive is still allowed
	end := time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC)
	fallback.On("FetchTimeseries", mock.Anything, mock.Anything).
		Return([]domain.RateObservation{obs("2024-01-01", "EUR", 0.9, "USD")}, nil).Once()

	rows, err := svc.FetchTimeseries(context.Background(), []string{"EUR"}, testStart, end, "USD")

	require.NoError(t, err)
	require.Len(t, rows, 1)
	fallback.AssertExpectations(t)
}

func TestFetchTimeseries_SanitizesSymbols(t *testing.T) {
	fallback := &MockProvider{name: "free"}
	svc := NewService(nil, fallback, Config{})

	fallback.On("FetchTimeseries", mock.Anything, mock.MatchedBy(func(req domain.ProviderRequest) bool {
		return slices.Equal(req.Symbols, []string{"EUR", "USD"})
	})).Return([]domain.RateObservation{obs("2024-01-01", "EUR", 0.9, "USD")}, nil).Once()

	_, err := svc.FetchTimeseries(context.Background(), []string{" eur", "EUR", "usd ", "GBPX", "jp", ""}, testStart, testEnd, "usd")

	require.NoError(t, err)
	fallback.AssertExpectations(t)
}

// --- fallback tree ---

func TestFetchTimeseries_PrimarySuccess(t *testing.T) {
	primary := &MockProvider{name: "apilayer"}
	fallback := &MockProvider{name: "free"}
	svc := NewService(primary, fallback, Config{})

	want := []domain.RateObservation{obs("2024-01-01", "EUR", 0.9, "USD")}
	primary.On("FetchTimeseries", mock.Anything, withBase("USD")).Return(want, nil).Once()

	rows, err := svc.FetchTimeseries(context.Background(), []string{"EUR"}, testStart, testEnd, "USD")

	require.NoError(t, err)
	require.Equal(t, want, rows)
	primary.AssertExpectations(t)
	fallback.AssertNotCalled(t, "FetchTimeseries", mock.Anything, mock.Anything)
}

func TestFetchTimeseries_AuthFallsBackWithForcedBase(t *testing.T) {
	primary := &MockProvider{name: "apilayer"}
	fallback := &MockProvider{name: "free"}
	svc := NewService(primary, fallback, Config{})

	primary.On("FetchTimeseries", mock.Anything, withBase("USD")).
		Return(nil, &httpclient.StatusError{StatusCode: http.StatusUnauthorized}).Once()
	fallback.On("FetchTimeseries", mock.Anything, withBase("EUR")).
		Return([]domain.RateObservation{obs("2024-01-01", "USD", 1.09, "EUR")}, nil).Once()

	rows, err := svc.FetchTimeseries(context.Background(), []string{"USD"}, testStart, testEnd, "USD")

	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "EUR", rows[0].Base)
	primary.AssertExpectations(t)
	fallback.AssertExpectations(t)
}

func TestFetchTimeseries_RestrictionRetriesSameProviderWithForcedBase(t *testing.T) {
	primary := &MockProvider{name: "apilayer"}
	fallback := &MockProvider{name: "free"}
	svc := NewService(primary, fallback, Config{})

	primary.On("FetchTimeseries", mock.Anything, withBase("USD")).
		Return(nil, &ProviderError{Detail: "base_currency_access_restricted (code 105)"}).Once()
	primary.On("FetchTimeseries", mock.Anything, withBase("EUR")).
		Return([]domain.RateObservation{obs("2024-01-01", "USD", 1.09, "EUR")}, nil).Once()

	rows, err := svc.FetchTimeseries(context.Background(), []string{"USD"}, testStart, testEnd, "USD")

	require.NoError(t, err)
	require.Equal(t, "EUR", rows[0].Base)
	primary.AssertExpectations(t)
	fallback.AssertNotCalled(t, "FetchTimeseries", mock.Anything, mock.Anything)
}

func TestFetchTimeseries_RestrictionThenFallback(t *testing.T) {
	primary := &MockProvider{name: "apilayer"}
	fallback := &MockProvider{name: "free"}
	svc := NewService(primary, fallback, Config{})

	primary.On("FetchTimeseries", mock.Anything, withBase("USD")).
		Return(nil, &ProviderError{Detail: "base_currency_access_restricted"}).Once()
	primary.On("FetchTimeseries", mock.Anything, withBase("EUR")).
		Return(nil, errors.New("still failing")).Once()
	fallback.On("FetchTimeseries", mock.Anything, withBase("EUR")).
		Return([]domain.RateObservation{obs("2024-01-01", "USD", 1.09, "EUR")}, nil).Once()

	rows, err := svc.FetchTimeseries(context.Background(), []string{"USD"}, testStart, testEnd, "USD")

	require.NoError(t, err)
	require.Equal(t, "EUR", rows[0].Base)
	primary.AssertExpectations(t)
	fallback.AssertExpectations(t)
}

func TestFetchTimeseries_GenericFailureKeepsRequestedBase(t *testing.T) {
	primary := &MockProvider{name: "apilayer"}
	fallback := &MockProvider{name: "free"}
	svc := NewService(primary, fallback, Config{})

	primary.On("FetchTimeseries", mock.Anything, withBase("USD")).
		Return(nil, &httpclient.RetryExhaustedError{Attempts: 5, Err: errors.New("gateway down")}).Once()
	fallback.On("FetchTimeseries", mock.Anything, withBase("USD")).
		Return([]domain.RateObservation{obs("2024-01-01", "EUR", 0.9, "USD")}, nil).Once()

	rows, err := svc.FetchTimeseries(context.Background(), []string{"EUR"}, testStart, testEnd, "USD")

	require.NoError(t, err)
	require.Equal(t, "USD", rows[0].Base)
	primary.AssertExpectations(t)
	fallback.AssertExpectations(t)
}

func TestFetchTimeseries_FallbackFailurePropagates(t *testing.T) {
	primary := &MockProvider{name: "apilayer"}
	fallback := &MockProvider{name: "free"}
	svc := NewService(primary, fallback, Config{})

	wantErr := errors.New("fallback exploded")
	primary.On("FetchTimeseries", mock.Anything, withBase("USD")).
		Return(nil, &httpclient.StatusError{StatusCode: http.StatusForbidden}).Once()
	fallback.On("FetchTimeseries", mock.Anything, withBase("EUR")).Return(nil, wantErr).Once()

	_, err := svc.FetchTimeseries(context.Background(), []string{"EUR"}, testStart, testEnd, "USD")

	require.ErrorIs(t, err, wantErr)
	require.ErrorContains(t, err, "failed to fetch batch 1 of 1")
	primary.AssertExpectations(t)
	fallback.AssertExpectations(t)
}

func TestFetchTimeseries_NoPrimaryUsesRequestedBase(t *testing.T) {
	fallback := &MockProvider{name: "free"}
	svc := NewService(nil, fallback, Config{})

	fallback.On("FetchTimeseries", mock.Anything, withBase("USD")).
		Return([]domain.RateObservation{obs("2024-01-01", "EUR", 0.9, "USD")}, nil).Once()

	_, err := svc.FetchTimeseries(context.Background(), []string{"EUR"}, testStart, testEnd, "USD")

	require.NoError(t, err)
	fallback.AssertExpectations(t)
}

func TestFetchTimeseries_MissingKeyForcesFallbackBase(t *testing.T) {
	fallback := &MockProvider{name: "free"}
	svc := NewService(nil, fallback, Config{PrimaryKeyMissing: true})

	fallback.On("FetchTimeseries", mock.Anything, withBase("EUR")).
		Return([]domain.RateObservation{obs("2024-01-01", "USD", 1.09, "EUR")}, nil).Once()

	rows, err := svc.FetchTimeseries(context.Background(), []string{"USD"}, testStart, testEnd, "USD")

	require.NoError(t, err)
	require.Equal(t, "EUR", rows[0].Base)
	fallback.AssertExpectations(t)
}

// --- batching ---

func TestFetchTimeseries_SplitsIntoBatches(t *testing.T) {
	fallback := &MockProvider{name: "free"}
	svc := NewService(nil, fallback, Config{})

	symbols := make([]string, 0, 45)
	for i := 0; i < 45; i++ {
		symbols = append(symbols, fmt.Sprintf("C%02d", i))
	}

	batchWith := func(first string, size int) any {
		return mock.MatchedBy(func(req domain.ProviderRequest) bool {
			return len(req.Symbols) == size && req.Symbols[0] == first
		})
	}
	fallback.On("FetchTimeseries", mock.Anything, batchWith("C00", 20)).
		Return([]domain.RateObservation{obs("2024-01-01", "C00", 1, "USD")}, nil).Once()
	fallback.On("FetchTimeseries", mock.Anything, batchWith("C20", 20)).
		Return([]domain.RateObservation{obs("2024-01-01", "C20", 2, "USD")}, nil).Once()
	fallback.On("FetchTimeseries", mock.Anything, batchWith("C40", 5)).
		Return([]domain.RateObservation{obs("2024-01-01", "C40", 3, "USD")}, nil).Once()

	rows, err := svc.FetchTimeseries(context.Background(), symbols, testStart, testEnd, "USD")

	require.NoError(t, err)
	// concatenation keeps batch order
	require.Equal(t, []domain.RateObservation{
		obs("2024-01-01", "C00", 1, "USD"),
		obs("2024-01-01", "C20", 2, "USD"),
		obs("2024-01-01", "C40", 3, "USD"),
	}, rows)
	fallback.AssertExpectations(t)
}

func TestFetchTimeseries_BatchFailureAborts(t *testing.T) {
	fallback := &MockProvider{name: "free"}
	svc := NewService(nil, fallback, Config{BatchSize: 2})

	wantErr := errors.New("provider down")
	fallback.On("FetchTimeseries", mock.Anything, mock.MatchedBy(func(req domain.ProviderRequest) bool {
		return req.Symbols[0] == "AAA"
	})).Return([]domain.RateObservation{obs("2024-01-01", "AAA", 1, "USD")}, nil).Once()
	fallback.On("FetchTimeseries", mock.Anything, mock.MatchedBy(func(req domain.ProviderRequest) bool {
		return req.Symbols[0] == "CCC"
	})).Return(nil, wantErr).Once()

	_, err := svc.FetchTimeseries(context.Background(), []string{"AAA", "BBB", "CCC"}, testStart, testEnd, "USD")

	require.ErrorIs(t, err, wantErr)
	require.ErrorContains(t, err, "failed to fetch batch 2 of 2")
	fallback.AssertExpectations(t)
}

// --- helpers ---

func TestSanitizeSymbols(t *testing.T) {
	got := SanitizeSymbols([]string{" eur", "USD", "usd", "GBPX", "jp", "", "JPY "})
	require.Equal(t, []string{"EUR", "JPY", "USD"}, got)
}

func TestChunkSymbols(t *testing.T) {
	symbols := []string{"AAA", "BBB", "CCC", "DDD", "EEE"}

	chunks := chunkSymbols(symbols, 2)
	require.Equal(t, [][]string{{"AAA", "BBB"}, {"CCC", "DDD"}, {"EEE"}}, chunks)

	require.Equal(t, [][]string{{"AAA", "BBB", "CCC", "DDD", "EEE"}}, chunkSymbols(symbols, 10))
	require.Empty(t, chunkSymbols(nil, 3))
}
