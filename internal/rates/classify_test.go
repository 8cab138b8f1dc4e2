package rates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"fxetl/internal/adapters/httpclient"

	"github.com/stretchr/testify/require"
)

func TestClassify_AuthStatuses(t *testing.T) {
	require.Equal(t, FailureAuth, Classify(&httpclient.StatusError{StatusCode: 401}))
	require.Equal(t, FailureAuth, Classify(&httpclient.StatusError{StatusCode: 403}))
}

func TestClassify_AuthThroughWrapping(t *testing.T) {
	err := fmt.Errorf("failed to fetch timeseries: %w", &httpclient.StatusError{StatusCode: 401, Snippet: "invalid key"})
	require.Equal(t, FailureAuth, Classify(err))
}

func TestClassify_RestrictionFromProviderError(t *testing.T) {
	err := &ProviderError{Detail: `{"code": 105, "type": "base_currency_access_restricted"}`}
	require.Equal(t, FailureRestriction, Classify(err))
}

func TestClassify_RestrictionFromStatusSnippet(t *testing.T) {
	err := &httpclient.StatusError{
		StatusCode: 400,
		Snippet:    `{"error": {"message": "the requested base currency is restricted on your plan"}}`,
	}
	require.Equal(t, FailureRestriction, Classify(err))
}

func TestClassify_AuthWinsOverRestrictionWording(t *testing.T) {
	err := &httpclient.StatusError{StatusCode: 403, Snippet: "base currency restricted"}
	require.Equal(t, FailureAuth, Classify(err))
}

func TestClassify_Generic(t *testing.T) {
	cases := []error{
		nil,
		errors.New("connection reset"),
		context.DeadlineExceeded,
		&httpclient.StatusError{StatusCode: 500},
		&httpclient.RetryExhaustedError{Attempts: 5, Err: errors.New("still down")},
		errors.New("restricted endpoint"), // "restrict" without "base"
		errors.New("база недоступна"),
	}
	for _, err := range cases {
		require.Equal(t, FailureGeneric, Classify(err), "err: %v", err)
	}
}

func TestCanonicalProvider_Aliases(t *testing.T) {
	cases := map[string]ProviderName{
		"":                   ProviderFree,
		"free":               ProviderFree,
		"frankfurter":        ProviderFree,
		" Frankfurter ":      ProviderFree,
		"apilayer":           ProviderAPILayer,
		"exchangeratesapi":   ProviderAPILayer,
		"exchangerates_data": ProviderAPILayer,
		"exchangerate_host":  ProviderExchangerateHost,
		"ExchangerateHost":   ProviderExchangerateHost,
	}
	for name, want := range cases {
		got, ok := CanonicalProvider(name)
		require.True(t, ok, "name: %q", name)
		require.Equal(t, want, got, "name: %q", name)
	}
}

func TestCanonicalProvider_Unknown(t *testing.T) {
	_, ok := CanonicalProvider("fixer")
	require.False(t, ok)
}

func TestIsPlaceholderKey(t *testing.T) {
	require.True(t, IsPlaceholderKey(""))
	require.True(t, IsPlaceholderKey("   "))
	require.True(t, IsPlaceholderKey("your_api_key_here"))
	require.True(t, IsPlaceholderKey("YOUR_API_KEY_HERE"))
	require.True(t, IsPlaceholderKey("changeme"))
	require.False(t, IsPlaceholderKey("sk-live-0d9f8a7b"))
}
