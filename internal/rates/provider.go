package rates

import "strings"

// ProviderName enumerates the supported upstream providers.
type ProviderName string

const (
	// ProviderFree needs no API key and serves as the fallback for the
	// keyed providers.
	ProviderFree ProviderName = "free"
	// ProviderAPILayer is the apilayer exchangerates_data API.
	ProviderAPILayer ProviderName = "apilayer"
	// ProviderExchangerateHost is the exchangerate.host API.
	ProviderExchangerateHost ProviderName = "exchangerate_host"
)

// CanonicalProvider maps a configured provider name, including historical
// aliases, onto its canonical variant. An empty name means the free provider.
func CanonicalProvider(name string) (ProviderName, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "free", "frankfurter":
		return ProviderFree, true
	case "apilayer", "exchangeratesapi", "exchangerates_data":
		return ProviderAPILayer, true
	case "exchangerate_host", "exchangeratehost":
		return ProviderExchangerateHost, true
	}
	return "", false
}

var placeholderKeys = map[string]struct{}{
	"your_api_key_here": {},
	"changeme":          {},
}

// IsPlaceholderKey reports whether an API key is empty or one of the
// placeholder values that count as no key at all.
func IsPlaceholderKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return true
	}
	_, ok := placeholderKeys[key]
	return ok
}
