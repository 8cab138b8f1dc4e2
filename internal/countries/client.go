package countries

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"fxetl/internal/adapters/httpclient"
	"fxetl/internal/domain"
	"net/url"
	"strings"
)

// DefaultBaseURL is the public restcountries API root.
const DefaultBaseURL = "https://restcountries.com/v3.1"

// requestedFields keeps the payload small; everything else is ignored anyway.
const requestedFields = "name,cca2,cca3,currencies,region,subregion,population,latlng"

// Client fetches the country reference dataset. One unretried GET per run,
// the dataset is small and the endpoint is stable.
type Client struct {
	http    *httpclient.Client
	baseURL string
}

// countryPayload mirrors the upstream item. Currencies stays raw because its
// key order matters and a map would lose it.
type countryPayload struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	CCA2       string          `json:"cca2"`
	CCA3       string          `json:"cca3"`
	Region     string          `json:"region"`
	Subregion  string          `json:"subregion"`
	Population int64           `json:"population"`
	LatLng     []float64       `json:"latlng"`
	Currencies json.RawMessage `json:"currencies"`
}

func (c *Client) FetchAll(ctx context.Context) ([]domain.Country, error) {
	query := url.Values{"fields": {requestedFields}}

	body, err := c.http.GetJSON(ctx, c.baseURL+"/all", query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch countries: %w", err)
	}

	var payload []countryPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode countries payload: %w", err)
	}

	out := make([]domain.Country, 0, len(payload))
	for _, p := range payload {
		currencies, err := parseCurrencies(p.Currencies)
		if err != nil {
			return nil, fmt.Errorf("failed to parse currencies for %q: %w", p.CCA3, err)
		}
		country := domain.Country{
			Name:       p.Name.Common,
			CCA2:       p.CCA2,
			CCA3:       p.CCA3,
			Region:     p.Region,
			Subregion:  p.Subregion,
			Population: p.Population,
			Currencies: currencies,
		}
		if len(p.LatLng) == 2 {
			lat, lng := p.LatLng[0], p.LatLng[1]
			country.Lat, country.Lng = &lat, &lng
		}
		out = append(out, country)
	}
	return out, nil
}

// parseCurrencies walks the currencies object with a token decoder so the
// declaration order survives; the first currency is the country's primary one.
func parseCurrencies(raw json.RawMessage) ([]domain.Currency, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("currencies is not an object")
	}

	var out []domain.Currency
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		code, _ := keyTok.(string)

		var detail struct {
			Name   string `json:"name"`
			Symbol string `json:"symbol"`
		}
		if err := dec.Decode(&detail); err != nil {
			return nil, err
		}
		out = append(out, domain.Currency{
			Code:   strings.ToUpper(strings.TrimSpace(code)),
			Name:   detail.Name,
			Symbol: detail.Symbol,
		})
	}
	return out, nil
}

func New(client *httpclient.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: client, baseURL: strings.TrimRight(baseURL, "/")}
}
