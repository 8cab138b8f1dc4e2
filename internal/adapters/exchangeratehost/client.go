package exchangeratehost

import (
	"context"
	"fmt"
	"fxetl/internal/adapters/httpclient"
	"fxetl/internal/domain"
	"fxetl/internal/rates"
	"net/url"
	"strings"
)

// DefaultBaseURL is the public exchangerate.host API root.
const DefaultBaseURL = "https://api.exchangerate.host"

// Client fetches rate timeseries from exchangerate.host. The API key travels
// in the "access_key" query parameter; the responses use the source-prefixed
// "quotes" shape.
type Client struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
}

func (c *Client) Name() string { return "exchangerate_host" }

func (c *Client) FetchTimeseries(ctx context.Context, req domain.ProviderRequest) ([]domain.RateObservation, error) {
	query := url.Values{
		"start_date": {req.Start.Format(domain.DateLayout)},
		"end_date":   {req.End.Format(domain.DateLayout)},
		"currencies": {strings.Join(req.Symbols, ",")},
		"access_key": {c.apiKey},
	}
	if req.Base != "" {
		query.Set("source", req.Base)
	}

	body, err := c.http.GetJSONRetry(ctx, c.baseURL+"/timeframe", query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchangerate.host timeseries: %w", err)
	}
	return rates.Normalize(body, req.Base)
}

func New(client *httpclient.Client, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: client, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}
