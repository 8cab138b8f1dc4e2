package apilayer

import (
	"context"
	"fmt"
	"fxetl/internal/adapters/httpclient"
	"fxetl/internal/domain"
	"fxetl/internal/rates"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the exchangerates_data product root on apilayer.
const DefaultBaseURL = "https://api.apilayer.com/exchangerates_data"

// Client fetches rate timeseries from apilayer. The API key travels in the
// "apikey" request header.
type Client struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
}

func (c *Client) Name() string { return "apilayer" }

func (c *Client) FetchTimeseries(ctx context.Context, req domain.ProviderRequest) ([]domain.RateObservation, error) {
	query := url.Values{
		"start_date": {req.Start.Format(domain.DateLayout)},
		"end_date":   {req.End.Format(domain.DateLayout)},
		"symbols":    {strings.Join(req.Symbols, ",")},
	}
	if req.Base != "" {
		query.Set("base", req.Base)
	}

	header := http.Header{}
	header.Set("apikey", c.apiKey)

	body, err := c.http.GetJSONRetry(ctx, c.baseURL+"/timeseries", query, header)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch apilayer timeseries: %w", err)
	}
	return rates.Normalize(body, req.Base)
}

func New(client *httpclient.Client, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: client, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}
