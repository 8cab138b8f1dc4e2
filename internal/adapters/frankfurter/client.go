package frankfurter

import (
	"context"
	"fmt"
	"fxetl/internal/adapters/httpclient"
	"fxetl/internal/domain"
	"fxetl/internal/rates"
	"net/url"
	"strings"
)

// DefaultBaseURL is the public frankfurter API root.
const DefaultBaseURL = "https://api.frankfurter.app"

// Client fetches rate timeseries from the free frankfurter API. No key is
// required, which makes it the fallback for the keyed providers.
type Client struct {
	http    *httpclient.Client
	baseURL string
}

func (c *Client) Name() string { return "frankfurter" }

// FetchTimeseries requests /{start}..{end} with "from"/"to" parameters and
// normalizes the date-keyed payload.
func (c *Client) FetchTimeseries(ctx context.Context, req domain.ProviderRequest) ([]domain.RateObservation, error) {
	endpoint := fmt.Sprintf("%s/%s..%s",
		c.baseURL,
		req.Start.Format(domain.DateLayout),
		req.End.Format(domain.DateLayout),
	)

	query := url.Values{"to": {strings.Join(req.Symbols, ",")}}
	if req.Base != "" {
		query.Set("from", req.Base)
	}

	body, err := c.http.GetJSONRetry(ctx, endpoint, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch frankfurter timeseries: %w", err)
	}
	return rates.Normalize(body, req.Base)
}

func New(client *httpclient.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: client, baseURL: strings.TrimRight(baseURL, "/")}
}
