package httpclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cenkalti/backoff/v4"
)

// GetJSONRetry is GetJSON wrapped in exponential backoff. Only transient
// errors (timeouts, 429 and 5xx gateway statuses) are retried; anything
// else returns immediately. When the attempt budget is spent the last
// error is wrapped in a RetryExhaustedError.
func (c *Client) GetJSONRetry(ctx context.Context, rawURL string, query url.Values, header http.Header) ([]byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.policy.InitialBackoff
	bo.MaxInterval = c.policy.MaxBackoff
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	var body []byte
	attempts := 0
	op := func() error {
		attempts++
		b, err := c.GetJSON(ctx, rawURL, query, header)
		if err != nil {
			if Retryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		body = b
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.policy.MaxAttempts-1)), ctx))
	if err != nil {
		if Retryable(err) && attempts >= c.policy.MaxAttempts {
			return nil, &RetryExhaustedError{Attempts: attempts, Err: err}
		}
		return nil, err
	}
	return body, nil
}
