package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	infraconfig "marketdata-collector/internal/infrastructure/config"

	"github.com/cenkalti/backoff/v4"
	json "github.com/goccy/go-json"
)

// StatusError is a non-2xx upstream answer.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("status %d", e.Code) }

type Client struct {
	HTTP    *http.Client
	Token   string
	Headers map[string]string
	// MaxElapsed bounds the whole retry sequence; zero disables retries.
	MaxElapsed time.Duration
}

// New returns a client whose single requests time out after timeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = infraconfig.DefaultRequestTimeout
	}
	return &Client{
		HTTP:       &http.Client{Timeout: timeout},
		Headers:    map[string]string{"Accept": "application/json"},
		MaxElapsed: infraconfig.DefaultRetryMaxElapsed,
	}
}

// GetJSON issues a GET to base+path with query q and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, base, path string, q url.Values, out any) error {
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	u.Path = path
	u.RawQuery = q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.DoJSON(ctx, req, out)
}

// DoJSON retries network failures and 5xx answers with exponential backoff.
// Other statuses and undecodable bodies fail at once.
func (c *Client) DoJSON(ctx context.Context, req *http.Request, out any) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	if c.HTTP == nil {
		c.HTTP = http.DefaultClient
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 2 * time.Second
	exp.MaxElapsedTime = c.MaxElapsed
	var policy backoff.BackOff = exp
	if c.MaxElapsed <= 0 {
		policy = &backoff.StopBackOff{}
	}

	op := func() error {
		resp, err := c.HTTP.Do(req.WithContext(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return &StatusError{Code: resp.StatusCode}
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(&StatusError{Code: resp.StatusCode})
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}
	err := backoff.Retry(op, backoff.WithContext(policy, ctx))
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}
