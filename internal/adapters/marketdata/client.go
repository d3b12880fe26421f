package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"sola/internal/adapters/config"
	"sola/pkg/errors"
	"sola/pkg/logger"
)

// Client talks to the market data APIs used by token and NFT tools.
// Token data comes from a Birdeye-compatible API, NFT data from a
// Magic Eden-compatible API.
type Client struct {
	baseURL    string
	nftBaseURL string
	apiKey     string
	http       *http.Client
	log        *logger.Logger
}

// NewClient creates a new market data client
func NewClient(cfg config.MarketDataConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		nftBaseURL: cfg.NFTBaseURL,
		apiKey:     cfg.APIKey,
		http:       &http.Client{Timeout: cfg.RequestTimeout},
		log:        logger.Get().With("component", "market_data"),
	}
}

// get performs a GET request against a base URL and decodes the JSON response
func (c *Client) get(ctx context.Context, base string, path string, query url.Values, dest interface{}) error {
	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrExternal, "GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.Wrapf(errors.ErrNotFound, "GET %s", path)
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.Wrapf(errors.ErrRateLimitExceeded, "GET %s", path)
	case resp.StatusCode != http.StatusOK:
		return errors.Wrapf(errors.ErrExternal, "GET %s: http %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.ErrExternal, err.Error())
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return errors.Wrapf(errors.ErrExternal, "GET %s: malformed response: %v", path, err)
	}
	return nil
}

func (c *Client) String() string {
	return fmt.Sprintf("marketdata.Client(%s)", c.baseURL)
}
