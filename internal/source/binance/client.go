// Package binance reads public spot market data. No key is required.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finboard/internal/source"
)

// DefaultBaseURL is the market-data-only API root.
const DefaultBaseURL = "https://data-api.binance.vision/api/v3"

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a Binance market data client.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	header     http.Header
}

// Option configures the Client.
type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

func NewClient(options ...Option) *Client {
	c := &Client{baseURL: DefaultBaseURL, httpClient: http.DefaultClient, header: http.Header{}}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	u := endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &source.TransportError{Op: "GET", URL: endpoint, Err: err}
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
	case res.StatusCode == http.StatusBadRequest:
		// Binance answers an unknown symbol with 400 {"code":-1121}.
		var apiErr struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}
		_ = json.NewDecoder(res.Body).Decode(&apiErr)
		if apiErr.Code == -1121 {
			return fmt.Errorf("GET %s: %s: %w", endpoint, apiErr.Msg, source.ErrNotFound)
		}
		return source.StatusError("GET", endpoint, res.StatusCode)
	default:
		return source.StatusError("GET", endpoint, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &source.DecodeError{Source: source.Binance, Err: err}
	}
	return nil
}

// number parses Binance's string-encoded decimals; empty or malformed
// values read as 0.
func number(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
