package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"

	"finboard/internal/source"
)

// DefaultBaseURL is the REST API root.
const DefaultBaseURL = "https://finnhub.io/api/v1"

// KeyEnv names the variable the API key is read from.
const KeyEnv = "FINNHUB_API_KEY"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=finnhub_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the Finnhub API.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query carries the token and is sent with each request.
	query url.Values
}

// Option is a configuration option for the Finnhub client.
type Option func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewClient creates a Finnhub client. An empty key is accepted; every
// call then fails with a *source.ConfigurationError.
func NewClient(key string, options ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	if key != "" {
		// https://finnhub.io/docs/api/authentication
		c.query.Set("token", key)
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Configured reports whether an API key was supplied.
func (c *Client) Configured() bool { return c.query.Get("token") != "" }

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if !c.Configured() {
		return &source.ConfigurationError{Feature: "finnhub", Key: KeyEnv}
	}

	query := maps.Clone(c.query)
	for k, vs := range params {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &source.TransportError{Op: "GET", URL: endpoint, Err: err}
	}
	defer res.Body.Close()

	// endpoint, not req.URL: the token stays out of error messages.
	if res.StatusCode != http.StatusOK {
		return source.StatusError("GET", endpoint, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &source.DecodeError{Source: source.Finnhub, Err: err}
	}
	return nil
}
