package tcmb

import (
	"net/http"
)

// DefaultBaseURL serves today.xml and the YYYYMM/DDMMYYYY.xml archive.
const DefaultBaseURL = "https://www.tcmb.gov.tr/kurlar"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=tcmb_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client reads the central bank's daily exchange rate bulletins.
type Client struct {
	// baseURL is the bulletin root, without a trailing slash.
	baseURL string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
}

// Option is a configuration option for the Client.
type Option func(*Client)

// WithBaseURL sets the bulletin root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader adds headers sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewClient creates a bulletin client.
func NewClient(options ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(c)
	}
	return c
}
