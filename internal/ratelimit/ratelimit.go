package ratelimit

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps an HTTPClient and gates every request through a token
// bucket. Waiting honours the request context.
type Client struct {
	HTTP    HTTPClient
	Limiter *rate.Limiter
}

// PerMinute builds a limiter allowing rpm requests per minute with the
// given burst. rpm <= 0 means unlimited.
func PerMinute(rpm, burst int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst)
}

// New wraps hc with a per-minute limiter.
func New(hc HTTPClient, rpm, burst int) *Client {
	return &Client{HTTP: hc, Limiter: PerMinute(rpm, burst)}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return c.HTTP.Do(req)
}
