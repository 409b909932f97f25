package finnhub

import (
	"context"
	"net/url"
	"strings"
	"time"

	"finboard/internal/aggregate"
)

// SearchResult is one match of a symbol lookup.
type SearchResult struct {
	Description   string `json:"description"`
	DisplaySymbol string `json:"displaySymbol"`
	Symbol        string `json:"symbol"`
	Type          string `json:"type"`
}

type searchResponse struct {
	Count  int            `json:"count"`
	Result []SearchResult `json:"result"`
}

// Search looks up symbols matching q.
func (c *Client) Search(ctx context.Context, q string) ([]SearchResult, error) {
	var res searchResponse
	if err := c.getJSON(ctx, "/search", url.Values{"q": {q}}, &res); err != nil {
		return nil, err
	}
	return res.Result, nil
}

// Quote is a real-time quote. Change and ChangePct are derived from
// Current and PrevClose.
type Quote struct {
	Symbol    string
	Current   float64
	PrevClose float64
	High      float64
	Low       float64
	Open      float64
	Change    float64
	ChangePct float64
	Time      time.Time
}

// Valid reports whether the quote carries data. Finnhub answers unknown
// symbols with an all-zero quote.
func (q Quote) Valid() bool { return q.Current != 0 }

type quoteResponse struct {
	C  float64 `json:"c"`
	PC float64 `json:"pc"`
	H  float64 `json:"h"`
	L  float64 `json:"l"`
	O  float64 `json:"o"`
	T  int64   `json:"t"`
}

// Quote fetches the latest quote of symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (Quote, error) {
	var res quoteResponse
	if err := c.getJSON(ctx, "/quote", url.Values{"symbol": {symbol}}, &res); err != nil {
		return Quote{}, err
	}
	q := Quote{
		Symbol:    symbol,
		Current:   res.C,
		PrevClose: res.PC,
		High:      res.H,
		Low:       res.L,
		Open:      res.O,
	}
	if res.T > 0 {
		q.Time = time.Unix(res.T, 0).UTC()
	}
	q.Change, q.ChangePct = aggregate.Change(q.Current, q.PrevClose)
	return q, nil
}

// BISTSymbol maps an Istanbul exchange ticker such as "THYAO.IS" to the
// form Finnhub expects, "BIST:THYAO".
func BISTSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimPrefix(s, "BIST:")
	return "BIST:" + strings.TrimSuffix(s, ".IS")
}

// IsBIST reports whether symbol names an Istanbul listing.
func IsBIST(symbol string) bool {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.HasSuffix(s, ".IS") || strings.HasPrefix(s, "BIST:")
}

// QuoteBIST fetches an Istanbul listing through the BIST: prefix.
func (c *Client) QuoteBIST(ctx context.Context, symbol string) (Quote, error) {
	return c.Quote(ctx, BISTSymbol(symbol))
}
