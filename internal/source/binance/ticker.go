package binance

import (
	"context"
	"net/url"
	"strings"
	"time"

	"finboard/internal/snapshot"
)

// TickerPrice is the latest price of a pair.
type TickerPrice struct {
	Symbol string
	Price  float64
}

// TickerPrices returns the latest price of every listed pair.
func (c *Client) TickerPrices(ctx context.Context) ([]TickerPrice, error) {
	var raw []struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := c.getJSON(ctx, "/ticker/price", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]TickerPrice, 0, len(raw))
	for _, r := range raw {
		out = append(out, TickerPrice{Symbol: r.Symbol, Price: number(r.Price)})
	}
	return out, nil
}

// PriceLister is the part of Client PairsLoader needs.
type PriceLister interface {
	TickerPrices(ctx context.Context) ([]TickerPrice, error)
}

// PairsLoader lists the pairs quoted in quoteAsset ("USDT") as a
// snapshot loader: symbol -> "BASE/QUOTE".
func PairsLoader(c PriceLister, quoteAsset string) snapshot.Loader {
	quoteAsset = strings.ToUpper(quoteAsset)
	return snapshot.Loader{
		Name: "binance:pairs:" + quoteAsset,
		Load: func(ctx context.Context) (map[string]string, error) {
			prices, err := c.TickerPrices(ctx)
			if err != nil {
				return nil, err
			}
			out := make(map[string]string)
			for _, p := range prices {
				base, ok := strings.CutSuffix(p.Symbol, quoteAsset)
				if !ok || base == "" {
					continue
				}
				out[p.Symbol] = base + "/" + quoteAsset
			}
			return out, nil
		},
	}
}

// Ticker24h is a rolling 24 hour window summary.
type Ticker24h struct {
	Symbol             string
	LastPrice          float64
	PriceChange        float64
	PriceChangePercent float64
	PrevClosePrice     float64
	HighPrice          float64
	LowPrice           float64
	Volume             float64
	CloseTime          time.Time
}

// Ticker24h fetches the 24 hour statistics of symbol.
func (c *Client) Ticker24h(ctx context.Context, symbol string) (Ticker24h, error) {
	var raw struct {
		Symbol             string `json:"symbol"`
		LastPrice          string `json:"lastPrice"`
		PriceChange        string `json:"priceChange"`
		PriceChangePercent string `json:"priceChangePercent"`
		PrevClosePrice     string `json:"prevClosePrice"`
		HighPrice          string `json:"highPrice"`
		LowPrice           string `json:"lowPrice"`
		Volume             string `json:"volume"`
		CloseTime          int64  `json:"closeTime"`
	}
	if err := c.getJSON(ctx, "/ticker/24hr", url.Values{"symbol": {strings.ToUpper(symbol)}}, &raw); err != nil {
		return Ticker24h{}, err
	}
	t := Ticker24h{
		Symbol:             raw.Symbol,
		LastPrice:          number(raw.LastPrice),
		PriceChange:        number(raw.PriceChange),
		PriceChangePercent: number(raw.PriceChangePercent),
		PrevClosePrice:     number(raw.PrevClosePrice),
		HighPrice:          number(raw.HighPrice),
		LowPrice:           number(raw.LowPrice),
		Volume:             number(raw.Volume),
	}
	if raw.CloseTime > 0 {
		t.CloseTime = time.UnixMilli(raw.CloseTime).UTC()
	}
	return t, nil
}
