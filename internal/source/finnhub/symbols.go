package finnhub

import (
	"context"
	"net/url"
)

// StockSymbol is an entry of an exchange's symbol listing.
type StockSymbol struct {
	Currency      string `json:"currency"`
	Description   string `json:"description"`
	DisplaySymbol string `json:"displaySymbol"`
	FIGI          string `json:"figi"`
	MIC           string `json:"mic"`
	Symbol        string `json:"symbol"`
	Type          string `json:"type"`
}

// StockSymbols lists every symbol of exchange ("US" for all US venues).
func (c *Client) StockSymbols(ctx context.Context, exchange string) ([]StockSymbol, error) {
	var res []StockSymbol
	if err := c.getJSON(ctx, "/stock/symbol", url.Values{"exchange": {exchange}}, &res); err != nil {
		return nil, err
	}
	return res, nil
}
