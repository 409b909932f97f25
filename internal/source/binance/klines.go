package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finboard/internal/series"
	"finboard/internal/source"
)

// Candle field names.
const (
	FieldOpen   = "Open"
	FieldHigh   = "High"
	FieldLow    = "Low"
	FieldClose  = "Close"
	FieldVolume = "Volume"
)

// Klines fetches the last limit candles of symbol at interval ("15m")
// as a series keyed by open time.
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) (series.Series, error) {
	params := url.Values{
		"symbol":   {strings.ToUpper(symbol)},
		"interval": {interval},
		"limit":    {strconv.Itoa(limit)},
	}
	var rows [][]json.RawMessage
	if err := c.getJSON(ctx, "/klines", params, &rows); err != nil {
		return series.Series{}, err
	}

	points := make([]series.Point, 0, len(rows))
	for i, row := range rows {
		p, err := candle(row)
		if err != nil {
			return series.Series{}, &source.DecodeError{Source: source.Binance, Err: fmt.Errorf("kline %d: %w", i, err)}
		}
		points = append(points, p)
	}
	return series.New(points), nil
}

// candle decodes [openTime, "open", "high", "low", "close", "volume", closeTime, ...].
func candle(row []json.RawMessage) (series.Point, error) {
	if len(row) < 6 {
		return series.Point{}, fmt.Errorf("want at least 6 columns, got %d", len(row))
	}
	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return series.Point{}, fmt.Errorf("open time: %w", err)
	}
	names := []string{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume}
	fields := make([]series.Field, 0, len(names))
	for j, name := range names {
		var s string
		// A non-string value is treated like a missing one.
		_ = json.Unmarshal(row[j+1], &s)
		fields = append(fields, series.Field{Name: name, Value: number(s)})
	}
	return series.NewPoint(time.UnixMilli(openTime).UTC(), fields...), nil
}
