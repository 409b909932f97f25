package binance_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finboard/internal/snapshot"
	"finboard/internal/source"
	binance "finboard/internal/source/binance"
)

func newServer(t *testing.T, routes map[string]http.HandlerFunc) *binance.Client {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range routes {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return binance.NewClient(binance.WithBaseURL(srv.URL+"/api/v3/"), binance.WithHTTPClient(srv.Client()))
}

func TestTickerPricesAndPairsLoader(t *testing.T) {
	t.Parallel()

	// Arrange
	var calls int
	client := newServer(t, map[string]http.HandlerFunc{
		"/api/v3/ticker/price": func(w http.ResponseWriter, r *http.Request) {
			calls++
			_, _ = w.Write([]byte(`[
				{"symbol":"ETHBTC","price":"0.02400000"},
				{"symbol":"BTCUSDT","price":"97000.01000000"},
				{"symbol":"ETHUSDT","price":"3400.5"},
				{"symbol":"USDT","price":"1"}
			]`))
		},
	})

	// Act
	prices, err := client.TickerPrices(t.Context())
	require.NoError(t, err)
	snap, err := snapshot.New().GetOrRefresh(t.Context(), binance.PairsLoader(client, "usdt"), time.Hour)

	// Assert
	require.NoError(t, err)
	require.Len(t, prices, 4)
	require.Equal(t, 97000.01, prices[1].Price)
	require.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, snap.Keys())
	name, _ := snap.Get("ETHUSDT")
	require.Equal(t, "ETH/USDT", name)
	require.Equal(t, 2, calls)
}

func TestTicker24h(t *testing.T) {
	t.Parallel()

	client := newServer(t, map[string]http.HandlerFunc{
		"/api/v3/ticker/24hr": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
			_, _ = w.Write([]byte(`{
				"symbol":"BTCUSDT","priceChange":"-1200.50","priceChangePercent":"-1.222",
				"prevClosePrice":"98200.51","lastPrice":"97000.01","highPrice":"98500.00",
				"lowPrice":"96100.00","volume":"","closeTime":1741953600000
			}`))
		},
	})

	tk, err := client.Ticker24h(t.Context(), "btcusdt")

	require.NoError(t, err)
	require.Equal(t, 97000.01, tk.LastPrice)
	require.Equal(t, -1200.5, tk.PriceChange)
	require.Equal(t, -1.222, tk.PriceChangePercent)
	require.Equal(t, 98200.51, tk.PrevClosePrice)
	require.Equal(t, 98500.0, tk.HighPrice)
	require.Equal(t, 96100.0, tk.LowPrice)
	require.Zero(t, tk.Volume)
	require.Equal(t, time.UnixMilli(1741953600000).UTC(), tk.CloseTime)
}

func TestKlines_SortedCandleSeries(t *testing.T) {
	t.Parallel()

	// Arrange: rows deliberately out of order.
	client := newServer(t, map[string]http.HandlerFunc{
		"/api/v3/klines": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			require.Equal(t, "ETHUSDT", q.Get("symbol"))
			require.Equal(t, "15m", q.Get("interval"))
			require.Equal(t, "96", q.Get("limit"))
			_, _ = w.Write([]byte(`[
				[1700000900000,"2.0","2.5","1.5","2.2","10",1700001799999,"0",1,"0","0","0"],
				[1700000000000,"1.0","1.5","0.5","1.2","20",1700000899999,"0",1,"0","0","0"]
			]`))
		},
	})

	// Act
	s, err := client.Klines(t.Context(), "ethusdt", "15m", 96)

	// Assert
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	first := s.At(0)
	require.Equal(t, time.UnixMilli(1700000000000).UTC(), first.Key())
	require.Equal(t, 1.0, first.Value(binance.FieldOpen))
	require.Equal(t, 1.5, first.Value(binance.FieldHigh))
	require.Equal(t, 0.5, first.Value(binance.FieldLow))
	require.Equal(t, 1.2, first.Value(binance.FieldClose))
	require.Equal(t, 20.0, first.Value(binance.FieldVolume))
	require.Equal(t, 2.2, s.At(1).Value(binance.FieldClose))
}

func TestKlines_ShortRowIsDecodeError(t *testing.T) {
	t.Parallel()

	client := newServer(t, map[string]http.HandlerFunc{
		"/api/v3/klines": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[[1700000000000,"1.0"]]`))
		},
	})

	_, err := client.Klines(t.Context(), "BTCUSDT", "15m", 96)

	var de *source.DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, source.Binance, de.Source)
}

func TestUnknownSymbolIsNotFound(t *testing.T) {
	t.Parallel()

	client := newServer(t, map[string]http.HandlerFunc{
		"/api/v3/ticker/24hr": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
		},
	})

	_, err := client.Ticker24h(t.Context(), "NOPEUSDT")

	require.ErrorIs(t, err, source.ErrNotFound)
}

func TestServerErrorIsTransient(t *testing.T) {
	t.Parallel()

	client := newServer(t, map[string]http.HandlerFunc{
		"/api/v3/ticker/price": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
	})

	_, err := client.TickerPrices(t.Context())

	require.True(t, source.IsTransient(err))
}
