package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const bulletin = `<?xml version="1.0" encoding="UTF-8"?>
<Tarih_Date Tarih="14.03.2025" Date="03/14/2025" Bulten_No="2025/52">
  <Currency CurrencyCode="USD"><Unit>1</Unit><Isim>ABD DOLARI</Isim><ForexBuying>36.5407</ForexBuying><ForexSelling>36.6065</ForexSelling></Currency>
  <Currency CurrencyCode="EUR"><Unit>1</Unit><Isim>EURO</Isim><ForexBuying>39.6</ForexBuying><ForexSelling>39.7</ForexSelling></Currency>
</Tarih_Date>`

// run executes the CLI against a scratch directory. Tests using it set
// environment variables and so cannot run in parallel.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(append([]string{
		"--config", filepath.Join(dir, "absent.json"),
		"--env-file", filepath.Join(dir, "absent.env"),
		"--log-level", "error",
	}, args...))
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestRatesCommand_ExportsCSV(t *testing.T) {
	// Arrange: a fake bank and an export directory.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/kurlar/today.xml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(bulletin))
	}))
	t.Cleanup(srv.Close)
	exportDir := t.TempDir()
	t.Setenv("TCMB_BASE_URL", srv.URL+"/kurlar")
	t.Setenv("EXPORT_DIR", exportDir)

	// Act
	out, err := run(t, "rates", "--currency", "EUR", "--export", "csv")

	// Assert
	require.NoError(t, err)
	require.Contains(t, out, "ABD DOLARI")
	require.Contains(t, out, "EURO selling")
	data, err := os.ReadFile(filepath.Join(exportDir, "veri.csv"))
	require.NoError(t, err)
	require.Equal(t, "Code,Name,Buying,Selling\nUSD,ABD DOLARI,36.5407,36.6065\nEUR,EURO,39.6,39.7\n", string(data))
}

func TestQuoteCommand_MissingKey(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "")

	_, err := run(t, "quote", "AAPL")

	require.ErrorContains(t, err, "FINNHUB_API_KEY")
}

func TestSymbolsShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "us_list.csv")
	require.NoError(t, os.WriteFile(path, []byte("Kod,Ad\nAAPL,APPLE INC\nMSFT,MICROSOFT CORP\n"), 0o600))

	out, err := run(t, "symbols", "show", "--file", path, "--filter", "micro")

	require.NoError(t, err)
	require.Contains(t, out, "MSFT")
	require.NotContains(t, out, "AAPL")
}
