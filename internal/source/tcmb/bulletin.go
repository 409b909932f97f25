package tcmb

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"finboard/internal/source"
)

// Bulletin is one day's published rates.
type Bulletin struct {
	Date       time.Time
	Number     string
	Currencies []Currency
}

// Find returns the entry for a currency code such as "USD".
func (b Bulletin) Find(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range b.Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// Currency is a single bulletin row. Missing or empty rates read as 0.
type Currency struct {
	Code            string
	Name            string // Turkish name (Isim)
	EnglishName     string
	Unit            int
	ForexBuying     float64
	ForexSelling    float64
	BanknoteBuying  float64
	BanknoteSelling float64
}

type xmlBulletin struct {
	XMLName    xml.Name      `xml:"Tarih_Date"`
	Tarih      string        `xml:"Tarih,attr"`
	BultenNo   string        `xml:"Bulten_No,attr"`
	Currencies []xmlCurrency `xml:"Currency"`
}

type xmlCurrency struct {
	Code            string `xml:"CurrencyCode,attr"`
	Unit            string `xml:"Unit"`
	Isim            string `xml:"Isim"`
	CurrencyName    string `xml:"CurrencyName"`
	ForexBuying     string `xml:"ForexBuying"`
	ForexSelling    string `xml:"ForexSelling"`
	BanknoteBuying  string `xml:"BanknoteBuying"`
	BanknoteSelling string `xml:"BanknoteSelling"`
}

// Today fetches the latest bulletin.
func (c *Client) Today(ctx context.Context) (Bulletin, error) {
	return c.get(ctx, c.baseURL+"/today.xml")
}

// OnDate fetches the archived bulletin of day. Days without a bulletin
// (weekends, holidays) yield an error wrapping source.ErrNotFound.
func (c *Client) OnDate(ctx context.Context, day time.Time) (Bulletin, error) {
	url := fmt.Sprintf("%s/%s/%s.xml", c.baseURL, day.Format("200601"), day.Format("02012006"))
	b, err := c.get(ctx, url)
	if err != nil {
		return Bulletin{}, err
	}
	if b.Date.IsZero() {
		b.Date = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	}
	return b, nil
}

func (c *Client) get(ctx context.Context, url string) (Bulletin, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return Bulletin{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Bulletin{}, &source.TransportError{Op: "GET", URL: url, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Bulletin{}, source.StatusError("GET", url, res.StatusCode)
	}

	b, err := decode(res.Body)
	if err != nil {
		return Bulletin{}, &source.DecodeError{Source: source.TCMB, Err: err}
	}
	return b, nil
}

func decode(r io.Reader) (Bulletin, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var raw xmlBulletin
	if err := dec.Decode(&raw); err != nil {
		return Bulletin{}, err
	}

	b := Bulletin{Number: raw.BultenNo, Currencies: make([]Currency, 0, len(raw.Currencies))}
	if t, err := time.Parse("02.01.2006", strings.TrimSpace(raw.Tarih)); err == nil {
		b.Date = t
	}
	for _, x := range raw.Currencies {
		code := strings.ToUpper(strings.TrimSpace(x.Code))
		if code == "" {
			continue
		}
		unit, _ := strconv.Atoi(strings.TrimSpace(x.Unit))
		b.Currencies = append(b.Currencies, Currency{
			Code:            code,
			Name:            strings.TrimSpace(x.Isim),
			EnglishName:     strings.TrimSpace(x.CurrencyName),
			Unit:            unit,
			ForexBuying:     number(x.ForexBuying),
			ForexSelling:    number(x.ForexSelling),
			BanknoteBuying:  number(x.BanknoteBuying),
			BanknoteSelling: number(x.BanknoteSelling),
		})
	}
	return b, nil
}

// number parses a rate, treating empty or malformed text as 0.
func number(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// charsetReader handles the Turkish encodings older archive files declare.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8", "":
		return input, nil
	case "iso-8859-9", "iso8859-9", "latin5":
		return charmap.ISO8859_9.NewDecoder().Reader(input), nil
	case "windows-1254", "cp1254":
		return charmap.Windows1254.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
}
