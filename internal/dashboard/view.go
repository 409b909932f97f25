package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"finboard/internal/export"
)

var (
	// ErrInvalidRequest marks a request the user has to correct.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInternal is all a caller learns about a crashed view.
	ErrInternal = errors.New("internal error, see log for details")
)

// View is one of the dashboard screens.
type View int

const (
	Rates View = iota + 1
	History
	StockSearch
	Crypto
)

func (v View) String() string {
	switch v {
	case Rates:
		return "rates"
	case History:
		return "history"
	case StockSearch:
		return "stock-search"
	case Crypto:
		return "crypto"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// Dataset reports the exportable dataset a view feeds, if any.
func (v View) Dataset() (Dataset, bool) {
	switch v {
	case Rates, History:
		return DatasetTCMB, true
	case Crypto:
		return DatasetCrypto, true
	default:
		return "", false
	}
}

// Dataset names an exportable table kept in the Session.
type Dataset string

const (
	DatasetTCMB   Dataset = "tcmb"
	DatasetCrypto Dataset = "crypto"
)

// ParseDataset accepts "tcmb" and "crypto".
func ParseDataset(s string) (Dataset, error) {
	switch d := Dataset(strings.ToLower(strings.TrimSpace(s))); d {
	case DatasetTCMB, DatasetCrypto:
		return d, nil
	default:
		return "", fmt.Errorf("%w: unknown dataset %q (want tcmb or crypto)", ErrInvalidRequest, s)
	}
}

// Request selects a view and its parameters. Unused fields are ignored.
type Request struct {
	View View
	// Currency is a bulletin code: detail row for Rates, series for History.
	Currency string
	// Days of History, 7..60. Zero means the configured default.
	Days int
	// Query is a StockSearch search term.
	Query string
	// Symbol skips the search in StockSearch and picks the pair in Crypto.
	Symbol string
	// Pick selects a search result by index.
	Pick int
}

// Metric is a single labelled number shown under a table.
type Metric struct {
	Label string
	Value float64
}

// Choice is a selectable option such as a search match.
type Choice struct {
	Key   string
	Label string
}

// Result is what a view produces.
type Result struct {
	View      View
	RequestID string
	Title     string
	// Table is what is displayed.
	Table export.Table
	// Data is what gets exported; it may hold more rows than Table.
	Data    export.Table
	Metrics []Metric
	Choices []Choice
	// Warning is set instead of an error when a view has nothing to show.
	Warning string
}
