package source

import "fmt"

// Kind identifies one of the upstream data sources. The set is closed:
// adding a source means adding a constant here and a case wherever Kind
// is switched on.
type Kind int

const (
	// TCMB is the central bank daily XML bulletin.
	TCMB Kind = iota + 1
	// Finnhub is the equity quote/search REST API.
	Finnhub
	// Binance is the exchange's public market-data API.
	Binance
)

func (k Kind) String() string {
	switch k {
	case TCMB:
		return "tcmb"
	case Finnhub:
		return "finnhub"
	case Binance:
		return "binance"
	default:
		return fmt.Sprintf("source(%d)", int(k))
	}
}
