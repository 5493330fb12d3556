package portfolio

import "fmt"

// Instrument is a traded security.
//
// Ticker is the unique identifier of the instrument within a portfolio.
// LastTradedPrice is the only field that changes across ticks.
type Instrument struct {
	Ticker          string  `json:"ticker"`
	Name            string  `json:"name"`
	Exchange        string  `json:"exchange"`
	Currency        string  `json:"currency"`
	LastTradedPrice float64 `json:"lastTradedPrice"`
}

func (i Instrument) String() string {
	return fmt.Sprintf("%s (%s) %g %s", i.Ticker, i.Exchange, i.LastTradedPrice, i.Currency)
}
