package portfolio

// Position is a holding of an instrument.
//
// Quantity, AveragePrice and Cost are constant for the session. Cost is the
// acquisition cost as delivered by the portfolio service, it is not
// recomputed from Quantity and AveragePrice.
type Position struct {
	Instrument   Instrument `json:"instrument"`
	Quantity     float64    `json:"quantity"`
	AveragePrice float64    `json:"averagePrice"`
	Cost         float64    `json:"cost"`
}

// Ticker returns the ticker of the position's instrument.
func (p Position) Ticker() string { return p.Instrument.Ticker }

// Price returns the last traded price of the position's instrument.
func (p Position) Price() float64 { return p.Instrument.LastTradedPrice }

// WithPrice returns a copy of the position with a new last traded price.
func (p Position) WithPrice(price float64) Position {
	p.Instrument.LastTradedPrice = price
	return p
}
