package portfolio

import "math"

// Valuation holds the values derived from a position and its live price.
type Valuation struct {
	MarketValue   float64 `json:"marketValue"`
	PnL           float64 `json:"pnl"`
	PnLPercentage float64 `json:"pnlPercentage"`
}

// ValuatedPosition is a position together with its valuation for one tick.
type ValuatedPosition struct {
	Position
	Valuation
}

// Balance is the aggregate valuation of a set of positions.
//
// PnLPercentage is weighted by cost: it is PnL relative to the total Cost,
// not the sum of the positions' percentages.
type Balance struct {
	NetValue      float64 `json:"netValue"`
	PnL           float64 `json:"pnl"`
	PnLPercentage float64 `json:"pnlPercentage"`
	Cost          float64 `json:"cost"`
}

// Valuate computes the market value, profit and loss and profit and loss
// percentage of p at its last traded price.
//
// A position without cost reports a 0% profit and loss percentage.
func Valuate(p Position) Valuation {
	mv := finite(p.Quantity * p.Instrument.LastTradedPrice)
	pnl := finite(mv - p.Cost)
	return Valuation{
		MarketValue:   mv,
		PnL:           pnl,
		PnLPercentage: percentOf(pnl, p.Cost),
	}
}

// Aggregate computes the balance of positions.
func Aggregate(positions []Position) Balance {
	return aggregate(valuateAll(positions))
}

// valuateAll valuates every position, keeping their order.
func valuateAll(positions []Position) []ValuatedPosition {
	vps := make([]ValuatedPosition, len(positions))
	for i, p := range positions {
		vps[i] = ValuatedPosition{Position: p, Valuation: Valuate(p)}
	}
	return vps
}

// aggregate sums already valuated positions.
func aggregate(positions []ValuatedPosition) Balance {
	var b Balance
	for _, p := range positions {
		b.NetValue += p.MarketValue
		b.PnL += p.PnL
		b.Cost += finite(p.Cost)
	}
	b.PnLPercentage = percentOf(b.PnL, b.Cost)
	return b
}

// percentOf returns v*100/base, or 0 if base is not strictly positive.
func percentOf(v, base float64) float64 {
	if !(base > 0) {
		return 0
	}
	return finite(v * 100 / base)
}

// finite maps NaN and infinities to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
