package portfolio

import "math"

const epsilon = 1e-9

// aapl is the reference position: 10 shares bought at 150 and trading at 160.
func aapl() Position {
	return Position{
		Instrument: Instrument{
			Ticker:          "AAPL",
			Name:            "Apple Inc.",
			Exchange:        "NASDAQ",
			Currency:        "USD",
			LastTradedPrice: 160,
		},
		Quantity:     10,
		AveragePrice: 150,
		Cost:         1500,
	}
}

// pos is a helper for tests to create a position from const.
func pos(ticker string, quantity, cost, price float64) Position {
	return Position{
		Instrument:   Instrument{Ticker: ticker, Name: ticker, Currency: "USD", LastTradedPrice: price},
		Quantity:     quantity,
		AveragePrice: cost / quantity,
		Cost:         cost,
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < epsilon }
