package renderer

import (
	"fmt"
	"math"

	"github.com/saudanwar3/portfolio"
)

// Placeholder is displayed in place of a value that is not available.
const Placeholder = "–"

// DefaultCurrency is the reporting currency of the balance.
const DefaultCurrency = "USD"

// PositionView is a position formatted for display.
type PositionView struct {
	Ticker        string `json:"ticker"`
	Name          string `json:"name"`
	Quantity      string `json:"quantity"`
	Price         string `json:"price"`
	MarketValue   string `json:"marketValue"`
	PnL           string `json:"pnl"`
	PnLPercentage string `json:"pnlPercentage"`
	Class         Class  `json:"class"`
}

// QuantityLabel returns the quantity label, like "Qty: 10.00".
func (v PositionView) QuantityLabel() string { return "Qty: " + v.Quantity }

// PriceLabel returns the price label, like "Price: $160.00".
func (v PositionView) PriceLabel() string { return "Price: " + v.Price }

// Key identifies what a row displays: two views with the same key render the same row.
func (v PositionView) Key() string {
	return v.Ticker + "\x00" + v.MarketValue + "\x00" + v.PnL
}

// BalanceView is the portfolio balance formatted for display.
type BalanceView struct {
	NetValue      string `json:"netValue"`
	PnL           string `json:"pnl"`
	PnLPercentage string `json:"pnlPercentage"`
	Class         Class  `json:"class"`
}

// View is a snapshot formatted for display.
type View struct {
	Tick      uint64         `json:"tick"`
	Balance   BalanceView    `json:"balance"`
	Positions []PositionView `json:"positions"`
}

// FormatPosition formats vp with amounts in currency. An empty currency means
// the currency of the position's instrument.
func FormatPosition(vp portfolio.ValuatedPosition, currency string) PositionView {
	if currency == "" {
		currency = vp.Instrument.Currency
	}
	return PositionView{
		Ticker:        vp.Ticker(),
		Name:          vp.Instrument.Name,
		Quantity:      quantity(vp.Quantity),
		Price:         M(vp.Price(), currency).String(),
		MarketValue:   M(vp.MarketValue, currency).String(),
		PnL:           M(vp.PnL, currency).SignedString(),
		PnLPercentage: Percent(vp.PnLPercentage).SignedString(),
		Class:         Classify(vp.PnL),
	}
}

// FormatBalance formats b with amounts in the reporting currency.
func FormatBalance(b portfolio.Balance, reporting string) BalanceView {
	if reporting == "" {
		reporting = DefaultCurrency
	}
	return BalanceView{
		NetValue:      M(b.NetValue, reporting).String(),
		PnL:           M(b.PnL, reporting).SignedString(),
		PnLPercentage: Percent(b.PnLPercentage).SignedString(),
		Class:         Classify(b.PnL),
	}
}

// PlaceholderBalance is the balance displayed while no data is available.
func PlaceholderBalance() BalanceView {
	return BalanceView{
		NetValue:      Placeholder,
		PnL:           Placeholder,
		PnLPercentage: Placeholder,
		Class:         Neutral,
	}
}

// FormatSnapshot formats every position of s in its instrument's currency and
// the balance in the reporting currency.
func FormatSnapshot(s portfolio.Snapshot, reporting string) View {
	v := View{
		Tick:      s.Tick(),
		Balance:   FormatBalance(s.Balance(), reporting),
		Positions: make([]PositionView, 0, s.Len()),
	}
	for _, vp := range s.All() {
		v.Positions = append(v.Positions, FormatPosition(vp, ""))
	}
	return v
}

// PlaceholderView is the view displayed while no data is available.
func PlaceholderView() View {
	return View{Balance: PlaceholderBalance(), Positions: []PositionView{}}
}

// Changed returns the indexes of the rows of next that display differently
// than in prev.
func Changed(prev, next View) []int {
	var res []int
	for i, p := range next.Positions {
		if i >= len(prev.Positions) || prev.Positions[i].Key() != p.Key() {
			res = append(res, i)
		}
	}
	return res
}

func quantity(q float64) string {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return Placeholder
	}
	return fmt.Sprintf("%.2f", q)
}
