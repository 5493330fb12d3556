package renderer

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/saudanwar3/portfolio"
)

func aapl() portfolio.Position {
	return portfolio.Position{
		Instrument: portfolio.Instrument{
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

func tsla() portfolio.Position {
	return portfolio.Position{
		Instrument: portfolio.Instrument{
			Ticker:          "TSLA",
			Name:            "Tesla | Inc",
			Exchange:        "NASDAQ",
			Currency:        "USD",
			LastTradedPrice: 200,
		},
		Quantity:     5,
		AveragePrice: 220,
		Cost:         1100,
	}
}

func valuated(p portfolio.Position) portfolio.ValuatedPosition {
	return portfolio.ValuatedPosition{Position: p, Valuation: portfolio.Valuate(p)}
}

func TestFormatPosition(t *testing.T) {
	got := FormatPosition(valuated(aapl()), "")
	want := PositionView{
		Ticker:        "AAPL",
		Name:          "Apple Inc.",
		Quantity:      "10.00",
		Price:         "$160.00",
		MarketValue:   "$1,600.00",
		PnL:           "+$100.00",
		PnLPercentage: "+6.67%",
		Class:         Positive,
	}
	if got != want {
		t.Errorf("FormatPosition() = %+v, want %+v", got, want)
	}
	if got.QuantityLabel() != "Qty: 10.00" {
		t.Errorf("QuantityLabel() = %q", got.QuantityLabel())
	}
	if got.PriceLabel() != "Price: $160.00" {
		t.Errorf("PriceLabel() = %q", got.PriceLabel())
	}
	if ClassifyText(got.PnL) != got.Class {
		t.Errorf("ClassifyText(%q) disagrees with %v", got.PnL, got.Class)
	}
}

func TestFormatPosition_Loss(t *testing.T) {
	got := FormatPosition(valuated(tsla()), "")
	if got.PnL != "-$100.00" || got.PnLPercentage != "-9.09%" || got.Class != Negative {
		t.Errorf("FormatPosition() = %+v", got)
	}
	if ClassifyText(got.PnL) != got.Class {
		t.Errorf("ClassifyText(%q) disagrees with %v", got.PnL, got.Class)
	}
}

func TestFormatPosition_Currency(t *testing.T) {
	got := FormatPosition(valuated(aapl()), "NOPE")
	if got.MarketValue != "1,600.00 NOPE" {
		t.Errorf("MarketValue = %q, want the plain number fallback", got.MarketValue)
	}
	if got.PnL != "+100.00 NOPE" {
		t.Errorf("PnL = %q, want the plain number fallback", got.PnL)
	}
}

func TestFormatPosition_ZeroCost(t *testing.T) {
	p := aapl()
	p.Cost = 0
	got := FormatPosition(valuated(p), "")
	if got.PnLPercentage != "+0.00%" {
		t.Errorf("PnLPercentage = %q, want +0.00%%", got.PnLPercentage)
	}
}

func TestFormatPosition_NonFinite(t *testing.T) {
	vp := valuated(aapl())
	vp.MarketValue = math.NaN()
	vp.PnL = math.Inf(1)
	vp.PnLPercentage = math.NaN()
	got := FormatPosition(vp, "")
	for _, s := range []string{got.MarketValue, got.PnL, got.PnLPercentage} {
		if strings.Contains(s, "NaN") || strings.Contains(s, "Inf") {
			t.Errorf("FormatPosition() = %+v, contains a non finite value", got)
		}
	}
}

func TestFormatBalance(t *testing.T) {
	b := portfolio.Aggregate([]portfolio.Position{aapl()})
	got := FormatBalance(b, "")
	want := BalanceView{NetValue: "$1,600.00", PnL: "+$100.00", PnLPercentage: "+6.67%", Class: Positive}
	if got != want {
		t.Errorf("FormatBalance() = %+v, want %+v", got, want)
	}

	b = portfolio.Aggregate([]portfolio.Position{tsla()})
	got = FormatBalance(b, "USD")
	want = BalanceView{NetValue: "$1,000.00", PnL: "-$100.00", PnLPercentage: "-9.09%", Class: Negative}
	if got != want {
		t.Errorf("FormatBalance() = %+v, want %+v", got, want)
	}
}

func TestPlaceholderBalance(t *testing.T) {
	got := PlaceholderBalance()
	if got.NetValue != "–" || got.PnL != "–" || got.PnLPercentage != "–" || got.Class != Neutral {
		t.Errorf("PlaceholderBalance() = %+v", got)
	}
	if ClassifyText(got.PnL) != got.Class {
		t.Errorf("ClassifyText(%q) disagrees with %v", got.PnL, got.Class)
	}
}

func TestFormatSnapshot(t *testing.T) {
	s := portfolio.NewSnapshot(3, time.Time{}, []portfolio.Position{aapl(), tsla()})
	v := FormatSnapshot(s, "")
	if v.Tick != 3 {
		t.Errorf("Tick = %d, want 3", v.Tick)
	}
	if len(v.Positions) != 2 || v.Positions[0].Ticker != "AAPL" || v.Positions[1].Ticker != "TSLA" {
		t.Fatalf("Positions = %+v", v.Positions)
	}
	want := BalanceView{NetValue: "$2,600.00", PnL: "+$0.00", PnLPercentage: "+0.00%", Class: Positive}
	if v.Balance != want {
		t.Errorf("Balance = %+v, want %+v", v.Balance, want)
	}
}

func TestView_JSON(t *testing.T) {
	s := portfolio.NewSnapshot(0, time.Time{}, []portfolio.Position{tsla()})
	data, err := json.Marshal(FormatSnapshot(s, ""))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{`"class":"negative"`, `"pnl":"-$100.00"`, `"ticker":"TSLA"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Marshal() = %s, missing %s", data, want)
		}
	}
	var back View
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.Positions[0].Class != Negative {
		t.Errorf("Class = %v, want negative", back.Positions[0].Class)
	}
}

func TestChanged(t *testing.T) {
	prev := FormatSnapshot(portfolio.NewSnapshot(0, time.Time{}, []portfolio.Position{aapl(), tsla()}), "")
	if got := Changed(prev, prev); len(got) != 0 {
		t.Errorf("Changed(prev, prev) = %v, want none", got)
	}

	moved := tsla().WithPrice(201)
	next := FormatSnapshot(portfolio.NewSnapshot(1, time.Time{}, []portfolio.Position{aapl(), moved}), "")
	if got, want := Changed(prev, next), []int{1}; !reflect.DeepEqual(got, want) {
		t.Errorf("Changed() = %v, want %v", got, want)
	}

	if got, want := Changed(PlaceholderView(), next), []int{0, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("Changed() = %v, want %v", got, want)
	}
}
