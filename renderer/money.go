package renderer

import (
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// displayFraction is the number of fraction digits of every amount displayed.
const displayFraction = 2

// maxExact is the amount from which values are displayed in scientific notation.
var maxExact = decimal.New(1, 15)

// Money is an amount in a currency, ready for display.
type Money struct {
	value   decimal.Decimal // as major unit value
	cur     string
	invalid bool // the amount was not a finite number
}

// M returns the money value for an amount in currency, an ISO 4217 code.
func M(value float64, currency string) Money {
	cur := strings.ToUpper(strings.TrimSpace(currency))
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Money{cur: cur, invalid: true}
	}
	return Money{value: decimal.NewFromFloat(value), cur: cur}
}

// Currency returns the currency code.
func (m Money) Currency() string { return m.cur }

// IsNegative reports whether the amount is below zero. Invalid amounts are not.
func (m Money) IsNegative() bool { return !m.invalid && m.value.IsNegative() }

// String returns the amount with two fraction digits and the grouping and
// symbol of its currency, like "$1,600.00" or "-€12.50".
//
// Unknown currencies are displayed as a plain grouped number followed by the
// code, like "1,600.00 XYZ"; an empty currency uses "$".
func (m Money) String() string {
	if m.invalid {
		return Placeholder
	}
	s := m.format(m.value.Abs())
	if m.IsNegative() && s != m.format(decimal.Zero) {
		return "-" + s
	}
	return s
}

// SignedString returns the amount with an explicit sign prefix, "+" for zero
// and positive values, "-" for negative ones, whatever the currency.
//
// The sign is the sign of the exact amount, even when it rounds to zero, so
// that it always agrees with Classify.
func (m Money) SignedString() string {
	if m.invalid {
		return Placeholder
	}
	if m.IsNegative() {
		return "-" + m.format(m.value.Abs())
	}
	return "+" + m.format(m.value)
}

// format formats a non negative amount.
func (m Money) format(abs decimal.Decimal) string {
	f := formatter(m.cur)
	rounded := abs.Round(displayFraction)
	if rounded.GreaterThanOrEqual(maxExact) {
		// beyond the exact range of minor units: scientific notation.
		text := strconv.FormatFloat(abs.InexactFloat64(), 'e', displayFraction, 64)
		return strings.Replace(strings.Replace(f.Template, "1", text, 1), "$", f.Grapheme, 1)
	}
	return f.Format(rounded.Shift(displayFraction).IntPart())
}

// formatter returns the go-money formatter for code with two fraction digits.
func formatter(code string) *money.Formatter {
	if c := money.GetCurrency(code); c != nil {
		return money.NewFormatter(displayFraction, c.Decimal, c.Thousand, c.Grapheme, c.Template)
	}
	if code == "" {
		return money.NewFormatter(displayFraction, ".", ",", "$", "$1")
	}
	return money.NewFormatter(displayFraction, ".", ",", code, "1 $")
}

// KnownCurrency reports whether code is an ISO 4217 currency known to the formatter.
func KnownCurrency(code string) bool {
	return money.GetCurrency(strings.ToUpper(strings.TrimSpace(code))) != nil
}
