package renderer

import (
	"fmt"
	"math"
)

// maxPercent is the magnitude from which percentages use scientific notation.
const maxPercent = 1e15

// Percent is a percentage, 6.5 meaning 6.5%.
type Percent float64

func (p Percent) String() string {
	if !p.finite() {
		return Placeholder
	}
	if p < 0 {
		return "-" + p.abs()
	}
	return p.abs()
}

// SignedString returns the percentage with two fraction digits and an
// explicit sign: "+6.67%", "+0.00%", "-3.10%".
func (p Percent) SignedString() string {
	if !p.finite() {
		return Placeholder
	}
	if p < 0 {
		return "-" + p.abs()
	}
	return "+" + p.abs()
}

// abs formats the magnitude, in scientific notation from maxPercent.
func (p Percent) abs() string {
	a := math.Abs(float64(p))
	if a >= maxPercent {
		return fmt.Sprintf("%.2e%%", a)
	}
	return fmt.Sprintf("%.2f%%", a)
}

func (p Percent) finite() bool {
	return !math.IsNaN(float64(p)) && !math.IsInf(float64(p), 0)
}
