package renderer

import (
	"math"
	"strings"
)

// Class is the display classification of a profit and loss.
type Class int

const (
	// Neutral is the class of missing values.
	Neutral Class = iota
	// Positive is the class of gains, zero included.
	Positive
	// Negative is the class of losses.
	Negative
)

// Classify returns Positive for zero and positive values, Negative for
// negative ones and Neutral for values that are not finite numbers.
func Classify(pnl float64) Class {
	switch {
	case math.IsNaN(pnl), math.IsInf(pnl, 0):
		return Neutral
	case pnl < 0:
		return Negative
	default:
		return Positive
	}
}

// ClassifyText returns the classification of a formatted, signed value from
// its leading sign character. It agrees with Classify for every value
// formatted by Money.SignedString or Percent.SignedString.
func ClassifyText(s string) Class {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "-"):
		return Negative
	case strings.HasPrefix(s, "+"):
		return Positive
	default:
		return Neutral
	}
}

func (c Class) String() string {
	switch c {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "neutral"
	}
}

// Color returns the ANSI color code of the class, green for gains and red
// for losses. Neutral has no color and returns "".
func (c Class) Color() string {
	switch c {
	case Positive:
		return "10"
	case Negative:
		return "9"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Class) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Unknown values are Neutral.
func (c *Class) UnmarshalText(text []byte) error {
	switch string(text) {
	case "positive":
		*c = Positive
	case "negative":
		*c = Negative
	default:
		*c = Neutral
	}
	return nil
}
