package portfolio

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSeed is returned by ValidateSeed.
var ErrInvalidSeed = errors.New("invalid seed")

// ValidateSeed checks that positions can start a live stream.
//
// Every ticker must be set and unique, every price finite and strictly
// positive, and quantities and costs finite. All failures are reported.
func ValidateSeed(positions []Position) error {
	var errs []error
	seen := make(map[string]int, len(positions))
	for i, p := range positions {
		t := p.Ticker()
		if t == "" {
			errs = append(errs, fmt.Errorf("position #%d: missing ticker", i))
		} else if j, ok := seen[t]; ok {
			errs = append(errs, fmt.Errorf("position #%d: ticker %q already used by position #%d", i, t, j))
		} else {
			seen[t] = i
		}
		if price := p.Price(); math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			errs = append(errs, fmt.Errorf("position #%d %q: invalid last traded price %v", i, t, price))
		}
		if math.IsNaN(p.Quantity) || math.IsInf(p.Quantity, 0) {
			errs = append(errs, fmt.Errorf("position #%d %q: invalid quantity %v", i, t, p.Quantity))
		}
		if math.IsNaN(p.Cost) || math.IsInf(p.Cost, 0) {
			errs = append(errs, fmt.Errorf("position #%d %q: invalid cost %v", i, t, p.Cost))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidSeed, errors.Join(errs...))
}
