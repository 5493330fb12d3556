// Package quote simulates live market prices.
//
// A [Simulator] produces the next tick of prices by moving each instrument's
// last traded price by an independent random delta.
package quote

import (
	"math"

	"github.com/saudanwar3/portfolio"
)

const (
	// DefaultBound is the maximum relative move of a price in one tick.
	DefaultBound = 0.10
	// DefaultFloor is the minimum price.
	DefaultFloor = 0.01
)

// Simulator perturbs prices by a bounded random delta.
type Simulator struct {
	src   Source
	bound float64
	floor float64
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithBound sets the maximum relative move per tick. Non positive or non
// finite values are ignored.
func WithBound(bound float64) Option {
	return func(s *Simulator) {
		if bound > 0 && !math.IsInf(bound, 0) {
			s.bound = bound
		}
	}
}

// WithFloor sets the minimum price. Non positive or non finite values are
// ignored.
func WithFloor(floor float64) Option {
	return func(s *Simulator) {
		if floor > 0 && !math.IsInf(floor, 0) {
			s.floor = floor
		}
	}
}

// New returns a Simulator drawing deltas from src.
func New(src Source, opts ...Option) *Simulator {
	s := &Simulator{src: src, bound: DefaultBound, floor: DefaultFloor}
	for _, opt := range opts {
		opt(s)
	}
	if s.src == nil {
		s.src = Zero
	}
	return s
}

// Bound returns the maximum relative move per tick.
func (s *Simulator) Bound() float64 { return s.bound }

// Floor returns the minimum price.
func (s *Simulator) Floor() float64 { return s.floor }

// NextPrices returns a new slice of positions with moved prices, in the same
// order. Positions are left untouched.
//
// Each price becomes max(floor, price*(1+d)) with d drawn from
// [-bound, bound]; draws outside that range are clamped.
func (s *Simulator) NextPrices(current []portfolio.Position) []portfolio.Position {
	next := make([]portfolio.Position, len(current))
	for i, p := range current {
		d := s.src.NextInRange(-s.bound, s.bound)
		next[i] = p.WithPrice(s.move(p.Price(), d))
	}
	return next
}

// move applies the relative delta d to price.
func (s *Simulator) move(price, d float64) float64 {
	if math.IsNaN(d) {
		d = 0
	}
	d = math.Max(-s.bound, math.Min(s.bound, d))
	np := price * (1 + d)
	if math.IsNaN(np) || np < s.floor {
		return s.floor
	}
	return np
}
