package portfolio

import (
	"encoding/json"
	"iter"
	"time"
)

// Snapshot is the fully valuated state of the portfolio for one tick.
//
// A Snapshot is immutable: its accessors return copies, so a value received
// by one observer cannot be altered by another.
type Snapshot struct {
	tick      uint64
	at        time.Time
	positions []ValuatedPosition
	balance   Balance
}

// NewSnapshot valuates every position and aggregates the result into the
// balance. Positions keep their order.
func NewSnapshot(tick uint64, at time.Time, positions []Position) Snapshot {
	vps := valuateAll(positions)
	return Snapshot{
		tick:      tick,
		at:        at,
		positions: vps,
		balance:   aggregate(vps),
	}
}

// Tick returns the index of the tick that produced the snapshot, 0 being the seed.
func (s Snapshot) Tick() uint64 { return s.tick }

// Time returns the time the snapshot was computed.
func (s Snapshot) Time() time.Time { return s.at }

// Balance returns the aggregate valuation.
func (s Snapshot) Balance() Balance { return s.balance }

// Len returns the number of positions.
func (s Snapshot) Len() int { return len(s.positions) }

// Positions returns a copy of the valuated positions in display order.
func (s Snapshot) Positions() []ValuatedPosition {
	res := make([]ValuatedPosition, len(s.positions))
	copy(res, s.positions)
	return res
}

// All iterates over the valuated positions in display order.
func (s Snapshot) All() iter.Seq2[int, ValuatedPosition] {
	return func(yield func(int, ValuatedPosition) bool) {
		for i, p := range s.positions {
			if !yield(i, p) {
				return
			}
		}
	}
}

// Position returns the valuated position for ticker.
func (s Snapshot) Position(ticker string) (ValuatedPosition, bool) {
	for _, p := range s.positions {
		if p.Ticker() == ticker {
			return p, true
		}
	}
	return ValuatedPosition{}, false
}

// MarshalJSON implements json.Marshaler. The balance fields are inlined
// after the tick, positions come last.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("tick", s.tick)
	w.Optional("time", s.at)
	w.EmbedFrom(s.balance)
	positions := s.positions
	if positions == nil {
		positions = []ValuatedPosition{}
	}
	w.Append("positions", positions)
	return w.MarshalJSON()
}

var _ json.Marshaler = Snapshot{}
