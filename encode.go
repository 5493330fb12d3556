package portfolio

import (
	"encoding/json"
	"fmt"
	"io"
)

// Portfolio is the payload delivered by the portfolio service.
//
// Its balance and the derived values of its positions are informative only:
// a live stream recomputes them from the seed on every tick.
type Portfolio struct {
	Balance   Balance             `json:"balance"`
	Positions []PortfolioPosition `json:"positions"`
}

// PortfolioPosition is a position as delivered by the portfolio service,
// with the values the service computed at delivery time.
type PortfolioPosition struct {
	Position
	MarketValue   float64 `json:"marketValue"`
	PnL           float64 `json:"pnl"`
	PnLPercentage float64 `json:"pnlPercentage"`
}

// Seed returns the positions of p in payload order, stripped of their
// delivered derived values.
func (p Portfolio) Seed() []Position {
	res := make([]Position, len(p.Positions))
	for i, pp := range p.Positions {
		res[i] = pp.Position
	}
	return res
}

// SnapshotPortfolio returns the payload of s, carrying the values derived
// at its tick.
func SnapshotPortfolio(s Snapshot) Portfolio {
	p := Portfolio{Balance: s.Balance(), Positions: make([]PortfolioPosition, 0, s.Len())}
	for _, vp := range s.All() {
		p.Positions = append(p.Positions, PortfolioPosition{
			Position:      vp.Position,
			MarketValue:   vp.MarketValue,
			PnL:           vp.PnL,
			PnLPercentage: vp.PnLPercentage,
		})
	}
	return p
}

// DecodePortfolio reads a single JSON portfolio object from r.
func DecodePortfolio(r io.Reader) (Portfolio, error) {
	var p Portfolio
	dec := json.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("cannot decode portfolio: %w", err)
	}
	return p, nil
}

// EncodePortfolio writes p as JSON into w.
func EncodePortfolio(w io.Writer, p Portfolio) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("cannot encode portfolio: %w", err)
	}
	return nil
}
