package portfolio

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestValidateSeed(t *testing.T) {
	testCases := []struct {
		name      string
		positions []Position
		wantErr   []string
	}{
		{name: "empty", positions: nil},
		{name: "valid", positions: []Position{aapl(), pos("TSLA", 5, 1000, 180)}},
		{
			name:      "duplicate ticker",
			positions: []Position{aapl(), aapl()},
			wantErr:   []string{`ticker "AAPL" already used by position #0`},
		},
		{
			name:      "missing ticker",
			positions: []Position{pos("", 1, 1, 1)},
			wantErr:   []string{"missing ticker"},
		},
		{
			name:      "zero price",
			positions: []Position{pos("ZERO", 1, 1, 0)},
			wantErr:   []string{"invalid last traded price 0"},
		},
		{
			name: "all failures",
			positions: []Position{
				pos("NAN", 1, 1, math.NaN()),
				{Instrument: Instrument{Ticker: "Q", LastTradedPrice: 1}, Quantity: math.Inf(1), Cost: math.NaN()},
			},
			wantErr: []string{"invalid last traded price NaN", "invalid quantity +Inf", "invalid cost NaN"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSeed(tc.positions)
			if len(tc.wantErr) == 0 {
				if err != nil {
					t.Fatalf("ValidateSeed() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidSeed) {
				t.Fatalf("ValidateSeed() error = %v, want ErrInvalidSeed", err)
			}
			for _, want := range tc.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("ValidateSeed() error = %q, want it to contain %q", err, want)
				}
			}
		})
	}
}
