package quote

import (
	"math/rand/v2"
	"sync"
)

// Source draws random numbers.
type Source interface {
	// NextInRange returns a number uniformly drawn from [min, max].
	NextInRange(min, max float64) float64
}

// RandSource is a pseudo random Source. It is safe for concurrent use.
type RandSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandSource returns a RandSource. The same seed always produces the
// same sequence of numbers.
func NewRandSource(seed uint64) *RandSource {
	return &RandSource{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NextInRange returns a number uniformly drawn from [min, max).
func (s *RandSource) NextInRange(min, max float64) float64 {
	s.mu.Lock()
	f := s.rnd.Float64()
	s.mu.Unlock()
	return min + f*(max-min)
}

// SequenceSource replays a fixed list of values, cycling when exhausted.
// Values are returned as they are, regardless of the range requested.
// An empty SequenceSource always returns 0.
type SequenceSource struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// Sequence returns a SequenceSource over values.
func Sequence(values ...float64) *SequenceSource {
	return &SequenceSource{values: values}
}

// NextInRange returns the next value of the sequence.
func (s *SequenceSource) NextInRange(_, _ float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Zero is a Source that never moves prices.
var Zero Source = Sequence()
