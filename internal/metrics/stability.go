package metrics

import (
	"math"

	"github.com/san-kum/mirasim/internal/dynamo"
)

// Stability is the fraction of points that stay within threshold of the
// origin. Non-finite points count as violations.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(i int, p dynamo.Point) {
	s.samples++
	if !p.IsFinite() || math.Hypot(p.X, p.Y) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
