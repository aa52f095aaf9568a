package metrics

import (
	"math"

	"github.com/san-kum/mirasim/internal/dynamo"
)

// Radius is the mean distance of finite points from the origin.
type Radius struct {
	name    string
	sum     float64
	samples int
}

func NewRadius() *Radius {
	return &Radius{name: "radius"}
}

func (r *Radius) Name() string { return r.name }

func (r *Radius) Observe(i int, p dynamo.Point) {
	if !p.IsFinite() {
		return
	}
	r.sum += math.Hypot(p.X, p.Y)
	r.samples++
}

func (r *Radius) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return r.sum / float64(r.samples)
}

func (r *Radius) Reset() {
	r.sum = 0
	r.samples = 0
}

// StepLength is the mean distance between consecutive points.
type StepLength struct {
	name     string
	prev     dynamo.Point
	havePrev bool
	sum      float64
	samples  int
}

func NewStepLength() *StepLength {
	return &StepLength{name: "step_length"}
}

func (s *StepLength) Name() string { return s.name }

func (s *StepLength) Observe(i int, p dynamo.Point) {
	if s.havePrev && p.IsFinite() && s.prev.IsFinite() {
		s.sum += math.Hypot(p.X-s.prev.X, p.Y-s.prev.Y)
		s.samples++
	}
	s.prev = p
	s.havePrev = true
}

func (s *StepLength) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *StepLength) Reset() {
	s.prev = dynamo.Point{}
	s.havePrev = false
	s.sum = 0
	s.samples = 0
}
