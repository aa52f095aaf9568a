package sim

import (
	"github.com/san-kum/mirasim/internal/dynamo"
)

// Orbit is a pull iterator over one trajectory window. It cannot be
// restarted; build a new one to replay the orbit.
type Orbit struct {
	m         dynamo.Map
	current   dynamo.Point
	remaining int
}

// NewOrbit prepares the window [skip, total) of the orbit starting at
// initial. The skipped prefix is computed here and not retained.
func NewOrbit(m dynamo.Map, initial dynamo.Point, total, skip int) (*Orbit, error) {
	cfg := dynamo.Config{Initial: initial, Iterations: total, Skip: skip}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := initial
	for i := 0; i < skip; i++ {
		p = m.Next(p)
	}

	return &Orbit{m: m, current: p, remaining: total - skip}, nil
}

// Next returns the next point of the window and false once it is exhausted.
func (o *Orbit) Next() (dynamo.Point, bool) {
	if o.remaining <= 0 {
		return dynamo.Point{}, false
	}
	o.current = o.m.Next(o.current)
	o.remaining--
	return o.current, true
}

func (o *Orbit) Remaining() int {
	return o.remaining
}

// Generate materializes the window [skip, total) of the orbit. The initial
// point itself is never part of the output.
func Generate(m dynamo.Map, initial dynamo.Point, total, skip int) ([]dynamo.Point, error) {
	o, err := NewOrbit(m, initial, total, skip)
	if err != nil {
		return nil, err
	}

	points := make([]dynamo.Point, 0, o.Remaining())
	for {
		p, ok := o.Next()
		if !ok {
			break
		}
		points = append(points, p)
	}
	return points, nil
}
