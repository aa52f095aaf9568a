package sim

import (
	"context"

	"github.com/san-kum/mirasim/internal/dynamo"
)

// cancelCheckInterval is how many steps run between context checks.
const cancelCheckInterval = 1024

type Simulator struct {
	m         dynamo.Map
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(m dynamo.Map) *Simulator {
	return &Simulator{
		m:         m,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run iterates the map and keeps the window [Skip, Iterations). Metrics and
// observers only see kept points. A diverged orbit is not an error here; it
// is recorded in Result.FirstNonFinite.
func (s *Simulator) Run(ctx context.Context, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kept := cfg.Iterations - cfg.Skip
	result := &dynamo.Result{
		Points:         make([]dynamo.Point, 0, kept),
		FirstNonFinite: -1,
		Metrics:        make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	p := cfg.Initial
	for i := 0; i < cfg.Iterations; i++ {
		if i%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}
		}

		p = s.m.Next(p)
		result.StepsTaken++

		if i < cfg.Skip {
			continue
		}

		idx := len(result.Points)
		if result.FirstNonFinite < 0 && !p.IsFinite() {
			result.FirstNonFinite = idx
		}
		result.Points = append(result.Points, p)

		for _, m := range s.metrics {
			m.Observe(idx, p)
		}
		for _, obs := range s.observers {
			obs.OnStep(idx, p)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback streams the window to callback without keeping it.
// Returning false from callback stops the run early.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg dynamo.Config, callback func(i int, p dynamo.Point) bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	p := cfg.Initial
	for i := 0; i < cfg.Iterations; i++ {
		if i%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		p = s.m.Next(p)
		if i < cfg.Skip {
			continue
		}
		if !callback(i-cfg.Skip, p) {
			return nil
		}
	}

	return nil
}
