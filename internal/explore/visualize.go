package explore

import (
	"context"
	"time"

	"github.com/san-kum/mirasim/internal/dynamo"
	"github.com/san-kum/mirasim/internal/maps"
	"github.com/san-kum/mirasim/internal/metrics"
	"github.com/san-kum/mirasim/internal/sim"
	"github.com/san-kum/mirasim/internal/viz"
)

const coverageGrid = 64

// Frame is the outcome of one successful visualization.
type Frame struct {
	State     State
	Points    []dynamo.Point
	Transform viz.Transform
	Metrics   map[string]float64
	Elapsed   time.Duration
}

// Visualize generates the orbit for st and draws it on s. Divergent orbits
// are reported before anything is drawn.
func Visualize(ctx context.Context, s viz.Surface, st State) (Frame, error) {
	if err := st.Validate(); err != nil {
		return Frame{}, err
	}

	start := time.Now()
	simulator := sim.New(maps.New(st.Variant, st.Params))
	simulator.AddMetric(metrics.NewCoverage(coverageGrid))
	simulator.AddMetric(metrics.NewRadius())
	simulator.AddMetric(metrics.NewStepLength())

	res, err := simulator.Run(ctx, st.Gen)
	if err != nil {
		return Frame{}, err
	}
	if res.Diverged() {
		i := res.FirstNonFinite
		return Frame{}, &dynamo.GenerationError{Step: st.Gen.Skip + i, Point: res.Points[i], Wrapped: dynamo.ErrDiverged}
	}
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	t, err := viz.Visualize(s, res.Points, st.Viewport, st.Style)
	if err != nil {
		return Frame{}, err
	}

	return Frame{
		State:     st,
		Points:    res.Points,
		Transform: t,
		Metrics:   res.Metrics,
		Elapsed:   time.Since(start),
	}, nil
}
