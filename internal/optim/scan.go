package optim

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/mirasim/internal/config"
	"github.com/san-kum/mirasim/internal/dynamo"
	"github.com/san-kum/mirasim/internal/maps"
	"github.com/san-kum/mirasim/internal/metrics"
	"github.com/san-kum/mirasim/internal/sim"
)

// Candidate is one scored parameter set. Err is set when the orbit could
// not be generated or diverged; such candidates rank last.
type Candidate struct {
	Params  dynamo.Params
	Score   float64
	Metrics map[string]float64
	Err     error
}

// Scorer evaluates parameter sets by one orbit metric, higher is better.
type Scorer struct {
	Variant dynamo.Variant
	Config  dynamo.Config
	Metric  string
	Workers int
	Grid    int
}

func DefaultScorer() *Scorer {
	cfg := dynamo.DefaultConfig()
	cfg.Iterations = 5000
	return &Scorer{
		Variant: dynamo.Standard,
		Config:  cfg,
		Metric:  "coverage",
		Grid:    64,
	}
}

func (s *Scorer) newMetrics() []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewCoverage(s.Grid),
		metrics.NewRadius(),
		metrics.NewStepLength(),
		metrics.NewStability(1e6),
	}
}

// Score runs every candidate and returns them ranked.
func (s *Scorer) Score(ctx context.Context, params []dynamo.Params) []Candidate {
	jobs := make([]sim.Job, len(params))
	for i, p := range params {
		jobs[i] = sim.Job{Map: maps.New(s.Variant, p), Config: s.Config}
	}

	results, errs := sim.NewEnsemble(s.Workers, s.newMetrics).Run(ctx, jobs)

	out := make([]Candidate, len(params))
	for i, p := range params {
		c := Candidate{Params: p, Score: math.Inf(-1), Err: errs[i]}
		if c.Err == nil {
			res := results[i]
			c.Metrics = res.Metrics
			if res.Diverged() {
				c.Err = &dynamo.GenerationError{Step: s.Config.Skip + res.FirstNonFinite, Point: res.Points[res.FirstNonFinite], Wrapped: dynamo.ErrDiverged}
			} else {
				c.Score = res.Metrics[s.Metric]
			}
		}
		out[i] = c
	}

	Rank(out)
	return out
}

// Rank sorts candidates best first; failed candidates go last in input order.
func Rank(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		return a.Score > b.Score
	})
}

// RandomSearch scores n random parameter sets.
func RandomSearch(ctx context.Context, r *rand.Rand, n int, s *Scorer) []Candidate {
	params := make([]dynamo.Params, n)
	for i := range params {
		params[i] = config.RandomParams(r)
	}
	return s.Score(ctx, params)
}
