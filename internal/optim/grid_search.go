package optim

import (
	"context"
	"fmt"

	"github.com/san-kum/mirasim/internal/dynamo"
)

// GridSearch enumerates the cartesian product of per-parameter value lists.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameter names for %d ranges", len(params), len(ranges))
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Candidates returns every grid point, starting from base for parameters the
// grid does not cover.
func (g *GridSearch) Candidates(base dynamo.Params) ([]dynamo.Params, error) {
	var out []dynamo.Params
	if err := g.searchRecursive(0, base, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *GridSearch) searchRecursive(depth int, current dynamo.Params, out *[]dynamo.Params) error {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := current
		if err := next.SetParam(paramName, val); err != nil {
			return err
		}
		if err := g.searchRecursive(depth+1, next, out); err != nil {
			return err
		}
	}
	return nil
}

// Search scores every grid point and returns them best first.
func (g *GridSearch) Search(ctx context.Context, base dynamo.Params, s *Scorer) ([]Candidate, error) {
	candidates, err := g.Candidates(base)
	if err != nil {
		return nil, err
	}
	ranked := s.Score(ctx, candidates)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ranked, nil
}
