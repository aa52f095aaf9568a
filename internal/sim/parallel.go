package sim

import (
	"context"
	"runtime"
	"sync"

	"github.com/san-kum/mirasim/internal/dynamo"
)

// Job is one orbit of an ensemble.
type Job struct {
	Map    dynamo.Map
	Config dynamo.Config
}

// Ensemble runs independent orbits on a bounded set of goroutines. Each
// orbit is still iterated serially; only separate jobs run in parallel.
type Ensemble struct {
	workers int
	metrics func() []dynamo.Metric
}

// NewEnsemble builds an ensemble with the given worker count (GOMAXPROCS
// when <= 0). metrics, if non-nil, is called once per job since metrics
// carry per-run state.
func NewEnsemble(workers int, metrics func() []dynamo.Metric) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{workers: workers, metrics: metrics}
}

// Run returns one result and one error per job, in job order. A cancelled
// context stops unstarted jobs with ctx.Err().
func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]*dynamo.Result, []error) {
	results := make([]*dynamo.Result, len(jobs))
	errs := make([]error, len(jobs))

	idx := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				sim := New(jobs[i].Map)
				if e.metrics != nil {
					for _, m := range e.metrics() {
						sim.AddMetric(m)
					}
				}
				results[i], errs[i] = sim.Run(ctx, jobs[i].Config)
			}
		}()
	}

	for i := range jobs {
		idx <- i
	}
	close(idx)
	wg.Wait()

	return results, errs
}
