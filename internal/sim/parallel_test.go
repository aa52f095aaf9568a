package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/mirasim/internal/dynamo"
)

func TestEnsembleRun(t *testing.T) {
	jobs := []Job{
		{Map: shiftMap{}, Config: dynamo.Config{Iterations: 10}},
		{Map: shiftMap{}, Config: dynamo.Config{Iterations: 5, Skip: 6}},
		{Map: shiftMap{}, Config: dynamo.Config{Iterations: 20, Skip: 10}},
	}

	e := NewEnsemble(2, func() []dynamo.Metric { return []dynamo.Metric{&testMetric{}} })
	results, errs := e.Run(context.Background(), jobs)

	if errs[0] != nil || errs[2] != nil {
		t.Fatalf("unexpected errors %v", errs)
	}
	if !errors.Is(errs[1], dynamo.ErrSkipExceedsTotal) {
		t.Errorf("expected ErrSkipExceedsTotal for job 1, got %v", errs[1])
	}
	if len(results[0].Points) != 10 || len(results[2].Points) != 10 {
		t.Errorf("unexpected lengths %d, %d", len(results[0].Points), len(results[2].Points))
	}
	if results[2].Points[0].X != 11 {
		t.Errorf("job 2 should start after its skip, got %v", results[2].Points[0])
	}
	if results[0].Metrics["test"] != 5.5 || results[2].Metrics["test"] != 15.5 {
		t.Error("metrics should not be shared between jobs")
	}
}

func TestEnsembleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, errs := NewEnsemble(0, nil).Run(ctx, []Job{{Map: shiftMap{}, Config: dynamo.Config{Iterations: 10}}})
	if !errors.Is(errs[0], context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", errs[0])
	}
}
