package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mirasim/internal/analysis"
	"github.com/san-kum/mirasim/internal/automation"
	"github.com/san-kum/mirasim/internal/config"
	"github.com/san-kum/mirasim/internal/dynamo"
	"github.com/san-kum/mirasim/internal/maps"
	"github.com/san-kum/mirasim/internal/optim"
)

func plotOrbit(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, func(c *config.Config) { c.Iterations = 400 })
	if err != nil {
		return err
	}
	points, err := generate(cfg)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return dynamo.ErrEmptySequence
	}
	if n := nonFinite(points); n >= 0 {
		return &dynamo.GenerationError{Step: cfg.Skip + n, Point: points[n], Wrapped: dynamo.ErrDiverged}
	}

	xs, ys := split(points)
	fmt.Printf("%s %s, %d points\n\n", cfg.Variant, cfg.Params, len(points))
	for _, series := range []struct {
		data    []float64
		caption string
	}{
		{xs, "x(n)"},
		{ys, "y(n)"},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(plotRows/2),
			asciigraph.Width(plotCols),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	fmt.Println(analysis.PortraitToASCII(points, plotCols, plotRows))
	return nil
}

func analyzeOrbit(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	m := maps.New(cfg.Variant, cfg.Params)
	opts := analysis.DefaultClassifyOptions()

	fmt.Printf("analysis: %s %s from %s\n\n", cfg.Variant, cfg.Params, cfg.Initial)

	report, err := analysis.Classify(m, cfg.Initial, opts)
	if err != nil {
		return err
	}
	fmt.Printf("class:      %s\n", report)
	if report.Class == analysis.Divergent {
		return nil
	}

	spectrum, err := analysis.LyapunovSpectrum(m, cfg.Initial, opts.Steps, opts.Transient, opts.Perturbation)
	if err != nil {
		return err
	}
	fmt.Printf("lyapunov:   λx=%.5f λy=%.5f\n", spectrum[0], spectrum[1])

	points, err := generate(cfg)
	if err != nil {
		return err
	}
	if n := nonFinite(points); n >= 0 {
		return &dynamo.GenerationError{Step: cfg.Skip + n, Point: points[n], Wrapped: dynamo.ErrDiverged}
	}
	xs, _ := split(points)
	if period, ok := analysis.DominantPeriod(xs); ok {
		fmt.Printf("period:     %.2f steps (dominant x component)\n", period)
	}

	ps := analysis.PowerSpectrum(xs)
	if len(ps) > 1 {
		fmt.Println()
		graph := asciigraph.Plot(ps[1:],
			asciigraph.Height(plotRows/2),
			asciigraph.Width(plotCols),
			asciigraph.Caption("power spectrum of x(n)"),
		)
		fmt.Println(graph)
	}
	return nil
}

func bifurcation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	axis := analysis.AxisX
	switch strings.ToLower(bifAxis) {
	case "x":
	case "y":
		axis = analysis.AxisY
	default:
		return fmt.Errorf("unknown axis %q (use x or y)", bifAxis)
	}

	data, err := analysis.BifurcationDiagram(maps.New(cfg.Variant, cfg.Params), analysis.BifurcationOptions{
		Param:     bifParam,
		Min:       bifMin,
		Max:       bifMax,
		Steps:     bifSteps,
		Axis:      axis,
		Initial:   cfg.Initial,
		Transient: bifTransient,
		Record:    bifRecord,
	})
	if err != nil {
		return err
	}

	plot := analysis.BifurcationToASCII(data, plotCols, plotRows)
	if plot == "" {
		return fmt.Errorf("every orbit diverged over %s in [%g, %g]", bifParam, bifMin, bifMax)
	}
	fmt.Printf("bifurcation over %s in [%g, %g], %s axis\n\n", bifParam, bifMin, bifMax, bifAxis)
	fmt.Println(plot)
	return nil
}

func scan(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, func(c *config.Config) { c.Iterations = 5000 })
	if err != nil {
		return err
	}

	scorer := optim.DefaultScorer()
	scorer.Variant = cfg.Variant
	scorer.Config = cfg.Generation()
	scorer.Metric = scanMetric
	scorer.Workers = workers

	var cands []optim.Candidate
	switch scanMode {
	case "random":
		logger.Info("random scan", "candidates", scanCount, "seed", cfg.Seed)
		cands = optim.RandomSearch(cmd.Context(), rand.New(rand.NewSource(cfg.Seed)), scanCount, scorer)
	case "grid":
		ranges := make([][]float64, len(scanParams))
		for i, name := range scanParams {
			lo, hi := 0.0, 1.0
			if name == "mu" {
				lo = -1
			}
			ranges[i] = optim.Linspace(lo, hi, scanGrid)
		}
		gs, err := optim.NewGridSearch(scanParams, ranges)
		if err != nil {
			return err
		}
		logger.Info("grid scan", "params", scanParams, "points", scanGrid)
		cands, err = gs.Search(cmd.Context(), cfg.Params, scorer)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown scan mode %q (use random or grid)", scanMode)
	}

	failed := 0
	for _, c := range cands {
		if c.Err != nil {
			failed++
		}
	}
	fmt.Printf("%d candidates, %d diverged, ranked by %s\n\n", len(cands), failed, scanMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tALPHA\tSIGMA\tMU\tSCORE")
	for i, c := range cands {
		if i >= scanTop || c.Err != nil {
			break
		}
		fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%.6f\t%.4f\n", i+1, c.Params.Alpha, c.Params.Sigma, c.Params.Mu, c.Score)
	}
	return w.Flush()
}

func sweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Variant:   cfg.Variant,
		Base:      cfg.Params,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
		Config:    cfg.Generation(),
		Workers:   workers,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFINAL\tDIVERGED\tRADIUS\tSTEP\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%s\t%v\t%.4g\t%.4g\n", r.ParamValue, r.FinalPoint, r.Diverged, r.Metrics["radius"], r.Metrics["step_length"])
	}
	return w.Flush()
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Variant:      cfg.Variant,
		Params:       cfg.Params,
		BasePoint:    cfg.Initial,
		Perturbation: perturb,
		NumTrials:    trials,
		Iterations:   cfg.Iterations,
		Bound:        stableBound,
		Seed:         cfg.Seed,
	}, logger)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("%s %s, %d trials within ±%g of %s\n", cfg.Variant, cfg.Params, len(results), perturb, cfg.Initial)
	fmt.Printf("stable:   %d\n", stable)
	fmt.Printf("unstable: %d\n", unstable)
	return nil
}

func split(points []dynamo.Point) (xs, ys []float64) {
	xs = make([]float64, len(points))
	ys = make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}
