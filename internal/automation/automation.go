package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mirasim/internal/config"
	"github.com/san-kum/mirasim/internal/dynamo"
	"github.com/san-kum/mirasim/internal/explore"
	"github.com/san-kum/mirasim/internal/export"
	"github.com/san-kum/mirasim/internal/logging"
	"github.com/san-kum/mirasim/internal/maps"
	"github.com/san-kum/mirasim/internal/metrics"
	"github.com/san-kum/mirasim/internal/sim"
	"github.com/san-kum/mirasim/internal/viz"
)

// Scenario defines a scripted batch of renders.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Seed        int64          `yaml:"seed"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single render. Preset and Random pick the base
// parameters; Params then overrides individual values.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Random     bool               `yaml:"random"`
	Variant    string             `yaml:"variant"`
	Params     map[string]float64 `yaml:"params"`
	Initial    *dynamo.Point      `yaml:"initial"`
	Iterations int                `yaml:"iterations"`
	Skip       int                `yaml:"skip"`
	Viewport   *viz.Viewport      `yaml:"viewport"`
	SaveAs     string             `yaml:"save_as"`
}

type StepResult struct {
	Name    string
	State   explore.State
	Points  int
	Metrics map[string]float64
	Output  string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &scenario, nil
}

type RunOptions struct {
	OutDir string
	Logger *log.Logger
}

// RunScenario executes all steps in order and stops at the first failure.
// Outputs are written under OutDir with the format picked by the SaveAs
// extension (.png, .svg, .csv or .json).
func RunScenario(ctx context.Context, scenario *Scenario, opts RunOptions) ([]StepResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	rng := newRNG(scenario.Seed)
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%02d", i+1)
		}
		logger.Info("running step", "n", i+1, "of", len(scenario.Steps), "name", name)

		st, err := step.state(rng)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		res, err := runStep(ctx, st, step.SaveAs, opts.OutDir)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		res.Name = name
		results = append(results, res)
	}

	return results, nil
}

func (s ScenarioStep) state(rng *rand.Rand) (explore.State, error) {
	st := explore.DefaultState()
	switch {
	case s.Preset != "" && s.Random:
		return st, fmt.Errorf("preset and random are mutually exclusive")
	case s.Preset != "":
		p, ok := config.LookupPreset(s.Preset)
		if !ok {
			return st, fmt.Errorf("unknown preset: %s", s.Preset)
		}
		st.Params, st.Variant, st.Preset = p.Params, p.Variant, p.Name
	case s.Random:
		st.Params = config.RandomParams(rng)
		st.Source, st.Preset = explore.SourceRandom, ""
	}

	if s.Variant != "" {
		v, err := dynamo.ParseVariant(s.Variant)
		if err != nil {
			return st, err
		}
		st.Variant = v
	}
	for k, v := range s.Params {
		if err := st.Params.SetParam(k, v); err != nil {
			return st, err
		}
		st.Source, st.Preset = explore.SourceManual, ""
	}
	if s.Initial != nil {
		st.Gen.Initial = *s.Initial
	}
	if s.Iterations > 0 {
		st.Gen.Iterations = s.Iterations
	}
	st.Gen.Skip = s.Skip
	if s.Viewport != nil {
		st.Viewport = *s.Viewport
	}
	return st, st.Validate()
}

func runStep(ctx context.Context, st explore.State, saveAs, outDir string) (StepResult, error) {
	res := StepResult{State: st}
	if saveAs == "" {
		f, err := explore.Visualize(ctx, viz.Discard, st)
		if err != nil {
			return res, err
		}
		res.Points, res.Metrics = len(f.Points), f.Metrics
		return res, nil
	}

	path := filepath.Join(outDir, saveAs)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return res, err
	}
	res.Output = path

	var (
		f   explore.Frame
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(saveAs)); ext {
	case ".png":
		s := export.NewPNGSurfaceFor(st.Viewport)
		if f, err = explore.Visualize(ctx, s, st); err == nil {
			err = s.Save(path)
		}
	case ".svg":
		s := export.NewSVGSurface(st.Viewport)
		if f, err = explore.Visualize(ctx, s, st); err == nil {
			err = os.WriteFile(path, []byte(s.String()), 0644)
		}
	case ".csv", ".json":
		if f, err = explore.Visualize(ctx, viz.Discard, st); err == nil {
			err = writePoints(path, ext, st, f.Points)
		}
	default:
		return res, fmt.Errorf("unsupported output format %q", ext)
	}
	if err != nil {
		return res, err
	}

	res.Points, res.Metrics = len(f.Points), f.Metrics
	return res, nil
}

func writePoints(path, ext string, st explore.State, points []dynamo.Point) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if ext == ".csv" {
		err = export.WritePointsCSV(out, points)
	} else {
		err = export.WritePointsJSON(out, export.NewPointsDocument(st.Variant, st.Params, st.Gen, points))
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

// ParameterSweep renders one orbit per value of a single parameter.
type ParameterSweep struct {
	Variant   dynamo.Variant
	Base      dynamo.Params
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Config    dynamo.Config
	Workers   int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	FinalPoint dynamo.Point
	Diverged   bool
	Metrics    map[string]float64
}

// RunSweep executes a parameter sweep with the orbits spread over an
// ensemble.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	jobs := make([]sim.Job, sweep.NumSteps)
	values := make([]float64, sweep.NumSteps)
	for i := range jobs {
		values[i] = sweep.ParamMin + float64(i)*paramStep
		p := sweep.Base
		if err := p.SetParam(sweep.ParamName, values[i]); err != nil {
			return nil, err
		}
		jobs[i] = sim.Job{Map: maps.New(sweep.Variant, p), Config: sweep.Config}
	}

	runs, errs := sim.NewEnsemble(sweep.Workers, sweepMetrics).Run(ctx, jobs)

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i, res := range runs {
		if errs[i] != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, values[i], errs[i])
		}
		r := SweepResult{ParamValue: values[i], Diverged: res.Diverged(), Metrics: res.Metrics}
		if n := len(res.Points); n > 0 {
			r.FinalPoint = res.Points[n-1]
		}
		results = append(results, r)
	}

	return results, nil
}

func sweepMetrics() []dynamo.Metric {
	return []dynamo.Metric{metrics.NewRadius(), metrics.NewStepLength()}
}

// MonteCarloConfig perturbs the initial point of one orbit.
type MonteCarloConfig struct {
	Variant      dynamo.Variant
	Params       dynamo.Params
	BasePoint    dynamo.Point
	Perturbation float64
	NumTrials    int
	Iterations   int
	// Bound is the radius an orbit must stay within to count as stable.
	Bound float64
	Seed  int64
}

// MonteCarloResult holds statistics from Monte Carlo runs
type MonteCarloResult struct {
	TrialID    int
	Initial    dynamo.Point
	FinalPoint dynamo.Point
	Stable     bool
}

// RunMonteCarlo executes multiple trials with random perturbations
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, logger *log.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	rng := newRNG(cfg.Seed)
	simulator := sim.New(maps.New(cfg.Variant, cfg.Params))

	for trial := 0; trial < cfg.NumTrials; trial++ {
		initial := dynamo.Point{
			X: cfg.BasePoint.X + (rng.Float64()-0.5)*2*cfg.Perturbation,
			Y: cfg.BasePoint.Y + (rng.Float64()-0.5)*2*cfg.Perturbation,
		}

		var final dynamo.Point
		stable := true
		err := simulator.RunWithCallback(ctx, dynamo.Config{Initial: initial, Iterations: cfg.Iterations}, func(i int, p dynamo.Point) bool {
			final = p
			if !p.IsFinite() || (cfg.Bound > 0 && (p.X*p.X+p.Y*p.Y) > cfg.Bound*cfg.Bound) {
				stable = false
				return false
			}
			return true
		})
		if err != nil {
			return nil, err
		}

		results = append(results, MonteCarloResult{
			TrialID:    trial,
			Initial:    initial,
			FinalPoint: final,
			Stable:     stable,
		})

		if (trial+1)%10 == 0 {
			logger.Debug("monte carlo progress", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}

func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
