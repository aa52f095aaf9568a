package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/mirasim/internal/logging"
	"github.com/san-kum/mirasim/internal/tui"
)

var (
	logLevel string
	logJSON  bool
	logger   *log.Logger

	// render flags, shared by every command that generates an orbit
	configFile string
	preset     string
	random     bool
	seed       int64
	alpha      float64
	sigma      float64
	mu         float64
	variant    string
	iterations int
	skip       int
	x0         float64
	y0         float64
	width      float64
	height     float64
	padding    float64
	radius     float64
	fgColor    string
	bgColor    string
	opacity    float64
	output     string

	// explorer
	theme      string
	exportFile string

	// analysis
	bifParam     string
	bifMin       float64
	bifMax       float64
	bifSteps     int
	bifAxis      string
	bifTransient int
	bifRecord    int
	plotCols     int
	plotRows     int

	// scan and sweep
	scanMode    string
	scanCount   int
	scanGrid    int
	scanParams  []string
	scanTop     int
	scanMetric  string
	workers     int
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepSteps  int
	trials      int
	perturb     float64
	stableBound float64

	// gallery
	galleryPresets []string
	galleryColumns int
	galleryTile    int

	// run archive
	archiveDir string
	storeDir   string
	rmRun      bool

	// batch and serve
	outDir  string
	addr    string
	origins []string
)

// main registers the commands and flags, launches the terminal explorer when
// no subcommand is given and exits with status 1 if a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "mirasim",
		Short:         "gumowski-mira attractor explorer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		RunE: runExplore,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON lines")
	addRenderFlags(rootCmd)
	addExploreFlags(rootCmd)

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render an attractor to PNG or SVG",
		Args:  cobra.NoArgs,
		RunE:  runRender,
	}
	addRenderFlags(renderCmd)
	renderCmd.Flags().StringVar(&archiveDir, "store", "", "also archive the run under this directory")

	runsCmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "list archived runs, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listRuns,
	}
	runsCmd.Flags().StringVar(&storeDir, "store", "runs", "run archive directory")
	runsCmd.Flags().BoolVar(&rmRun, "rm", false, "delete the named run")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list parameter presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	exportPointsCmd := &cobra.Command{
		Use:   "export-points",
		Short: "write the orbit as CSV or JSON (by --out extension, - for stdout CSV)",
		Args:  cobra.NoArgs,
		RunE:  exportPoints,
	}
	addRenderFlags(exportPointsCmd)
	exportPointsCmd.Flags().Lookup("out").DefValue = "orbit.csv"

	galleryCmd := &cobra.Command{
		Use:   "gallery",
		Short: "render presets into a labelled contact sheet",
		Args:  cobra.NoArgs,
		RunE:  runGallery,
	}
	addRenderFlags(galleryCmd)
	galleryCmd.Flags().StringSliceVar(&galleryPresets, "presets", nil, "presets to include (default all)")
	galleryCmd.Flags().IntVar(&galleryColumns, "columns", 4, "tiles per row")
	galleryCmd.Flags().IntVar(&galleryTile, "tile", 240, "tile size in pixels")
	galleryCmd.Flags().Lookup("out").DefValue = "gallery.png"

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot x(n), y(n) and the phase portrait in the terminal",
		Args:  cobra.NoArgs,
		RunE:  plotOrbit,
	}
	addRenderFlags(plotCmd)
	addPlotFlags(plotCmd)
	plotCmd.Flags().Lookup("iterations").DefValue = "400"

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "classify the orbit and estimate its lyapunov exponents and period",
		Args:  cobra.NoArgs,
		RunE:  analyzeOrbit,
	}
	addRenderFlags(analyzeCmd)
	addPlotFlags(analyzeCmd)

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation",
		Short: "ascii bifurcation diagram over one parameter",
		Args:  cobra.NoArgs,
		RunE:  bifurcation,
	}
	addRenderFlags(bifurcationCmd)
	addPlotFlags(bifurcationCmd)
	bifurcationCmd.Flags().StringVar(&bifParam, "param", "mu", "parameter to sweep")
	bifurcationCmd.Flags().Float64Var(&bifMin, "min", -1, "sweep start")
	bifurcationCmd.Flags().Float64Var(&bifMax, "max", 1, "sweep end")
	bifurcationCmd.Flags().IntVar(&bifSteps, "steps", 200, "parameter values")
	bifurcationCmd.Flags().StringVar(&bifAxis, "axis", "x", "recorded coordinate (x or y)")
	bifurcationCmd.Flags().IntVar(&bifTransient, "transient", 500, "steps discarded per value")
	bifurcationCmd.Flags().IntVar(&bifRecord, "record", 200, "steps recorded per value")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "search parameter space and rank orbits by a metric",
		Args:  cobra.NoArgs,
		RunE:  scan,
	}
	addRenderFlags(scanCmd)
	scanCmd.Flags().StringVar(&scanMode, "mode", "random", "random or grid")
	scanCmd.Flags().IntVar(&scanCount, "n", 200, "random candidates")
	scanCmd.Flags().IntVar(&scanGrid, "grid", 8, "grid points per parameter")
	scanCmd.Flags().StringSliceVar(&scanParams, "params", []string{"alpha", "mu"}, "grid parameters")
	scanCmd.Flags().IntVar(&scanTop, "top", 10, "results to print")
	scanCmd.Flags().StringVar(&scanMetric, "metric", "coverage", "ranking metric (coverage, radius, step_length)")
	scanCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = all cpus)")
	scanCmd.Flags().Lookup("iterations").DefValue = "5000"

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one orbit per value of a parameter and tabulate metrics",
		Args:  cobra.NoArgs,
		RunE:  sweep,
	}
	addRenderFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "mu", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", -1, "sweep start")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "sweep end")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 11, "parameter values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = all cpus)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the initial point and count bounded orbits",
		Args:  cobra.NoArgs,
		RunE:  monteCarlo,
	}
	addRenderFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturbation", 0.01, "maximum initial offset per axis")
	monteCarloCmd.Flags().Float64Var(&stableBound, "bound", 1e3, "radius a stable orbit stays within")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a yaml scenario of renders",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().StringVar(&outDir, "out-dir", ".", "directory for step outputs")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the web explorer",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	addRenderFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	serveCmd.Flags().StringSliceVar(&origins, "origin", nil, "extra websocket origin patterns")

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "interactive terminal explorer",
		Args:  cobra.NoArgs,
		RunE:  runExplore,
	}
	addRenderFlags(exploreCmd)
	addExploreFlags(exploreCmd)

	rootCmd.AddCommand(renderCmd, runsCmd, presetsCmd, exportPointsCmd, galleryCmd, plotCmd, analyzeCmd, bifurcationCmd, scanCmd, sweepCmd, monteCarloCmd, batchCmd, serveCmd, exploreCmd)

	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", "err", err)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func setupLogger() error {
	if logJSON {
		lvl, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger = logging.JSON(os.Stderr, lvl)
		return nil
	}
	l, err := logging.New(os.Stderr, logLevel)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func addRenderFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use a parameter preset (see `mirasim presets`)")
	f.BoolVar(&random, "random", false, "draw random parameters")
	f.Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	f.Float64Var(&alpha, "alpha", 0, "alpha parameter")
	f.Float64Var(&sigma, "sigma", 0, "sigma parameter")
	f.Float64Var(&mu, "mu", 0, "mu parameter")
	f.StringVar(&variant, "variant", "standard", "recurrence variant (standard or simple)")
	f.IntVar(&iterations, "iterations", 20000, "total iterations")
	f.IntVar(&skip, "skip", 0, "leading iterations to discard")
	f.Float64Var(&x0, "x0", 1, "initial x")
	f.Float64Var(&y0, "y0", 1, "initial y")
	f.Float64Var(&width, "width", 800, "viewport width in pixels")
	f.Float64Var(&height, "height", 800, "viewport height in pixels")
	f.Float64Var(&padding, "padding", 50, "viewport padding in pixels")
	f.Float64Var(&radius, "radius", 0.75, "point radius in pixels")
	f.StringVar(&fgColor, "color", "#000000", "point colour")
	f.StringVar(&bgColor, "background", "#ffffff", "background colour")
	f.Float64Var(&opacity, "opacity", 0.8, "point opacity")
	f.StringVarP(&output, "out", "o", "gumowski.png", "output file")
}

func addExploreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&theme, "theme", "ink", "colour theme ("+strings.Join(tui.ThemeNames(), ", ")+")")
	cmd.Flags().StringVar(&exportFile, "export-file", "gumowski-results.csv", "ratings export file")
}

func addPlotFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&plotCols, "cols", 80, "plot width in characters")
	cmd.Flags().IntVar(&plotRows, "rows", 20, "plot height in characters")
}
