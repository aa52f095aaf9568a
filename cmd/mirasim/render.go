package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/spf13/cobra"

	"github.com/san-kum/mirasim/internal/analysis"
	"github.com/san-kum/mirasim/internal/config"
	"github.com/san-kum/mirasim/internal/dynamo"
	"github.com/san-kum/mirasim/internal/explore"
	"github.com/san-kum/mirasim/internal/export"
	"github.com/san-kum/mirasim/internal/maps"
	"github.com/san-kum/mirasim/internal/sim"
	"github.com/san-kum/mirasim/internal/storage"
	"github.com/san-kum/mirasim/internal/viz"
)

// resolveConfig layers defaults, preset, config file, random draw and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command, defaults func(*config.Config)) (*config.Config, error) {
	flags := cmd.Flags()
	cfg := config.DefaultConfig()
	if defaults != nil {
		defaults(cfg)
	}

	if flags.Changed("preset") {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}

	if flags.Changed("config") {
		if err := config.Merge(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if flags.Changed("seed") {
		cfg.Seed = seed
	} else if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if flags.Changed("random") && random {
		cfg.Params = config.RandomParams(rand.New(rand.NewSource(cfg.Seed)))
	}

	if flags.Changed("alpha") {
		cfg.Params.Alpha = alpha
	}
	if flags.Changed("sigma") {
		cfg.Params.Sigma = sigma
	}
	if flags.Changed("mu") {
		cfg.Params.Mu = mu
	}
	if flags.Changed("variant") {
		v, err := dynamo.ParseVariant(variant)
		if err != nil {
			return nil, err
		}
		cfg.Variant = v
	}
	if flags.Changed("iterations") {
		cfg.Iterations = iterations
	}
	if flags.Changed("skip") {
		cfg.Skip = skip
	}
	if flags.Changed("x0") {
		cfg.Initial.X = x0
	}
	if flags.Changed("y0") {
		cfg.Initial.Y = y0
	}
	if flags.Changed("width") {
		cfg.Viewport.Width = width
	}
	if flags.Changed("height") {
		cfg.Viewport.Height = height
	}
	if flags.Changed("padding") {
		cfg.Viewport.Padding = padding
	}
	if flags.Changed("radius") {
		cfg.Style.Radius = radius
	}
	if flags.Changed("color") {
		cfg.Style.Color = fgColor
	}
	if flags.Changed("background") {
		cfg.Style.Background = bgColor
	}
	if flags.Changed("opacity") {
		cfg.Style.Opacity = opacity
	}
	if flags.Changed("out") {
		cfg.Output = output
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// stateFor builds the explorer state for cfg, labelled with the preset or
// random draw that produced it.
func stateFor(cmd *cobra.Command, cfg *config.Config) (explore.State, error) {
	st, err := explore.StateFromConfig(cfg)
	if err != nil {
		return explore.State{}, err
	}
	switch {
	case cmd.Flags().Changed("alpha"), cmd.Flags().Changed("sigma"), cmd.Flags().Changed("mu"):
		st.Source = explore.SourceManual
	case cmd.Flags().Changed("random") && random:
		st.Source = explore.SourceRandom
	case cmd.Flags().Changed("preset"):
		st.Source = explore.SourcePreset
		st.Preset = preset
	}
	return st, nil
}

func generate(cfg *config.Config) ([]dynamo.Point, error) {
	return sim.Generate(maps.New(cfg.Variant, cfg.Params), cfg.Initial, cfg.Iterations, cfg.Skip)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	st, err := stateFor(cmd, cfg)
	if err != nil {
		return err
	}

	var (
		surface viz.Surface
		save    func() error
	)
	switch strings.ToLower(filepath.Ext(cfg.Output)) {
	case ".svg":
		s := export.NewSVGSurface(st.Viewport)
		surface = s
		save = func() error { return os.WriteFile(cfg.Output, []byte(s.String()), 0644) }
	case ".png", "":
		s := export.NewPNGSurfaceFor(st.Viewport)
		surface = s
		save = func() error { return s.Save(cfg.Output) }
	default:
		return fmt.Errorf("unsupported output format %q (use .png or .svg)", filepath.Ext(cfg.Output))
	}

	f, err := explore.Visualize(cmd.Context(), surface, st)
	if err != nil {
		return err
	}
	if err := save(); err != nil {
		return err
	}

	logger.Debug("rendered", "state", st, "metrics", f.Metrics, "seed", cfg.Seed)
	fmt.Printf("wrote %s\n", cfg.Output)
	fmt.Printf("  %s\n", st)
	fmt.Printf("  %d points in %s, coverage %.1f%%\n", len(f.Points), f.Elapsed.Round(time.Millisecond), f.Metrics["coverage"]*100)

	if archiveDir == "" {
		return nil
	}
	store := storage.New(archiveDir)
	if err := store.Init(); err != nil {
		return err
	}
	id, err := store.Save(storage.RunMetadata{
		Variant:    st.Variant,
		Params:     st.Params,
		Initial:    st.Gen.Initial,
		Iterations: st.Gen.Iterations,
		Skip:       st.Gen.Skip,
		Seed:       cfg.Seed,
		Source:     st.Source.String(),
		Metrics:    f.Metrics,
	}, f.Points)
	if err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	fmt.Printf("  archived as %s\n", id)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(storeDir)
	if len(args) == 1 {
		if rmRun {
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		}
		return showRun(store, args[0])
	}

	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Printf("no runs in %s\n", storeDir)
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVARIANT\tPARAMS\tPOINTS\tCOVERAGE")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.1f%%\n", r.ID, r.Variant, r.Params, r.Points, r.Metrics["coverage"]*100)
	}
	return w.Flush()
}

func showRun(store *storage.Store, id string) error {
	meta, err := store.Load(id)
	if err != nil {
		return err
	}
	points, err := store.LoadPoints(id)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", meta.ID, meta.Timestamp.Format(time.RFC3339))
	fmt.Printf("  %s %s from %s, seed %d\n", meta.Variant, meta.Params, meta.Initial, meta.Seed)
	fmt.Printf("  window [%d, %d), %d points stored\n", meta.Skip, meta.Iterations, len(points))
	if len(points) > 0 && nonFinite(points) < 0 {
		fmt.Println(analysis.PortraitToASCII(points, 80, 24))
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVARIANT\tALPHA\tSIGMA\tMU")
	for _, p := range config.ListPresets() {
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\n", p.Name, p.Variant, p.Params.Alpha, p.Params.Sigma, p.Params.Mu)
	}
	return w.Flush()
}

func exportPoints(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	out := "orbit.csv"
	if cmd.Flags().Changed("out") {
		out = output
	}

	points, err := generate(cfg)
	if err != nil {
		return err
	}
	if n := nonFinite(points); n >= 0 {
		logger.Warn("orbit diverged", "step", cfg.Skip+n, "point", points[n])
	}

	var w io.Writer = os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if strings.ToLower(filepath.Ext(out)) == ".json" {
		err = export.WritePointsJSON(w, export.NewPointsDocument(cfg.Variant, cfg.Params, cfg.Generation(), points))
	} else {
		err = export.WritePointsCSV(w, points)
	}
	if err != nil {
		return err
	}
	if out != "-" {
		fmt.Printf("wrote %d points to %s\n", len(points), out)
	}
	return nil
}

func nonFinite(points []dynamo.Point) int {
	for i, p := range points {
		if !p.IsFinite() {
			return i
		}
	}
	return -1
}

func runGallery(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	style, err := cfg.RenderStyle()
	if err != nil {
		return err
	}
	out := "gallery.png"
	if cmd.Flags().Changed("out") {
		out = output
	}

	names := galleryPresets
	if len(names) == 0 {
		names = config.PresetNames()
	}

	tiles := make([]export.Tile, 0, len(names))
	for _, name := range names {
		pc := config.GetPreset(name)
		if pc == nil {
			return fmt.Errorf("unknown preset: %s", name)
		}
		points, err := sim.Generate(maps.New(pc.Variant, pc.Params), cfg.Initial, cfg.Iterations, cfg.Skip)
		if err != nil {
			return err
		}
		tiles = append(tiles, export.Tile{Label: name, Points: points})
	}

	opts := export.DefaultGalleryOptions()
	opts.Columns = galleryColumns
	opts.TileSize = galleryTile
	opts.Render = cfg.Viewport
	opts.Style = style

	img, err := export.Gallery(tiles, opts)
	if err != nil {
		return err
	}
	if err := draw2dimg.SaveToPngFile(out, img); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d tiles)\n", out, len(tiles))
	return nil
}
