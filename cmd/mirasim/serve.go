package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/mirasim/internal/automation"
	"github.com/san-kum/mirasim/internal/explore"
	"github.com/san-kum/mirasim/internal/logging"
	"github.com/san-kum/mirasim/internal/session"
	"github.com/san-kum/mirasim/internal/tui"
	"github.com/san-kum/mirasim/internal/web"
)

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	var serverSeed int64
	if cmd.Flags().Changed("seed") {
		serverSeed = cfg.Seed
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(web.Options{
		Base:           cfg,
		Seed:           serverSeed,
		OriginPatterns: origins,
		Logger:         logger,
	})
	logger.Info("serving explorer", "addr", "http://"+addr, "variant", cfg.Variant, "params", cfg.Params)
	return srv.ListenAndServe(ctx, addr)
}

func runExplore(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, nil)
	if err != nil {
		return err
	}
	st, err := stateFor(cmd, cfg)
	if err != nil {
		return err
	}

	// the alt screen owns the terminal, so the explorer logs nowhere
	ex := explore.New(st, session.New(), rand.New(rand.NewSource(cfg.Seed)), logging.Discard())

	opts := tui.DefaultOptions()
	opts.Theme = theme
	opts.ExportPath = exportFile
	opts.SnapshotPath = cfg.Output
	opts.SnapshotViewport = cfg.Viewport
	if opts.SnapshotStyle, err = cfg.RenderStyle(); err != nil {
		return err
	}

	return tui.Run(ex, opts)
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Info("running scenario", "name", sc.Name, "steps", len(sc.Steps))
	results, err := automation.RunScenario(ctx, sc, automation.RunOptions{OutDir: outDir, Logger: logger})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSTATE\tPOINTS\tCOVERAGE\tOUTPUT")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1f%%\t%s\n", r.Name, r.State, r.Points, r.Metrics["coverage"]*100, r.Output)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
