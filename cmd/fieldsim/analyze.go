package main

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/fieldsim/internal/analysis"
	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/optim"
	"github.com/san-kum/fieldsim/internal/storage"
)

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(trace) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("field: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(trace))

	marks := make(map[dynamo.Vec2]rune, len(meta.Sources))
	for _, s := range meta.Sources {
		sign := '+'
		if s.Charge < 0 {
			sign = '-'
		}
		marks[dynamo.V(s.X, s.Y)] = sign
	}
	fmt.Println(analysis.PlotASCII(analysis.Positions(trace), marks, 70, 24))

	xs := make([]float64, len(trace))
	ys := make([]float64, len(trace))
	for i, s := range trace {
		xs[i], ys[i] = s.Position.X, s.Position.Y
	}
	for _, series := range []struct {
		data    []float64
		caption string
	}{
		{xs, "x"},
		{ys, "y"},
		{analysis.Speeds(trace), "speed"},
	} {
		fmt.Println(asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		))
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(trace) < 2 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("field: %s\n\n", meta.Name)

	sum := analysis.Summarize(trace)
	fmt.Printf("steps:       %d\n", sum.Steps)
	fmt.Printf("speed:       %.4f ± %.4f (max %.4f)\n", sum.MeanSpeed, sum.StdSpeed, sum.MaxSpeed)
	fmt.Printf("path length: %.2f\n", sum.PathLength)
	fmt.Printf("centroid:    %s (spread %.2f)\n", sum.Centroid, sum.Spread)
	fmt.Printf("in contact:  %.1f%%\n", sum.ContactPct)
	fmt.Printf("rebounds:    %d\n\n", sum.Rebounds)

	xs := make([]float64, len(trace))
	for i, s := range trace {
		xs[i] = s.Position.X
	}
	ps := analysis.PowerSpectrum(xs)
	if len(ps) > 4 {
		fmt.Println(asciigraph.Plot(ps[:len(ps)/4],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (x)"),
		))
		fmt.Println()
	}
	if period, share := analysis.DominantPeriod(xs); period > 0 {
		fmt.Printf("dominant period: %.1f steps (%.0f%% of power)\n\n", period, 100*share)
	} else {
		fmt.Println("no dominant period")
	}

	fmt.Println("phase portrait (x, vx):")
	fmt.Println(analysis.PlotASCII(analysis.PhasePortrait(trace), nil, 60, 20))

	if meta.Config != nil {
		level := meta.Config.Center().Y
		if section := analysis.PoincareSection(trace, level); len(section) > 0 {
			fmt.Printf("poincare section at y=%.0f (%d crossings):\n", level, len(section))
			fmt.Println(analysis.PlotASCII(section, nil, 60, 15))
		}
	}
	return nil
}

func divergence(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	rate, err := analysis.Divergence(cfg, perturbation, cfg.Steps)
	if err != nil {
		return err
	}
	logger.Info("divergence", zap.String("field", cfg.Name), zap.Float64("rate", rate))

	fmt.Printf("divergence rate: %.6f per step\n", rate)
	if rate > 0 {
		fmt.Println("nearby starts separate exponentially")
	} else {
		fmt.Println("nearby starts stay together")
	}
	return nil
}

func scanParam(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, ok := cfg.Param(paramName); !ok {
		return fmt.Errorf("unknown parameter: %s", paramName)
	}

	ctx, cancel := signalContext()
	defer cancel()

	transient := cfg.Steps / 2
	points, err := analysis.Scan(ctx, cfg, func(c *config.Config, v float64) {
		_ = c.SetParam(paramName, v)
	}, optim.Linspace(paramMin, paramMax, numSteps), transient, cfg.Steps-transient)
	if err != nil {
		return err
	}

	fmt.Printf("distance from center vs %s\n", paramName)
	fmt.Println(analysis.ScanToASCII(points, 70, 20))
	return nil
}
