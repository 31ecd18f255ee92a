package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/experiment"
	"golang.org/x/sync/errgroup"
)

// ErrNoEvaluations is returned when no combination produced the metric.
var ErrNoEvaluations = errors.New("grid: no combination could be evaluated")

// GridSearch evaluates every combination of parameter values. Each
// combination runs its own experiment, so evaluations proceed in parallel.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int

	// Maximize picks the highest metric value instead of the lowest.
	Maximize bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: runtime.NumCPU()}
}

func (g *GridSearch) SetWorkers(n int) {
	if n > 0 {
		g.workers = n
	}
}

// Builder turns one parameter combination into a ready experiment.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

// FromConfig returns a Builder that applies the combination to a copy of
// base through config.SetParam.
func FromConfig(base *config.Config) Builder {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for k, v := range params {
			if err := cfg.SetParam(k, v); err != nil {
				return nil, err
			}
		}
		exp := experiment.New(cfg)
		if err := exp.Setup(nil); err != nil {
			return nil, err
		}
		return exp, nil
	}
}

// Search returns the best combination, its metric value and how many
// combinations produced a value. Combinations that fail to build or run
// are skipped.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (map[string]float64, float64, int, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, 0, fmt.Errorf("grid: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	combos := g.combinations(0, map[string]float64{})
	values := make([]float64, len(combos))
	ok := make([]bool, len(combos))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, params := range combos {
		eg.Go(func() error {
			if egCtx.Err() != nil {
				return egCtx.Err()
			}
			exp, err := build(params)
			if err != nil {
				return nil
			}
			result, err := exp.Run(egCtx)
			if err != nil {
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				return nil
			}
			v, found := result.Metrics[metricName]
			if !found || math.IsNaN(v) {
				return nil
			}
			values[i], ok[i] = v, true
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, 0, 0, err
	}

	best := math.Inf(1)
	if g.Maximize {
		best = math.Inf(-1)
	}
	var bestParams map[string]float64
	evaluated := 0
	for i, v := range values {
		if !ok[i] {
			continue
		}
		evaluated++
		if (g.Maximize && v > best) || (!g.Maximize && v < best) {
			best = v
			bestParams = combos[i]
		}
	}
	if evaluated == 0 {
		return nil, 0, 0, fmt.Errorf("%w: %d combinations, metric %q", ErrNoEvaluations, len(combos), metricName)
	}
	return bestParams, best, evaluated, nil
}

func (g *GridSearch) combinations(depth int, current map[string]float64) []map[string]float64 {
	if depth == len(g.paramNames) {
		out := make(map[string]float64, len(current))
		for k, v := range current {
			out[k] = v
		}
		return []map[string]float64{out}
	}

	var all []map[string]float64
	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		all = append(all, g.combinations(depth+1, current)...)
	}
	delete(current, name)
	return all
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
	return out
}
