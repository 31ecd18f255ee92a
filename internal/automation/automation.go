package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/sim"
	"github.com/san-kum/fieldsim/internal/storage"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Preset and Config are alternatives; with
// neither, the default config is used.
type ScenarioStep struct {
	Preset  string             `yaml:"preset"`
	Config  string             `yaml:"config"`
	Pointer string             `yaml:"pointer"`
	Steps   int                `yaml:"steps"`
	Params  map[string]float64 `yaml:"params"`
	SaveAs  string             `yaml:"save_as"`
}

// Outcome is the result of one scenario step.
type Outcome struct {
	Name   string
	RunID  string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func (s ScenarioStep) build() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Preset != "" && s.Config != "":
		return nil, fmt.Errorf("preset and config are exclusive")
	case s.Preset != "":
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	case s.Config != "":
		var err error
		if cfg, err = config.Load(s.Config); err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
	}

	if s.Pointer != "" {
		cfg.Pointer.Kind = s.Pointer
	}
	if s.Steps > 0 {
		cfg.Steps = s.Steps
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	for k, v := range s.Params {
		if err := cfg.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// RunScenario executes every step in order. Runs are saved when store is
// non-nil. It stops at the first failing step and returns what completed.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store, logger *zap.Logger) ([]Outcome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	outcomes := make([]Outcome, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.build()
		if err != nil {
			return outcomes, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Info("scenario step", zap.Int("step", i+1), zap.Int("of", len(scenario.Steps)), zap.String("config", cfg.Name))

		exp := experiment.New(cfg)
		if err := exp.Setup(logger); err != nil {
			return outcomes, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("step %d run: %w", i+1, err)
		}

		out := Outcome{Name: cfg.Name, Result: result}
		if store != nil {
			out.RunID, err = store.Save(cfg, exp.Runner().Simulation().Sources(), result)
			if err != nil {
				return outcomes, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		outcomes = append(outcomes, out)
	}

	return outcomes, nil
}

// ParameterSweep varies one parameter over an even range.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	Final      sim.Snapshot
	Metrics    map[string]float64
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *zap.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base.Clone()
		if err := cfg.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(nil); err != nil {
			return nil, fmt.Errorf("%s=%v: %w", sweep.ParamName, paramVal, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Final:      result.Snapshots[len(result.Snapshots)-1],
			Metrics:    result.Metrics,
		})
		logger.Debug("sweep point", zap.Int("index", i+1), zap.String("param", sweep.ParamName), zap.Float64("value", paramVal))
	}

	return results, nil
}

// MonteCarloConfig perturbs the body start uniformly within Perturbation
// on each axis.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID int
	Start   dynamo.Vec2
	Final   dynamo.Vec2
	// Captured is true when the body ends within the field's max distance
	// of the center.
	Captured bool
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, logger *zap.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		c := cfg.Base.Clone()
		c.Body.Offset.X += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
		c.Body.Offset.Y += (rng.Float64() - 0.5) * 2 * cfg.Perturbation

		exp := experiment.New(c)
		if err := exp.Setup(nil); err != nil {
			return nil, err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		final := result.Snapshots[len(result.Snapshots)-1].Position
		results = append(results, MonteCarloResult{
			TrialID:  trial,
			Start:    c.BodyStart(),
			Final:    final,
			Captured: final.IsValid() && final.Dist(c.Center()) <= c.Field.MaxDistance,
		})

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo progress", zap.Int("done", trial+1), zap.Int("trials", cfg.NumTrials))
		}
	}

	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (captured int, escaped int) {
	for _, r := range results {
		if r.Captured {
			captured++
		} else {
			escaped++
		}
	}
	return
}
