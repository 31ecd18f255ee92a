package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/fieldsim/internal/control"
	"github.com/san-kum/fieldsim/internal/dynamo"
	"go.uber.org/zap"
)

// Runner drives a Simulation for a fixed number of steps, polling a
// pointer each step and feeding metrics and observers.
type Runner struct {
	sim       *Simulation
	pointer   control.Pointer
	metrics   []Metric
	observers []Observer
	logger    *zap.Logger
}

func NewRunner(s *Simulation, pointer control.Pointer) *Runner {
	return &Runner{
		sim:       s,
		pointer:   pointer,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    s.logger,
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Simulation() *Simulation { return r.sim }

func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Snapshots: make([]Snapshot, 0, cfg.Steps+1),
		Metrics:   make(map[string]float64),
		Errors:    make([]error, 0),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	start := r.sim.Snapshot()
	start.Pointer = r.pointer.Position(start.Step, start.Position)
	r.sim.ResetPointer(start.Pointer)
	result.Snapshots = append(result.Snapshots, start)

	r.logger.Info("run started", zap.Int("steps", cfg.Steps), zap.Int("sources", len(r.sim.sources)))

	var runErr error
	for i := 0; i < cfg.Steps; i++ {
		if err := ctx.Err(); err != nil {
			cur := r.sim.Snapshot()
			runErr = &dynamo.SimulationError{
				Step:     cur.Step,
				Position: cur.Position,
				Velocity: cur.Velocity,
				Wrapped:  fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err),
			}
			break
		}

		body := r.sim.body.Position
		snap := r.sim.Step(r.pointer.Position(r.sim.steps+1, body))

		// a diverged state is never shown to metrics or observers
		if cfg.ValidateState && !snap.IsValid() {
			err := &dynamo.SimulationError{Step: snap.Step, Position: snap.Position, Velocity: snap.Velocity, Wrapped: dynamo.ErrInvalidState}
			result.Errors = append(result.Errors, err)
			r.logger.Warn("state diverged", zap.Error(err))
			break
		}

		for _, m := range r.metrics {
			m.Observe(snap)
		}
		for _, obs := range r.observers {
			obs.OnStep(snap)
		}

		result.StepsTaken++
		result.Snapshots = append(result.Snapshots, snap)
	}

	r.collect(result)

	r.logger.Info("run finished",
		zap.Int("steps", result.StepsTaken),
		zap.Stringer("position", r.sim.body.Position),
		zap.Int("errors", len(result.Errors)),
		zap.Bool("canceled", runErr != nil),
	)
	return result, runErr
}

// collect copies metric values into the result. Non-finite values are
// dropped so a result always encodes as JSON.
func (r *Runner) collect(result *Result) {
	for _, m := range r.metrics {
		v := m.Value()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			r.logger.Warn("metric not finite, dropped", zap.String("metric", m.Name()), zap.Float64("value", v))
			continue
		}
		result.Metrics[m.Name()] = v
	}
}

func validateConfig(cfg Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrParameterBounds, cfg.Steps)
	}
	return nil
}
