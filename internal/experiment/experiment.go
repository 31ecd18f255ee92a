package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/control"
	"github.com/san-kum/fieldsim/internal/sim"
	"go.uber.org/zap"
)

// Experiment wires a config into a ready-to-run simulation.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	runner   *sim.Runner
	pointer  control.Pointer
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
	}
}

// Setup builds the simulation with the pointer named in the config.
func (e *Experiment) Setup(logger *zap.Logger) error {
	p, err := e.registry.GetPointer(e.cfg)
	if err != nil {
		return err
	}
	return e.SetupWith(logger, p)
}

// SetupWith builds the simulation driven by an explicit pointer.
func (e *Experiment) SetupWith(logger *zap.Logger, pointer control.Pointer) error {
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", e.cfg.Name, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	body, err := e.cfg.NewBody()
	if err != nil {
		return err
	}
	sources, err := e.cfg.Sources()
	if err != nil {
		return fmt.Errorf("field: %w", err)
	}
	impulse := control.NewImpulse(e.cfg.ImpulseParams(), body.Position)

	s, err := sim.New(e.cfg.SimParams(), body, sources, impulse,
		sim.WithLogger(logger.With(zap.String("config", e.cfg.Name))))
	if err != nil {
		return err
	}

	e.pointer = pointer
	e.runner = sim.NewRunner(s, pointer)
	for _, m := range e.registry.DefaultMetrics(e.cfg) {
		e.runner.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.runner == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.runner.Run(ctx, sim.Config{
		Steps:         e.cfg.Steps,
		ValidateState: true,
	})
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Runner returns the underlying runner for adding observers.
func (e *Experiment) Runner() *sim.Runner { return e.runner }

func (e *Experiment) Pointer() control.Pointer { return e.pointer }
