package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/fieldsim/internal/control"
	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/physics"
)

func testSim(t *testing.T, charge float64) *Simulation {
	t.Helper()
	b, err := physics.NewBody(dynamo.Zero, charge, 1)
	if err != nil {
		t.Fatal(err)
	}
	src, err := physics.NewSource(dynamo.V(100, 0), 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(DefaultParams(), b, []physics.Source{src}, control.NewImpulse(control.DefaultImpulseConfig(), dynamo.Zero))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRunnerRun(t *testing.T) {
	r := NewRunner(testSim(t, 1), control.NewStill(dynamo.V(-50, -50)))

	result, err := r.Run(context.Background(), Config{Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Snapshots) != 11 {
		t.Errorf("expected 11 snapshots, got %d", len(result.Snapshots))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if result.Snapshots[0].Step != 0 || result.Snapshots[10].Step != 10 {
		t.Errorf("unexpected step numbering: %d..%d", result.Snapshots[0].Step, result.Snapshots[10].Step)
	}

	// the pointer never moves after the initial baseline reset
	for _, s := range result.Snapshots {
		if !s.Impulse.IsZero() {
			t.Fatalf("step %d: unexpected impulse %v", s.Step, s.Impulse)
		}
	}

	if got := result.Trajectory()[10].X; got <= 0 {
		t.Errorf("expected body pulled toward +x, got x=%.4f", got)
	}
}

func TestRunnerInvalidConfig(t *testing.T) {
	r := NewRunner(testSim(t, 1), control.NewStill(dynamo.Zero))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero steps", Config{Steps: 0}},
		{"negative steps", Config{Steps: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Run(context.Background(), tt.cfg)
			if !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(s Snapshot) {
	t.count++
	t.sum += s.Position.X
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

type countingObserver struct{ steps []int }

func (c *countingObserver) OnStep(s Snapshot) { c.steps = append(c.steps, s.Step) }

func TestRunnerMetrics(t *testing.T) {
	r := NewRunner(testSim(t, 1), control.NewStill(dynamo.Zero))

	metric := &testMetric{count: 99}
	obs := &countingObserver{}
	r.AddMetric(metric)
	r.AddObserver(obs)

	result, err := r.Run(context.Background(), Config{Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
	if len(obs.steps) != 10 || obs.steps[0] != 1 {
		t.Errorf("unexpected observer calls: %v", obs.steps)
	}
}

func TestRunnerCanceled(t *testing.T) {
	r := NewRunner(testSim(t, 1), control.NewStill(dynamo.Zero))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.Run(ctx, Config{Steps: 100})
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Fatalf("expected ErrContextCanceled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) || simErr.Step != 0 {
		t.Errorf("expected SimulationError at step 0, got %v", err)
	}
	if result == nil || len(result.Snapshots) != 1 {
		t.Errorf("expected partial result with the initial snapshot")
	}
}

type cancelObserver struct {
	at     int
	cancel context.CancelFunc
}

func (c cancelObserver) OnStep(s Snapshot) {
	if s.Step == c.at {
		c.cancel()
	}
}

func TestRunnerCanceledMidRun(t *testing.T) {
	r := NewRunner(testSim(t, 1), control.NewStill(dynamo.Zero))
	metric := &testMetric{}
	r.AddMetric(metric)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.AddObserver(cancelObserver{at: 7, cancel: cancel})

	result, err := r.Run(ctx, Config{Steps: 100})
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Fatalf("expected ErrContextCanceled, got %v", err)
	}
	if result.StepsTaken != 7 || len(result.Snapshots) != 8 {
		t.Errorf("expected 7 steps and 8 snapshots, got %d and %d", result.StepsTaken, len(result.Snapshots))
	}
	if got, ok := result.Metrics["test"]; !ok || got != metric.Value() {
		t.Errorf("expected metrics collected on cancel, got %v", result.Metrics)
	}
}

type infMetric struct{}

func (infMetric) Name() string     { return "inf" }
func (infMetric) Observe(Snapshot) {}
func (infMetric) Value() float64   { return math.Inf(1) }
func (infMetric) Reset()           {}

func TestRunnerDropsNonFiniteMetrics(t *testing.T) {
	r := NewRunner(testSim(t, 1), control.NewStill(dynamo.Zero))
	r.AddMetric(infMetric{})
	r.AddMetric(&testMetric{})

	result, err := r.Run(context.Background(), Config{Steps: 3})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := result.Metrics["inf"]; ok {
		t.Error("expected the infinite metric to be dropped")
	}
	if _, ok := result.Metrics["test"]; !ok {
		t.Error("expected the finite metric to be kept")
	}
}

func TestRunnerHidesInvalidStateFromMetrics(t *testing.T) {
	r := NewRunner(testSim(t, math.NaN()), control.NewStill(dynamo.Zero))
	metric := &testMetric{}
	obs := &countingObserver{}
	r.AddMetric(metric)
	r.AddObserver(obs)

	if _, err := r.Run(context.Background(), Config{Steps: 5, ValidateState: true}); err != nil {
		t.Fatal(err)
	}
	if metric.count != 0 || len(obs.steps) != 0 {
		t.Errorf("expected no observations of a diverged state, got %d metric and %d observer calls", metric.count, len(obs.steps))
	}
}

func TestRunnerStopsOnInvalidState(t *testing.T) {
	r := NewRunner(testSim(t, math.NaN()), control.NewStill(dynamo.Zero))

	result, err := r.Run(context.Background(), Config{Steps: 50, ValidateState: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}
	if !errors.Is(result.Errors[0], dynamo.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", result.Errors[0])
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no valid steps, got %d", result.StepsTaken)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{"defaults", func(*Params) {}, false},
		{"zero restitution", func(p *Params) { p.Restitution = 0 }, false},
		{"negative restitution", func(p *Params) { p.Restitution = -0.1 }, true},
		{"zero min distance", func(p *Params) { p.MinDistance = 0 }, true},
		{"max below min", func(p *Params) { p.MaxDistance = 5 }, true},
		{"equal bounds", func(p *Params) { p.MaxDistance = p.MinDistance }, false},
		{"nan constant", func(p *Params) { p.FieldConstant = math.NaN() }, true},
		{"inf max", func(p *Params) { p.MaxDistance = math.Inf(1) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}
