package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/fieldsim/internal/dynamo"
)

// Default field constants.
const (
	DefaultFieldConstant = 5000.0
	DefaultRestitution   = 0.5
	DefaultMinDistance   = 20.0
	DefaultMaxDistance   = 500.0
)

// Params are the field-wide constants of a simulation.
type Params struct {
	// FieldConstant is k in k*q1*q2/d².
	FieldConstant float64
	// Restitution is the fraction of normal speed kept after a rebound.
	Restitution float64
	// MinDistance and MaxDistance clamp the distance used by the force law.
	MinDistance float64
	MaxDistance float64
}

func DefaultParams() Params {
	return Params{
		FieldConstant: DefaultFieldConstant,
		Restitution:   DefaultRestitution,
		MinDistance:   DefaultMinDistance,
		MaxDistance:   DefaultMaxDistance,
	}
}

func (p Params) Validate() error {
	for name, v := range map[string]float64{
		"field constant": p.FieldConstant,
		"restitution":    p.Restitution,
		"min distance":   p.MinDistance,
		"max distance":   p.MaxDistance,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is %v", dynamo.ErrParameterBounds, name, v)
		}
	}
	if p.MinDistance <= 0 {
		return fmt.Errorf("%w: min distance must be positive, got %v", dynamo.ErrParameterBounds, p.MinDistance)
	}
	if p.MaxDistance < p.MinDistance {
		return fmt.Errorf("%w: max distance %v below min distance %v", dynamo.ErrParameterBounds, p.MaxDistance, p.MinDistance)
	}
	if p.Restitution < 0 {
		return fmt.Errorf("%w: restitution must be non-negative, got %v", dynamo.ErrParameterBounds, p.Restitution)
	}
	return nil
}

// Snapshot is the read-only view of the body after a step. Step counts
// completed steps, so the initial state has Step 0.
type Snapshot struct {
	Step     int
	Position dynamo.Vec2
	Velocity dynamo.Vec2
	// Impulse is the pointer force applied during the step.
	Impulse dynamo.Vec2
	Pointer dynamo.Vec2
	// Contacts counts sources whose collision radius held the body.
	Contacts int
	// Rebounds counts contacts that bounced the body.
	Rebounds int
}

func (s Snapshot) Speed() float64 { return s.Velocity.Mag() }

func (s Snapshot) IsValid() bool { return s.Position.IsValid() && s.Velocity.IsValid() }

type Metric interface {
	Name() string
	Observe(s Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Snapshot)
}

type Config struct {
	Steps         int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Steps:         2000,
		ValidateState: true,
	}
}

type Result struct {
	Snapshots  []Snapshot
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Trajectory returns the body positions of the run.
func (r *Result) Trajectory() []dynamo.Vec2 {
	pts := make([]dynamo.Vec2, len(r.Snapshots))
	for i, s := range r.Snapshots {
		pts[i] = s.Position
	}
	return pts
}
