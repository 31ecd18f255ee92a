package control

import "github.com/san-kum/fieldsim/internal/dynamo"

// Default impulse tuning.
const (
	DefaultThreshold    = 3.0
	DefaultMaxMagnitude = 4.0
	DefaultDamping      = 0.6
)

// ImpulseConfig tunes how pointer motion turns into force.
type ImpulseConfig struct {
	// Threshold is the largest per-sample movement treated as jitter.
	Threshold float64
	// MaxMagnitude caps the returned force.
	MaxMagnitude float64
	// Damping scales the pointer delta before capping.
	Damping float64
}

func DefaultImpulseConfig() ImpulseConfig {
	return ImpulseConfig{
		Threshold:    DefaultThreshold,
		MaxMagnitude: DefaultMaxMagnitude,
		Damping:      DefaultDamping,
	}
}

// Impulse converts successive pointer samples into a bounded push.
// It is owned by a single simulation and is not safe for concurrent use.
type Impulse struct {
	cfg  ImpulseConfig
	prev dynamo.Vec2
}

// NewImpulse starts the velocity baseline at origin.
func NewImpulse(cfg ImpulseConfig, origin dynamo.Vec2) *Impulse {
	return &Impulse{cfg: cfg, prev: origin}
}

func (i *Impulse) Config() ImpulseConfig { return i.cfg }

// Reset moves the baseline without producing a force.
func (i *Impulse) Reset(origin dynamo.Vec2) { i.prev = origin }

// Sample returns the force for the pointer moving to cur. The baseline
// always advances, even when the movement is below threshold.
func (i *Impulse) Sample(cur dynamo.Vec2) dynamo.Vec2 {
	delta := cur.Sub(i.prev)
	i.prev = cur

	if delta.Mag() <= i.cfg.Threshold {
		return dynamo.Zero
	}
	return delta.Scale(i.cfg.Damping).ClampMag(i.cfg.MaxMagnitude)
}
