package metrics

import (
	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/sim"
)

// Containment is the fraction of steps the body spent within radius of
// center. A body that wanders off the field scores low.
type Containment struct {
	name       string
	center     dynamo.Vec2
	radius     float64
	violations int
	samples    int
}

func NewContainment(center dynamo.Vec2, radius float64) *Containment {
	return &Containment{
		name:   "containment",
		center: center,
		radius: radius,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(s sim.Snapshot) {
	c.samples++
	if !s.IsValid() || s.Position.Dist(c.center) > c.radius {
		c.violations++
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
