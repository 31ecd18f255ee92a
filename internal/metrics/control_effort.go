package metrics

import "github.com/san-kum/fieldsim/internal/sim"

// ImpulseEffort is the mean magnitude of the pointer impulse per step.
type ImpulseEffort struct {
	name    string
	sum     float64
	samples int
}

func NewImpulseEffort() *ImpulseEffort {
	return &ImpulseEffort{
		name: "impulse_effort",
	}
}

func (c *ImpulseEffort) Name() string {
	return c.name
}

func (c *ImpulseEffort) Observe(s sim.Snapshot) {
	c.sum += s.Impulse.Mag()
	c.samples++
}

func (c *ImpulseEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ImpulseEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
