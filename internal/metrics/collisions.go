package metrics

import "github.com/san-kum/fieldsim/internal/sim"

// Rebounds counts bounces off source surfaces.
type Rebounds struct {
	name  string
	count int
}

func NewRebounds() *Rebounds { return &Rebounds{name: "rebounds"} }

func (r *Rebounds) Name() string           { return r.name }
func (r *Rebounds) Observe(s sim.Snapshot) { r.count += s.Rebounds }
func (r *Rebounds) Value() float64         { return float64(r.count) }
func (r *Rebounds) Reset()                 { r.count = 0 }

// ContactTime is the fraction of steps with the body inside at least one
// source.
type ContactTime struct {
	name    string
	inside  int
	samples int
}

func NewContactTime() *ContactTime { return &ContactTime{name: "contact_time"} }

func (c *ContactTime) Name() string { return c.name }

func (c *ContactTime) Observe(s sim.Snapshot) {
	c.samples++
	if s.Contacts > 0 {
		c.inside++
	}
}

func (c *ContactTime) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.inside) / float64(c.samples)
}

func (c *ContactTime) Reset() {
	c.inside = 0
	c.samples = 0
}
