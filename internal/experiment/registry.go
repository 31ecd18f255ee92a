package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/control"
	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/metrics"
	"github.com/san-kum/fieldsim/internal/sim"
)

// Registry maps pointer kinds from config onto scripted pointers.
type Registry struct {
	pointers map[string]func(*config.Config) control.Pointer
}

func NewRegistry() *Registry {
	r := &Registry{
		pointers: make(map[string]func(*config.Config) control.Pointer),
	}

	r.pointers["still"] = func(c *config.Config) control.Pointer {
		return control.NewStill(c.Pointer.Target.Vec())
	}
	r.pointers["orbit"] = func(c *config.Config) control.Pointer {
		return control.NewOrbit(c.Center(), c.Pointer.Radius, c.Pointer.Period)
	}
	r.pointers["sweep"] = func(c *config.Config) control.Pointer {
		d := dynamo.V(c.Pointer.Radius, 0)
		return control.NewSweep(c.Center().Sub(d), c.Center().Add(d), c.Pointer.Period)
	}
	r.pointers["jitter"] = func(c *config.Config) control.Pointer {
		return control.NewJitter(c.Pointer.Target.Vec(), c.Pointer.Amplitude, c.Seed)
	}
	r.pointers["guide"] = func(c *config.Config) control.Pointer {
		pid := control.NewPID(c.Pointer.Kp, c.Pointer.Ki, c.Pointer.Kd)
		return control.NewGuide(c.Center(), c.Pointer.Target.Vec(), pid)
	}

	return r
}

func (r *Registry) GetPointer(c *config.Config) (control.Pointer, error) {
	fn, ok := r.pointers[c.Pointer.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown pointer: %s", c.Pointer.Kind)
	}
	return fn(c), nil
}

func (r *Registry) ListPointers() []string {
	names := make([]string, 0, len(r.pointers))
	for name := range r.pointers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(c *config.Config) []sim.Metric {
	return []sim.Metric{
		metrics.NewKineticEnergy(c.Body.Mass),
		metrics.NewPeakSpeed(),
		metrics.NewImpulseEffort(),
		metrics.NewContainment(c.Center(), c.Field.Radius+c.Field.Diameter),
		metrics.NewRebounds(),
		metrics.NewContactTime(),
	}
}
