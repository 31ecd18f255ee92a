package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/control"
	"github.com/san-kum/fieldsim/internal/experiment"
	"github.com/san-kum/fieldsim/internal/sim"
	"gonum.org/v1/gonum/stat"
)

// saturation bounds the separations used in the fit; past it the two
// trajectories are unrelated and the log stops growing.
const saturation = 25.0

// Divergence estimates how fast two bodies started perturbation apart
// separate in the configured field. It fits ln(separation) against step
// and returns the slope. A positive value means nearby starts diverge
// exponentially.
//
// Each run gets its own pointer, so pointers that react to the body stay
// independent.
func Divergence(cfg *config.Config, perturbation float64, steps int) (float64, error) {
	if perturbation <= 0 || steps < 2 {
		return 0, fmt.Errorf("divergence: need positive perturbation and at least 2 steps")
	}

	shifted := cfg.Clone()
	shifted.Body.Offset.X += perturbation

	a, pa, err := build(cfg)
	if err != nil {
		return 0, err
	}
	b, pb, err := build(shifted)
	if err != nil {
		return 0, err
	}

	ts := make([]float64, 0, steps)
	logs := make([]float64, 0, steps)
	for i := 1; i <= steps; i++ {
		sa := a.Step(pa.Position(i, a.Body().Position))
		sb := b.Step(pb.Position(i, b.Body().Position))
		if !sa.IsValid() || !sb.IsValid() {
			break
		}

		sep := sa.Position.Dist(sb.Position)
		if sep > saturation {
			break
		}
		if sep > 0 {
			ts = append(ts, float64(i))
			logs = append(logs, math.Log(sep/perturbation))
		}
	}

	if len(ts) < 2 {
		return 0, nil
	}
	_, slope := stat.LinearRegression(ts, logs, nil, false)
	return slope, nil
}

func build(cfg *config.Config) (*sim.Simulation, control.Pointer, error) {
	exp := experiment.New(cfg)
	if err := exp.Setup(nil); err != nil {
		return nil, nil, err
	}
	s := exp.Runner().Simulation()
	p := exp.Pointer()
	s.ResetPointer(p.Position(0, s.Body().Position))
	return s, p, nil
}
