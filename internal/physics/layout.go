package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/fieldsim/internal/dynamo"
)

// Default ring geometry.
const (
	DefaultRingRadius = 200.0
	DefaultDiameter   = 100.0
)

// Placement puts one charge on the ring at Angle radians.
type Placement struct {
	Angle  float64
	Charge float64
}

// Ring lays sources out on a circle around Center.
type Ring struct {
	Center     dynamo.Vec2
	Radius     float64
	Diameter   float64
	Placements []Placement
}

// DefaultRing is the reference field: one negative and two positive charges
// 120° apart, 200 units from center.
func DefaultRing(center dynamo.Vec2) Ring {
	return Ring{
		Center:   center,
		Radius:   DefaultRingRadius,
		Diameter: DefaultDiameter,
		Placements: []Placement{
			{Angle: math.Pi / 2, Charge: -0.7},
			{Angle: 5 * math.Pi / 6, Charge: 1},
			{Angle: 7 * math.Pi / 6, Charge: 1},
		},
	}
}

// Sources builds the field. An empty placement list yields an empty field.
func (r Ring) Sources() ([]Source, error) {
	sources := make([]Source, 0, len(r.Placements))
	for i, p := range r.Placements {
		pos := dynamo.V(
			r.Center.X+r.Radius*math.Cos(p.Angle),
			r.Center.Y+r.Radius*math.Sin(p.Angle),
		)
		s, err := NewSource(pos, p.Charge, r.Diameter)
		if err != nil {
			return nil, fmt.Errorf("placement %d: %w", i, err)
		}
		sources = append(sources, s)
	}
	return sources, nil
}
