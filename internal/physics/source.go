package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/fieldsim/internal/dynamo"
)

// Source is a fixed point charge. Its fields cannot change after
// construction; copies are safe to share.
type Source struct {
	position dynamo.Vec2
	charge   float64
	diameter float64
}

// NewSource validates and builds a Source. A zero diameter is allowed and
// makes the source a pure point charge that never collides.
func NewSource(pos dynamo.Vec2, charge, diameter float64) (Source, error) {
	if !pos.IsValid() || math.IsNaN(charge) || math.IsInf(charge, 0) {
		return Source{}, fmt.Errorf("%w: position %s charge %v", dynamo.ErrInvalidSource, pos, charge)
	}
	if diameter < 0 || math.IsNaN(diameter) || math.IsInf(diameter, 0) {
		return Source{}, fmt.Errorf("%w: diameter %v", dynamo.ErrInvalidSource, diameter)
	}
	return Source{position: pos, charge: charge, diameter: diameter}, nil
}

func (s Source) Position() dynamo.Vec2 { return s.position }
func (s Source) Charge() float64       { return s.charge }
func (s Source) Diameter() float64     { return s.diameter }

// Radius is the collision radius, half the diameter.
func (s Source) Radius() float64 { return s.diameter / 2 }

// Positive reports the display polarity of the source.
func (s Source) Positive() bool { return s.charge > 0 }
