package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/fieldsim/internal/dynamo"
)

const (
	DefaultDrag      = 0.05
	DefaultRestSpeed = 0.1
)

// Contact is the outcome of resolving the body against one source.
type Contact uint8

const (
	// ContactNone means the body is outside the source's collision radius.
	ContactNone Contact = iota
	// ContactDegenerate means the body sits exactly on the source center,
	// where no normal exists. The rebound is skipped for this step.
	ContactDegenerate
	// ContactSeparating means the body is inside but already moving away.
	ContactSeparating
	// ContactRebound means the body was moving in and got bounced out.
	ContactRebound
)

func (c Contact) String() string {
	switch c {
	case ContactNone:
		return "none"
	case ContactDegenerate:
		return "degenerate"
	case ContactSeparating:
		return "separating"
	case ContactRebound:
		return "rebound"
	}
	return fmt.Sprintf("contact(%d)", uint8(c))
}

// Inside reports whether the body was within the collision radius.
func (c Contact) Inside() bool { return c != ContactNone }

// Body is the single moving charge. Acceleration accumulates forces during
// a step and is cleared by Step.
type Body struct {
	Position     dynamo.Vec2
	Velocity     dynamo.Vec2
	Acceleration dynamo.Vec2
	Charge       float64
	// Drag scales the squared-speed drag force.
	Drag float64
	// RestSpeed is the speed below which a rebounded body is stopped.
	RestSpeed float64

	mass float64
}

// NewBody builds a body at rest. mass must be positive and finite.
func NewBody(pos dynamo.Vec2, charge, mass float64) (*Body, error) {
	if mass <= 0 || math.IsNaN(mass) || math.IsInf(mass, 0) {
		return nil, fmt.Errorf("%w: got %v", dynamo.ErrInvalidMass, mass)
	}
	return &Body{
		Position:  pos,
		Charge:    charge,
		Drag:      DefaultDrag,
		RestSpeed: DefaultRestSpeed,
		mass:      mass,
	}, nil
}

func (b *Body) Mass() float64 { return b.mass }

func (b *Body) Speed() float64 { return b.Velocity.Mag() }

func (b *Body) KineticEnergy() float64 { return 0.5 * b.mass * b.Velocity.MagSq() }

// ApplyForce accumulates f/m into the acceleration.
func (b *Body) ApplyForce(f dynamo.Vec2) {
	b.Acceleration = b.Acceleration.Add(f.Scale(1 / b.mass))
}

// ApplyDrag applies -c|v|² along -v̂. No-op at rest.
func (b *Body) ApplyDrag() {
	if b.Velocity.IsZero() {
		return
	}
	drag := b.Velocity.Normalized().Scale(-b.Drag * b.Velocity.MagSq())
	b.ApplyForce(drag)
}

// Step advances one unit of time: drag, v += a, p += v, a = 0.
func (b *Body) Step() {
	b.ApplyDrag()
	b.Velocity = b.Velocity.Add(b.Acceleration)
	b.Position = b.Position.Add(b.Velocity)
	b.Acceleration = dynamo.Zero
}

// ResolveCollision bounces the body off src when it is inside the collision
// radius and moving inward. The rebound is a direct velocity correction,
// not a force, so mass does not scale it.
func (b *Body) ResolveCollision(src Source, restitution float64) Contact {
	d := b.Position.Dist(src.Position())
	if d > src.Radius() {
		return ContactNone
	}
	if d == 0 {
		return ContactDegenerate
	}

	normal := b.Position.Sub(src.Position()).Normalized()
	approach := b.Velocity.Dot(normal)
	if approach >= 0 {
		return ContactSeparating
	}

	b.Velocity = b.Velocity.Add(normal.Scale(-approach * (1 + restitution)))
	if b.Velocity.Mag() < b.RestSpeed {
		b.Velocity = dynamo.Zero
	}
	return ContactRebound
}
