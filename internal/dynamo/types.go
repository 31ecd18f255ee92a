package dynamo

import (
	"fmt"
	"math"
)

// Vec2 is a 2D vector. All methods return new values.
type Vec2 struct {
	X, Y float64
}

// Zero is the zero vector.
var Zero = Vec2{}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

func (v Vec2) MagSq() float64 { return v.X*v.X + v.Y*v.Y }

func (v Vec2) Mag() float64 { return math.Hypot(v.X, v.Y) }

func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Mag() }

func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// IsValid reports whether both components are finite.
func (v Vec2) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Normalized returns the unit vector in the direction of v, or Zero when v
// has no length.
func (v Vec2) Normalized() Vec2 {
	m := v.Mag()
	if m == 0 {
		return Zero
	}
	return Vec2{v.X / m, v.Y / m}
}

// WithMag rescales v to magnitude t keeping its direction. A negative t
// points the result opposite to v. Zero input stays zero.
func (v Vec2) WithMag(t float64) Vec2 {
	return v.Normalized().Scale(t)
}

// ClampMag limits the magnitude of v to max.
func (v Vec2) ClampMag(max float64) Vec2 {
	m := v.Mag()
	if m <= max || m == 0 {
		return v
	}
	return v.Scale(max / m)
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", v.X, v.Y)
}
