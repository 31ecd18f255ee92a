// Package dynamo provides core primitives shared by the field simulation.
//
// The package defines the value types and errors every other package
// builds on:
//
//   - [Vec2]: 2D vector with pure, value-returning arithmetic
//   - [SimulationError]: step-scoped failure raised by the run loop
//   - sentinel errors for construction and parameter validation
//
// # Example
//
//	dir := src.Sub(pos)
//	force := dir.WithMag(k * q1 * q2 / dir.MagSq())
//
// # Zero Vectors
//
// Operations that need a direction ([Vec2.Normalized], [Vec2.WithMag])
// return the zero vector for a zero input instead of failing.
package dynamo
