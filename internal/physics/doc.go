// Package physics provides the moving body and the static charges it flies
// through.
//
//   - [Source]: immutable point charge with a collision diameter
//   - [Ring]: layout policy placing sources on a circle
//   - [Body]: the single moving charge (forces, drag, Euler step, rebound)
//
// A step of the body is one unit of simulated time; there is no dt. The
// caller decides how often to step.
//
// # Collisions
//
// [Body.ResolveCollision] returns a [Contact] describing what happened so
// callers can count rebounds without inspecting velocities:
//
//	switch body.ResolveCollision(src, 0.5) {
//	case physics.ContactRebound:
//	    rebounds++
//	case physics.ContactDegenerate:
//	    // body sits on the source center; no normal this step
//	}
package physics
