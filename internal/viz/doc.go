// Package viz provides the terminal front end for field simulations.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [RunInteractive]: preset menu and parameter editor leading into the live view
//   - [Model]: the live view, stepping one field and drawing it every frame
//   - [Canvas]: Braille-based pixel canvas with styled glyph overlays
//   - [Viewport]: mapping between field coordinates and canvas pixels
//
// # Input
//
// Moving the mouse over the canvas moves the pointer; fast moves push the
// body. The arrow keys nudge the pointer in fixed steps.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	Tab   - Switch to the next preset field
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[]    - Time travel (rewind/forward)
//
// Recordings are written to fieldsim.gif in the current directory.
package viz
