// Package control turns pointer input into force on the body.
//
//   - [Impulse]: converts pointer samples into a bounded push
//   - [Pointer]: polled pointer source (one position per step)
//   - [Still], [Orbit], [Sweep], [Jitter]: scripted pointers for headless runs
//   - [Manual]: pointer fed by mouse events in the live view
//   - [Guide]: PID-driven pointer that herds the body toward a target
//
// # Usage
//
//	imp := control.NewImpulse(control.DefaultImpulseConfig(), start)
//	ptr := control.NewOrbit(center, 150, 240)
//	force := imp.Sample(ptr.Position(step, body.Position))
//
// Pointers are polled rather than pushed, so a host event loop only has to
// keep the latest position somewhere a [Pointer] can read it.
package control
