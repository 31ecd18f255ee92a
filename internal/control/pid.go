package control

import "github.com/san-kum/fieldsim/internal/dynamo"

// PID is a 2D proportional-integral-derivative loop with a fixed step of
// one unit of time.
type PID struct {
	Kp float64
	Ki float64
	Kd float64

	integral dynamo.Vec2
	prevErr  dynamo.Vec2
	first    bool
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{Kp: kp, Ki: ki, Kd: kd, first: true}
}

// Update returns the correction for the current error.
func (p *PID) Update(err dynamo.Vec2) dynamo.Vec2 {
	if p.first {
		p.prevErr = err
		p.first = false
		return err.Scale(p.Kp)
	}

	p.integral = p.integral.Add(err)
	derivative := err.Sub(p.prevErr)
	p.prevErr = err

	return err.Scale(p.Kp).Add(p.integral.Scale(p.Ki)).Add(derivative.Scale(p.Kd))
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = dynamo.Zero
	p.prevErr = dynamo.Zero
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": p.Kp,
		"Ki": p.Ki,
		"Kd": p.Kd,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	}
}
