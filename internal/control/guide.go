package control

import "github.com/san-kum/fieldsim/internal/dynamo"

// DefaultGuideStep is the largest pointer move a Guide makes per step.
const DefaultGuideStep = 8.0

// Guide moves the pointer the way a player would to herd the body toward
// Target: a PID on the body's position error drives the pointer, and the
// pointer motion becomes the impulse.
type Guide struct {
	Target  dynamo.Vec2
	MaxStep float64
	pid     *PID
	cur     dynamo.Vec2
	started bool
}

func NewGuide(start, target dynamo.Vec2, pid *PID) *Guide {
	return &Guide{Target: target, MaxStep: DefaultGuideStep, pid: pid, cur: start}
}

func (g *Guide) Position(step int, body dynamo.Vec2) dynamo.Vec2 {
	if !g.started {
		// first sample is the baseline
		g.started = true
		return g.cur
	}
	move := g.pid.Update(g.Target.Sub(body)).ClampMag(g.MaxStep)
	g.cur = g.cur.Add(move)
	return g.cur
}

// Reset puts the pointer back at start and clears the loop.
func (g *Guide) Reset(start dynamo.Vec2) {
	g.cur = start
	g.started = false
	g.pid.Reset()
}
