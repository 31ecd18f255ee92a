package control

import (
	"math"
	"math/rand"

	"github.com/san-kum/fieldsim/internal/dynamo"
)

// Pointer is polled once per step for the latest pointer position. body is
// the body position before the step, for pointers that react to it.
type Pointer interface {
	Position(step int, body dynamo.Vec2) dynamo.Vec2
}

// PointerFunc adapts a plain function to Pointer.
type PointerFunc func(step int, body dynamo.Vec2) dynamo.Vec2

func (f PointerFunc) Position(step int, body dynamo.Vec2) dynamo.Vec2 { return f(step, body) }

// Still never moves, so it never produces an impulse.
type Still struct {
	At dynamo.Vec2
}

func NewStill(at dynamo.Vec2) *Still { return &Still{At: at} }

func (s *Still) Position(int, dynamo.Vec2) dynamo.Vec2 { return s.At }

// Orbit circles Center once every Period steps.
type Orbit struct {
	Center dynamo.Vec2
	Radius float64
	Period int
}

func NewOrbit(center dynamo.Vec2, radius float64, period int) *Orbit {
	if period < 1 {
		period = 1
	}
	return &Orbit{Center: center, Radius: radius, Period: period}
}

func (o *Orbit) Position(step int, _ dynamo.Vec2) dynamo.Vec2 {
	angle := 2 * math.Pi * float64(step%o.Period) / float64(o.Period)
	return o.Center.Add(dynamo.V(math.Cos(angle), math.Sin(angle)).Scale(o.Radius))
}

// Sweep moves back and forth between From and To, taking Steps steps for
// each leg.
type Sweep struct {
	From, To dynamo.Vec2
	Steps    int
}

func NewSweep(from, to dynamo.Vec2, steps int) *Sweep {
	if steps < 1 {
		steps = 1
	}
	return &Sweep{From: from, To: to, Steps: steps}
}

func (s *Sweep) Position(step int, _ dynamo.Vec2) dynamo.Vec2 {
	phase := step % (2 * s.Steps)
	if phase > s.Steps {
		phase = 2*s.Steps - phase
	}
	frac := float64(phase) / float64(s.Steps)
	return s.From.Add(s.To.Sub(s.From).Scale(frac))
}

// Jitter wanders randomly around Base. Each step moves at most Amplitude on
// each axis, which makes it a noisy hand on a mouse.
type Jitter struct {
	Base      dynamo.Vec2
	Amplitude float64
	rng       *rand.Rand
	cur       dynamo.Vec2
	last      int
}

func NewJitter(base dynamo.Vec2, amplitude float64, seed int64) *Jitter {
	return &Jitter{
		Base:      base,
		Amplitude: amplitude,
		rng:       rand.New(rand.NewSource(seed)),
		cur:       base,
		last:      -1,
	}
}

func (j *Jitter) Position(step int, _ dynamo.Vec2) dynamo.Vec2 {
	if step <= j.last {
		return j.cur
	}
	j.last = step
	if step == 0 {
		return j.cur
	}
	j.cur = j.cur.Add(dynamo.V(
		(j.rng.Float64()*2-1)*j.Amplitude,
		(j.rng.Float64()*2-1)*j.Amplitude,
	))
	// drift back toward the base so the walk stays on screen
	j.cur = j.cur.Add(j.Base.Sub(j.cur).Scale(0.02))
	return j.cur
}
