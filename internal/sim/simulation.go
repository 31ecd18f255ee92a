package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/fieldsim/internal/control"
	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/physics"
	"go.uber.org/zap"
)

// Simulation owns the body, the field and the impulse sampler, and advances
// them one step at a time. It is not safe for concurrent use; a host that
// steps from several goroutines must hold a lock around Step.
type Simulation struct {
	params  Params
	body    *physics.Body
	sources []physics.Source
	impulse *control.Impulse
	steps   int
	logger  *zap.Logger
}

type Option func(*Simulation)

// WithLogger sets the logger used for edge-case diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds a simulation. The source slice is copied.
func New(params Params, body *physics.Body, sources []physics.Source, impulse *control.Impulse, opts ...Option) (*Simulation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("sim: body is required")
	}
	if impulse == nil {
		return nil, errors.New("sim: impulse sampler is required")
	}

	s := &Simulation{
		params:  params,
		body:    body,
		sources: append([]physics.Source(nil), sources...),
		impulse: impulse,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FieldForce is the inverse-square pull of src on a charge at pos. The
// second result is false when the clamped distance puts the charge inside
// the collision radius, in which case no force applies and the caller
// resolves a collision instead.
func FieldForce(pos dynamo.Vec2, charge float64, src physics.Source, p Params) (dynamo.Vec2, bool) {
	dir := src.Position().Sub(pos)
	dist := math.Min(math.Max(dir.Mag(), p.MinDistance), p.MaxDistance)
	if dist <= src.Radius() {
		return dynamo.Zero, false
	}
	mag := p.FieldConstant * charge * src.Charge() / (dist * dist)
	return dir.WithMag(mag), true
}

// Step runs one tick with the pointer at the given position.
func (s *Simulation) Step(pointer dynamo.Vec2) Snapshot {
	snap := Snapshot{Pointer: pointer}

	for i, src := range s.sources {
		if f, ok := FieldForce(s.body.Position, s.body.Charge, src, s.params); ok {
			s.body.ApplyForce(f)
			continue
		}

		c := s.body.ResolveCollision(src, s.params.Restitution)
		if c.Inside() {
			snap.Contacts++
		}
		switch c {
		case physics.ContactRebound:
			snap.Rebounds++
		case physics.ContactDegenerate:
			s.logger.Debug("body on source center, rebound skipped",
				zap.Int("step", s.steps+1),
				zap.Int("source", i),
				zap.Stringer("position", s.body.Position),
			)
		}
	}

	snap.Impulse = s.impulse.Sample(pointer)
	s.body.ApplyForce(snap.Impulse)
	s.body.Step()

	s.steps++
	snap.Step = s.steps
	snap.Position = s.body.Position
	snap.Velocity = s.body.Velocity
	return snap
}

// Snapshot returns the current state without stepping.
func (s *Simulation) Snapshot() Snapshot {
	return Snapshot{
		Step:     s.steps,
		Position: s.body.Position,
		Velocity: s.body.Velocity,
	}
}

// ResetPointer moves the impulse baseline to p without producing force.
func (s *Simulation) ResetPointer(p dynamo.Vec2) { s.impulse.Reset(p) }

// Body returns a copy of the body.
func (s *Simulation) Body() physics.Body { return *s.body }

// Sources returns a copy of the field.
func (s *Simulation) Sources() []physics.Source {
	return append([]physics.Source(nil), s.sources...)
}

func (s *Simulation) Params() Params { return s.params }

func (s *Simulation) Steps() int { return s.steps }

func (s *Simulation) String() string {
	return fmt.Sprintf("sim(step=%d sources=%d pos=%s vel=%s)", s.steps, len(s.sources), s.body.Position, s.body.Velocity)
}
