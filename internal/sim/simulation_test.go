package sim_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/fieldsim/internal/control"
	"github.com/san-kum/fieldsim/internal/dynamo"
	"github.com/san-kum/fieldsim/internal/physics"
	"github.com/san-kum/fieldsim/internal/sim"
)

const tol = 1e-9

func body(pos, vel dynamo.Vec2) *physics.Body {
	b, err := physics.NewBody(pos, 1, 1)
	Expect(err).NotTo(HaveOccurred())
	b.Drag = 0
	b.Velocity = vel
	return b
}

func source(pos dynamo.Vec2, charge, diameter float64) physics.Source {
	s, err := physics.NewSource(pos, charge, diameter)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func newSim(b *physics.Body, sources ...physics.Source) *sim.Simulation {
	s, err := sim.New(sim.DefaultParams(), b, sources, control.NewImpulse(control.DefaultImpulseConfig(), dynamo.Zero))
	Expect(err).NotTo(HaveOccurred())
	return s
}

func expectVec(got, want dynamo.Vec2) {
	ExpectWithOffset(1, got.X).To(BeNumerically("~", want.X, tol))
	ExpectWithOffset(1, got.Y).To(BeNumerically("~", want.Y, tol))
}

var _ = Describe("Simulation", func() {
	Describe("a single step", func() {
		It("pulls a like-charged body toward a distant source", func() {
			s := newSim(body(dynamo.Zero, dynamo.Zero), source(dynamo.V(100, 0), 1, 10))

			snap := s.Step(dynamo.Zero)

			expectVec(snap.Velocity, dynamo.V(0.5, 0))
			expectVec(snap.Position, dynamo.V(0.5, 0))
			Expect(snap.Step).To(Equal(1))
			Expect(snap.Contacts).To(BeZero())
		})

		It("pushes an oppositely charged body away", func() {
			s := newSim(body(dynamo.Zero, dynamo.Zero), source(dynamo.V(100, 0), -1, 10))

			snap := s.Step(dynamo.Zero)

			expectVec(snap.Velocity, dynamo.V(-0.5, 0))
		})

		It("sums the forces of every source", func() {
			s := newSim(body(dynamo.Zero, dynamo.Zero),
				source(dynamo.V(100, 0), 1, 10),
				source(dynamo.V(0, 100), 1, 10),
			)

			snap := s.Step(dynamo.Zero)

			expectVec(snap.Velocity, dynamo.V(0.5, 0.5))
		})

		It("resets acceleration after every step", func() {
			s := newSim(body(dynamo.Zero, dynamo.Zero), source(dynamo.V(100, 0), 1, 10))
			s.Step(dynamo.Zero)
			Expect(s.Body().Acceleration).To(Equal(dynamo.Zero))
		})
	})

	Describe("collisions", func() {
		It("rebounds a body sitting exactly on the collision radius", func() {
			s := newSim(body(dynamo.V(50, 0), dynamo.V(-1, 0)), source(dynamo.Zero, 1, 100))

			snap := s.Step(dynamo.Zero)

			// v += n * (1 * (1 + 0.5))
			expectVec(snap.Velocity, dynamo.V(0.5, 0))
			expectVec(snap.Position, dynamo.V(50.5, 0))
			Expect(snap.Contacts).To(Equal(1))
			Expect(snap.Rebounds).To(Equal(1))
		})

		It("applies no field force to a body inside a source", func() {
			s := newSim(body(dynamo.V(40, 0), dynamo.Zero), source(dynamo.Zero, 1, 100))

			snap := s.Step(dynamo.Zero)

			Expect(snap.Velocity).To(Equal(dynamo.Zero))
			Expect(snap.Position).To(Equal(dynamo.V(40, 0)))
			Expect(snap.Contacts).To(Equal(1))
			Expect(snap.Rebounds).To(BeZero())
		})

		It("leaves a body moving away untouched", func() {
			s := newSim(body(dynamo.V(30, 0), dynamo.V(2, 0)), source(dynamo.Zero, 1, 100))

			snap := s.Step(dynamo.Zero)

			expectVec(snap.Velocity, dynamo.V(2, 0))
		})

		It("skips the rebound and logs when the body is on the source center", func() {
			core, logs := observer.New(zap.DebugLevel)
			b := body(dynamo.V(10, 10), dynamo.V(-1, 0))
			s, err := sim.New(sim.DefaultParams(), b, []physics.Source{source(dynamo.V(10, 10), 1, 100)},
				control.NewImpulse(control.DefaultImpulseConfig(), dynamo.Zero), sim.WithLogger(zap.New(core)))
			Expect(err).NotTo(HaveOccurred())

			snap := s.Step(dynamo.Zero)

			expectVec(snap.Velocity, dynamo.V(-1, 0))
			Expect(snap.Contacts).To(Equal(1))
			Expect(snap.Rebounds).To(BeZero())
			Expect(logs.FilterMessage("body on source center, rebound skipped").Len()).To(Equal(1))
		})
	})

	Describe("distance clamp", func() {
		It("never divides by zero for a point source on the body", func() {
			src := source(dynamo.V(7, 7), 1, 0)
			f, ok := sim.FieldForce(dynamo.V(7, 7), 1, src, sim.DefaultParams())

			Expect(ok).To(BeTrue())
			Expect(f.IsValid()).To(BeTrue())
			Expect(f).To(Equal(dynamo.Zero))

			s := newSim(body(dynamo.V(7, 7), dynamo.Zero), src)
			snap := s.Step(dynamo.Zero)
			Expect(snap.IsValid()).To(BeTrue())
		})

		It("uses the minimum distance for close sources", func() {
			f, ok := sim.FieldForce(dynamo.Zero, 1, source(dynamo.V(5, 0), 1, 0), sim.DefaultParams())
			Expect(ok).To(BeTrue())
			// 5000 / 20²
			expectVec(f, dynamo.V(12.5, 0))
		})

		It("uses the maximum distance for far sources", func() {
			f, _ := sim.FieldForce(dynamo.Zero, 1, source(dynamo.V(0, 1000), 1, 10), sim.DefaultParams())
			// 5000 / 500²
			expectVec(f, dynamo.V(0, 0.02))
		})
	})

	Describe("impulse input", func() {
		It("adds the pointer push to the step", func() {
			s := newSim(body(dynamo.Zero, dynamo.Zero))

			snap := s.Step(dynamo.V(100, 0))

			expectVec(snap.Impulse, dynamo.V(4, 0))
			expectVec(snap.Velocity, dynamo.V(4, 0))
			Expect(snap.Pointer).To(Equal(dynamo.V(100, 0)))
		})

		It("ignores pointer jitter", func() {
			s := newSim(body(dynamo.Zero, dynamo.Zero))
			s.Step(dynamo.V(1, 1))
			snap := s.Step(dynamo.V(2, 2))

			Expect(snap.Impulse).To(Equal(dynamo.Zero))
			Expect(snap.Velocity).To(Equal(dynamo.Zero))
		})

		It("treats a reset baseline as no motion", func() {
			s := newSim(body(dynamo.Zero, dynamo.Zero))
			s.ResetPointer(dynamo.V(300, 300))
			snap := s.Step(dynamo.V(300, 300))
			Expect(snap.Impulse).To(Equal(dynamo.Zero))
		})
	})

	Describe("degenerate configurations", func() {
		It("keeps a body at rest in an empty field", func() {
			s := newSim(body(dynamo.V(3, 3), dynamo.Zero))
			for i := 0; i < 500; i++ {
				s.Step(dynamo.Zero)
			}
			Expect(s.Body().Position).To(Equal(dynamo.V(3, 3)))
			Expect(s.Steps()).To(Equal(500))
		})

		It("stays finite in the reference field", func() {
			center := dynamo.V(400, 300)
			sources, err := physics.DefaultRing(center).Sources()
			Expect(err).NotTo(HaveOccurred())
			b, err := physics.NewBody(center.Add(dynamo.V(100, 0)), 1, 1)
			Expect(err).NotTo(HaveOccurred())
			s := newSim(b, sources...)

			for i := 0; i < 5000; i++ {
				snap := s.Step(center)
				Expect(snap.IsValid()).To(BeTrue(), "step %d", i)
				Expect(math.IsInf(snap.Speed(), 0)).To(BeFalse())
			}
		})
	})

	Describe("ownership", func() {
		It("hands out copies of the body and field", func() {
			s := newSim(body(dynamo.Zero, dynamo.Zero), source(dynamo.V(100, 0), 1, 10))

			b := s.Body()
			b.Position = dynamo.V(999, 999)
			srcs := s.Sources()
			srcs[0] = source(dynamo.V(-1, -1), -5, 1)

			Expect(s.Body().Position).To(Equal(dynamo.Zero))
			Expect(s.Sources()[0].Charge()).To(Equal(1.0))
		})

		It("keeps independent simulations independent", func() {
			a := newSim(body(dynamo.Zero, dynamo.Zero), source(dynamo.V(100, 0), 1, 10))
			b := newSim(body(dynamo.Zero, dynamo.Zero), source(dynamo.V(100, 0), 1, 10))
			a.Step(dynamo.Zero)
			a.Step(dynamo.Zero)
			Expect(b.Steps()).To(BeZero())
			Expect(b.Body().Position).To(Equal(dynamo.Zero))
		})
	})

	Describe("construction", func() {
		It("rejects invalid params", func() {
			p := sim.DefaultParams()
			p.MinDistance = 0
			_, err := sim.New(p, body(dynamo.Zero, dynamo.Zero), nil, control.NewImpulse(control.DefaultImpulseConfig(), dynamo.Zero))
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())

			p = sim.DefaultParams()
			p.MaxDistance = 10
			_, err = sim.New(p, body(dynamo.Zero, dynamo.Zero), nil, control.NewImpulse(control.DefaultImpulseConfig(), dynamo.Zero))
			Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
		})

		It("requires a body and an impulse sampler", func() {
			_, err := sim.New(sim.DefaultParams(), nil, nil, control.NewImpulse(control.DefaultImpulseConfig(), dynamo.Zero))
			Expect(err).To(HaveOccurred())
			_, err = sim.New(sim.DefaultParams(), body(dynamo.Zero, dynamo.Zero), nil, nil)
			Expect(err).To(HaveOccurred())
		})
	})
})
