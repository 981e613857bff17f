package solver_test

import (
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/impulse/internal/bodies"
	"github.com/san-kum/impulse/internal/constraints"
	"github.com/san-kum/impulse/internal/softness"
	"github.com/san-kum/impulse/internal/solver"
	"github.com/san-kum/impulse/internal/wide"
)

const dt = float32(1.0 / 60)

var zAxis = mgl64.Vec3{0, 0, 1}

func motor(target float64) constraints.AngularAxisMotor {
	return constraints.AngularAxisMotor{
		LocalAxisA:     zAxis,
		LocalAxisB:     zAxis,
		TargetVelocity: target,
		Settings:       softness.MotorSettings{MaximumForce: 1e6},
	}
}

func newStore(n int) *bodies.Store {
	s := bodies.NewStore(n)
	for i := 0; i < n; i++ {
		_, err := s.Add(bodies.Description{
			Orientation:         mgl64.QuatIdent(),
			InverseMass:         1,
			LocalInverseInertia: mgl64.Ident3(),
		})
		Expect(err).NotTo(HaveOccurred())
	}
	return s
}

var _ = Describe("Registry", func() {
	It("routes kinds by dense id", func() {
		r := constraints.NewRegistry()
		Expect(r.TypeIDs()).To(Equal([]int{constraints.AngularAxisMotorTypeID, constraints.AngularAxisServoTypeID}))

		p, err := r.Processor(constraints.AngularAxisMotorTypeID)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.TypeID()).To(Equal(41))
	})

	It("rejects duplicates and unknown ids", func() {
		r := constraints.NewRegistry()
		Expect(r.Register(constraints.NewAngularAxisMotorProcessor())).To(MatchError(solver.ErrDuplicateType))

		_, err := r.Processor(7)
		Expect(err).To(MatchError(solver.ErrUnknownType))
		_, err = r.Processor(-1)
		Expect(err).To(MatchError(solver.ErrUnknownType))
	})
})

var _ = Describe("TypeBatch", func() {
	It("tracks bundle and lane counts", func() {
		tb := &solver.TypeBatch{ConstraintCount: wide.Width + 3}
		Expect(tb.BundleCount()).To(Equal(2))
		Expect(tb.LaneCount(0)).To(Equal(wide.Width))
		Expect(tb.LaneCount(1)).To(Equal(3))
		Expect(tb.LaneCount(2)).To(Equal(0))

		bundle, inner := solver.BundleIndices(wide.Width + 3)
		Expect(bundle).To(Equal(1))
		Expect(inner).To(Equal(3))
	})

	It("panics when a processor is handed another kind's batch", func() {
		store := newStore(2)
		motorProcessor := constraints.NewAngularAxisMotorProcessor()
		servoProcessor := constraints.NewAngularAxisServoProcessor()

		tb := &solver.TypeBatch{}
		motorProcessor.Initialize(tb, 1)
		motorProcessor.Allocate(tb, 0, 0, 1)

		Expect(func() { servoProcessor.Prestep(tb, store, dt, 1/dt, 0, 1) }).To(Panic())
		Expect(func() { servoProcessor.SolveIteration(tb, store, 0, 1) }).To(Panic())
	})

	It("keeps removed tail lanes inert", func() {
		p := constraints.NewAngularAxisMotorProcessor()
		tb := &solver.TypeBatch{}
		p.Initialize(tb, 4)
		for i := 0; i < 3; i++ {
			idx := p.Allocate(tb, solver.Handle(i), int32(2*i), int32(2*i+1))
			Expect(p.ApplyDescription(tb, idx, motor(float64(i+1)))).To(Succeed())
		}

		moved, ok := p.Remove(tb, 0)
		Expect(ok).To(BeTrue())
		Expect(moved).To(Equal(solver.Handle(2)))
		Expect(tb.ConstraintCount).To(Equal(2))
		Expect(p.Describe(tb, 0).(constraints.AngularAxisMotor).TargetVelocity).To(BeNumerically("~", 3, 1e-6))

		Expect(tb.BodyReferences[0].A[2]).To(Equal(bodies.Sentinel))
		Expect(tb.BodyReferences[0].B[2]).To(Equal(bodies.Sentinel))

		_, ok = p.Remove(tb, 1)
		Expect(ok).To(BeFalse())
		_, ok = p.Remove(tb, 0)
		Expect(ok).To(BeFalse())
		Expect(tb.BundleCount()).To(Equal(0))
		Expect(tb.BodyReferences).To(BeEmpty())
	})
})

var _ = Describe("ConstraintSet", func() {
	var (
		store *bodies.Store
		s     *solver.Solver
	)

	BeforeEach(func() {
		store = newStore(6)
		s = solver.New(store, constraints.NewRegistry(), solver.Options{Iterations: 8, Workers: 1})
	})

	It("places constraints sharing a body in different batches", func() {
		_, err := s.Add(0, 1, motor(1))
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Add(2, 3, motor(1))
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Add(1, 2, motor(1))
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Batches()).To(HaveLen(2))
		for _, batch := range s.Batches() {
			seen := map[int32]bool{}
			for _, tb := range batch.TypeBatches {
				for i := 0; i < tb.ConstraintCount; i++ {
					bundle, inner := solver.BundleIndices(i)
					for _, body := range []int32{tb.BodyReferences[bundle].A[inner], tb.BodyReferences[bundle].B[inner]} {
						Expect(seen[body]).To(BeFalse(), "body %d referenced twice in one batch", body)
						seen[body] = true
					}
				}
			}
		}
	})

	It("mixes kinds within one batch", func() {
		_, err := s.Add(0, 1, motor(1))
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Add(2, 3, constraints.AngularAxisServo{
			LocalAxisA: zAxis, LocalAxisB: zAxis, TargetVelocity: 1,
			Spring: softness.SpringSettings{Frequency: 20, DampingRatio: 1},
			Servo:  softness.ServoSettings{MaximumForce: 100},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Batches()).To(HaveLen(1))
		Expect(s.Batches()[0].TypeBatches).To(HaveLen(2))
		Expect(s.Step(dt)).To(Succeed())
	})

	It("reports recoverable errors", func() {
		_, err := s.Add(0, 99, motor(1))
		Expect(err).To(MatchError(bodies.ErrBodyNotFound))
		_, err = s.Add(2, 2, motor(1))
		Expect(err).To(MatchError(solver.ErrSameBody))

		_, err = s.Describe(solver.Handle(5))
		Expect(err).To(MatchError(solver.ErrInvalidHandle))
		Expect(s.Remove(solver.Handle(-1))).To(MatchError(solver.ErrInvalidHandle))
		Expect(s.Step(0)).To(MatchError(solver.ErrInvalidTimestep))
	})

	It("rejects an update of another kind", func() {
		h, err := s.Add(0, 1, motor(1))
		Expect(err).NotTo(HaveOccurred())
		err = s.Update(h, constraints.AngularAxisServo{
			Spring: softness.SpringSettings{Frequency: 1},
		})
		Expect(err).To(MatchError(solver.ErrDescriptionType))
	})

	It("updates descriptions and keeps the accumulated impulse", func() {
		h, err := s.Add(0, 1, motor(2))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Step(dt)).To(Succeed())
		before, err := s.AccumulatedImpulse(h)
		Expect(err).NotTo(HaveOccurred())
		Expect(before).To(BeNumerically(">", 0))

		Expect(s.Update(h, motor(-4))).To(Succeed())
		d, err := s.Describe(h)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.(constraints.AngularAxisMotor).TargetVelocity).To(BeNumerically("~", -4, 1e-6))

		after, err := s.AccumulatedImpulse(h)
		Expect(err).NotTo(HaveOccurred())
		Expect(after).To(Equal(before))
	})

	It("patches moved handles on removal and recycles handles", func() {
		h0, _ := s.Add(0, 1, motor(1))
		h1, _ := s.Add(2, 3, motor(2))
		h2, _ := s.Add(4, 5, motor(3))

		Expect(s.Remove(h0)).To(Succeed())
		Expect(s.Count()).To(Equal(2))

		d, err := s.Describe(h2)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.(constraints.AngularAxisMotor).TargetVelocity).To(BeNumerically("~", 3, 1e-6))
		a, b, err := s.Bodies(h2)
		Expect(err).NotTo(HaveOccurred())
		Expect([]int{a, b}).To(Equal([]int{4, 5}))

		loc, err := s.Location(h2)
		Expect(err).NotTo(HaveOccurred())
		Expect(loc.Index).To(Equal(0))

		_, err = s.Describe(h0)
		Expect(err).To(MatchError(solver.ErrInvalidHandle))

		h3, err := s.Add(0, 1, motor(4))
		Expect(err).NotTo(HaveOccurred())
		Expect(h3).To(Equal(h0))
		Expect(s.Handles()).To(ConsistOf(h1, h2, h3))
	})

	It("leaves no batch behind when a description is rejected", func() {
		_, err := s.Add(0, 1, motor(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Batches()).To(HaveLen(1))

		// Body 0 is taken in batch 0, so this add opens a second batch.
		bad := motor(1)
		bad.Settings.MaximumForce = -1
		_, err = s.Add(0, 2, bad)
		Expect(err).To(MatchError(softness.ErrNegativeForce))
		Expect(s.Batches()).To(HaveLen(1))
		Expect(s.Count()).To(Equal(1))

		h, err := s.Add(0, 2, motor(2))
		Expect(err).NotTo(HaveOccurred())
		loc, err := s.Location(h)
		Expect(err).NotTo(HaveOccurred())
		Expect(loc.BatchIndex).To(Equal(1))
		Expect(s.Step(dt)).To(Succeed())
	})

	It("drops empty type batches and frees their bodies", func() {
		h, _ := s.Add(0, 1, motor(1))
		Expect(s.Remove(h)).To(Succeed())
		Expect(s.Batches()[0].TypeBatches).To(BeEmpty())
		Expect(s.Batches()[0].References(0)).To(BeFalse())
	})
})

var _ = Describe("Solver", func() {
	It("gives the same result inline and on many workers", func() {
		build := func(workers int) *bodies.Store {
			store := newStore(200)
			s := solver.New(store, constraints.NewRegistry(), solver.Options{
				Iterations: 8, Workers: workers, MinBundlesPerJob: 1,
			})
			// A chain: body i drives body i+1.
			for i := 0; i+1 < store.Count(); i++ {
				_, err := s.Add(i, i+1, motor(float64(i%5)))
				Expect(err).NotTo(HaveOccurred())
			}
			for step := 0; step < 3; step++ {
				Expect(s.Step(dt)).To(Succeed())
			}
			return store
		}

		inline := build(1)
		parallel := build(8)
		for i := 0; i < inline.Count(); i++ {
			Expect(parallel.AngularVelocity(i)).To(Equal(inline.AngularVelocity(i)))
		}
	})

	It("conserves angular momentum for equal inertia pairs", func() {
		store := newStore(2)
		s := solver.New(store, constraints.NewRegistry(), solver.Options{Workers: 1})
		_, err := s.Add(0, 1, motor(5))
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Step(dt)).To(Succeed())
		Expect(store.TotalAngularMomentum().Len()).To(BeNumerically("<", 1e-5))
	})

	It("fills defaults for zero options", func() {
		s := solver.New(newStore(0), constraints.NewRegistry(), solver.Options{})
		Expect(s.Options().Iterations).To(Equal(solver.DefaultIterations))
		Expect(s.Options().Workers).To(BeNumerically(">=", 1))
	})
})
