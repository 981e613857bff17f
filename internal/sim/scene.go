package sim

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/impulse/internal/bodies"
	"github.com/san-kum/impulse/internal/config"
	"github.com/san-kum/impulse/internal/constraints"
	"github.com/san-kum/impulse/internal/softness"
	"github.com/san-kum/impulse/internal/solver"
)

// Scene is a body store plus the solver constraining it.
type Scene struct {
	Store   *bodies.Store
	Solver  *solver.Solver
	Handles []solver.Handle
}

// BuildScene creates the bodies and constraints described by cfg.
func BuildScene(cfg *config.Config) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sc := cfg.Scenario
	store := bodies.NewStore(2 * sc.Pairs)
	s := solver.New(store, constraints.NewRegistry(), solver.Options{
		Iterations:       cfg.Iterations,
		Workers:          cfg.Workers,
		MinBundlesPerJob: cfg.MinBundlesPerJob,
		InitialCapacity:  sc.Pairs,
	})
	scene := &Scene{Store: store, Solver: s, Handles: make([]solver.Handle, 0, sc.Pairs)}

	inertia := mgl64.Diag3(mgl64.Vec3{sc.InverseInertia, sc.InverseInertia, sc.InverseInertia})
	body := func(spin float64) (int, error) {
		return store.Add(bodies.Description{
			Orientation:         mgl64.QuatIdent(),
			AngularVelocity:     mgl64.Vec3{0, 0, spin},
			InverseMass:         1,
			LocalInverseInertia: inertia,
		})
	}

	axisA := mgl64.Vec3{0, 0, 1}
	axisB := mgl64.QuatRotate(sc.AxisTilt, mgl64.Vec3{1, 0, 0}).Rotate(axisA)

	switch sc.Kind {
	case config.KindChain:
		anchor, err := store.Add(bodies.Kinematic(mgl64.QuatIdent(), mgl64.Vec3{}))
		if err != nil {
			return nil, err
		}
		prev := anchor
		for i := 0; i < sc.Pairs; i++ {
			next, err := body(sc.InitialSpin)
			if err != nil {
				return nil, err
			}
			if err := scene.add(next, prev, motorDescription(sc, axisA, axisB)); err != nil {
				return nil, err
			}
			prev = next
		}
	default:
		for i := 0; i < sc.Pairs; i++ {
			a, err := body(sc.InitialSpin)
			if err != nil {
				return nil, err
			}
			b, err := body(0)
			if err != nil {
				return nil, err
			}
			var d solver.Description = motorDescription(sc, axisA, axisB)
			if sc.Kind == config.KindServo {
				d = constraints.AngularAxisServo{
					LocalAxisA:     axisA,
					LocalAxisB:     axisB,
					TargetVelocity: sc.TargetVelocity,
					Spring:         softness.SpringSettings{Frequency: sc.SpringFrequency, DampingRatio: sc.SpringDamping},
					Servo:          softness.ServoSettings{MaximumForce: sc.MaximumForce},
				}
			}
			if err := scene.add(a, b, d); err != nil {
				return nil, err
			}
		}
	}
	return scene, nil
}

func motorDescription(sc config.ScenarioConfig, axisA, axisB mgl64.Vec3) constraints.AngularAxisMotor {
	return constraints.AngularAxisMotor{
		LocalAxisA:     axisA,
		LocalAxisB:     axisB,
		TargetVelocity: sc.TargetVelocity,
		Settings:       softness.MotorSettings{MaximumForce: sc.MaximumForce, Softness: sc.Softness},
	}
}

func (s *Scene) add(a, b int, d solver.Description) error {
	h, err := s.Solver.Add(a, b, d)
	if err != nil {
		return fmt.Errorf("constraint %d-%d: %w", a, b, err)
	}
	s.Handles = append(s.Handles, h)
	return nil
}

// RelativeVelocity returns wA.axisA - wB.axisB for a constraint, using the
// current world axes.
func (s *Scene) RelativeVelocity(h solver.Handle) (float64, error) {
	d, err := s.Solver.Describe(h)
	if err != nil {
		return 0, err
	}
	a, b, err := s.Solver.Bodies(h)
	if err != nil {
		return 0, err
	}
	localA, localB := axes(d)
	bodyA, err := s.Store.Get(a)
	if err != nil {
		return 0, err
	}
	bodyB, err := s.Store.Get(b)
	if err != nil {
		return 0, err
	}
	worldA := bodyA.Orientation.Rotate(localA)
	worldB := bodyB.Orientation.Rotate(localB)
	return bodyA.AngularVelocity.Dot(worldA) - bodyB.AngularVelocity.Dot(worldB), nil
}

// ConstraintError returns how far a constraint is from its target. A servo
// running faster than its target is not in error.
func (s *Scene) ConstraintError(h solver.Handle) (float64, error) {
	rel, err := s.RelativeVelocity(h)
	if err != nil {
		return 0, err
	}
	d, _ := s.Solver.Describe(h)
	switch d := d.(type) {
	case constraints.AngularAxisMotor:
		return math.Abs(rel - d.TargetVelocity), nil
	case constraints.AngularAxisServo:
		return math.Max(0, d.TargetVelocity-rel), nil
	}
	return 0, fmt.Errorf("constraint %d: %w", h, solver.ErrDescriptionType)
}

// Residual returns the mean constraint error over the scene.
func (s *Scene) Residual() float64 {
	if len(s.Handles) == 0 {
		return 0
	}
	sum := 0.0
	for _, h := range s.Handles {
		e, err := s.ConstraintError(h)
		if err != nil {
			continue
		}
		sum += e
	}
	return sum / float64(len(s.Handles))
}

// Integrate advances every body's orientation by its angular velocity over dt
// with q' = normalize(q + 0.5*w*q*dt).
func (s *Scene) Integrate(dt float64) error {
	for i := 0; i < s.Store.Count(); i++ {
		b, err := s.Store.Get(i)
		if err != nil {
			return err
		}
		if b.AngularVelocity == (mgl64.Vec3{}) {
			continue
		}
		spin := mgl64.Quat{V: b.AngularVelocity}.Mul(b.Orientation).Scale(0.5 * dt)
		if err := s.Store.SetOrientation(i, b.Orientation.Add(spin).Normalize()); err != nil {
			return err
		}
	}
	return nil
}

func axes(d solver.Description) (mgl64.Vec3, mgl64.Vec3) {
	switch d := d.(type) {
	case constraints.AngularAxisMotor:
		return d.LocalAxisA, d.LocalAxisB
	case constraints.AngularAxisServo:
		return d.LocalAxisA, d.LocalAxisB
	}
	return mgl64.Vec3{}, mgl64.Vec3{}
}
