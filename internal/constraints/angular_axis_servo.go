package constraints

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/impulse/internal/bodies"
	"github.com/san-kum/impulse/internal/softness"
	"github.com/san-kum/impulse/internal/solver"
	"github.com/san-kum/impulse/internal/wide"
)

// AngularAxisServoTypeID is the dense kind id of [AngularAxisServo].
const AngularAxisServoTypeID = 42

// AngularAxisServo pushes the relative angular velocity about two body-local
// axes up toward TargetVelocity. It never brakes: the accumulated impulse is
// bounded to [0, Servo.MaximumForce*dt]. Spring sets how stiffly it pushes.
type AngularAxisServo struct {
	LocalAxisA     mgl64.Vec3
	LocalAxisB     mgl64.Vec3
	TargetVelocity float64
	Spring         softness.SpringSettings
	Servo          softness.ServoSettings
}

func (AngularAxisServo) ConstraintTypeID() int { return AngularAxisServoTypeID }

// AngularAxisServoPrestepData is the bundled form of [AngularAxisServo].
type AngularAxisServoPrestepData struct {
	LocalAxisA     wide.Vector3
	LocalAxisB     wide.Vector3
	TargetVelocity wide.Float
	Spring         softness.SpringSettingsWide
	Servo          softness.ServoSettingsWide
}

type angularAxisServoFunctions struct{}

// NewAngularAxisServoProcessor returns the processor for id 42.
func NewAngularAxisServoProcessor() solver.TypeProcessor {
	return solver.NewTwoBodyTypeProcessor[AngularAxisServoPrestepData, AngularAxisMotorProjection, wide.Float](
		AngularAxisServoTypeID, angularAxisServoFunctions{})
}

func (angularAxisServoFunctions) Prestep(store *bodies.Store, refs *bodies.TwoBodyReferences, count int,
	dt, inverseDt float32, inertiaA, inertiaB *bodies.Inertias,
	prestep *AngularAxisServoPrestepData, projection *AngularAxisMotorProjection) {
	// Velocity-only servo: the position error term of the spring is unused.
	_, cfmScale, softnessImpulseScale := softness.ComputeSpring(&prestep.Spring, dt)
	prestepAngularAxis(store, refs, count, inertiaA, inertiaB,
		&prestep.LocalAxisA, &prestep.LocalAxisB, prestep.TargetVelocity, cfmScale, projection)
	projection.SoftnessImpulseScale = softnessImpulseScale
	projection.MaximumImpulse = softness.ComputeServo(&prestep.Servo, dt)
}

func (angularAxisServoFunctions) ApplyImpulse(velocityA, velocityB *bodies.Velocities, projection *AngularAxisMotorProjection, impulse wide.Float) {
	applyAngularImpulse(velocityA, velocityB, projection, impulse)
}

func (f angularAxisServoFunctions) WarmStart(velocityA, velocityB *bodies.Velocities, projection *AngularAxisMotorProjection, accumulated *wide.Float) {
	f.ApplyImpulse(velocityA, velocityB, projection, *accumulated)
}

func (f angularAxisServoFunctions) Solve(velocityA, velocityB *bodies.Velocities, projection *AngularAxisMotorProjection, accumulated *wide.Float) {
	velocityImpulse := wide.Dot(velocityA.Angular, projection.VelocityToImpulseA).
		Add(wide.Dot(velocityB.Angular, projection.NegatedVelocityToImpulseB))
	csi := projection.BiasImpulse.
		Sub(accumulated.Mul(projection.SoftnessImpulseScale)).
		Sub(velocityImpulse)
	softness.ClampImpulseUnidirectional(projection.MaximumImpulse, accumulated, &csi)
	f.ApplyImpulse(velocityA, velocityB, projection, csi)
}

func (angularAxisServoFunctions) WriteDescription(prestep *AngularAxisServoPrestepData, lane int, d solver.Description) error {
	s, ok := d.(AngularAxisServo)
	if !ok {
		return fmt.Errorf("angular axis servo: got %T: %w", d, solver.ErrDescriptionType)
	}
	if err := s.Spring.Validate(); err != nil {
		return err
	}
	if err := s.Servo.Validate(); err != nil {
		return err
	}
	prestep.LocalAxisA.WriteSlot(lane, s.LocalAxisA)
	prestep.LocalAxisB.WriteSlot(lane, s.LocalAxisB)
	prestep.TargetVelocity[lane] = float32(s.TargetVelocity)
	prestep.Spring.WriteSlot(lane, s.Spring)
	prestep.Servo.WriteSlot(lane, s.Servo)
	return nil
}

func (angularAxisServoFunctions) ReadDescription(prestep *AngularAxisServoPrestepData, lane int) solver.Description {
	return AngularAxisServo{
		LocalAxisA:     prestep.LocalAxisA.ReadSlot(lane),
		LocalAxisB:     prestep.LocalAxisB.ReadSlot(lane),
		TargetVelocity: float64(prestep.TargetVelocity[lane]),
		Spring:         prestep.Spring.ReadSlot(lane),
		Servo:          prestep.Servo.ReadSlot(lane),
	}
}

func (angularAxisServoFunctions) ReadImpulse(accumulated *wide.Float, lane int) float64 {
	return float64(accumulated[lane])
}

func (angularAxisServoFunctions) CopyLane(sourcePrestep *AngularAxisServoPrestepData, sourceAccumulated *wide.Float, sourceLane int,
	prestep *AngularAxisServoPrestepData, accumulated *wide.Float, lane int) {
	prestep.LocalAxisA.CopyLane(lane, &sourcePrestep.LocalAxisA, sourceLane)
	prestep.LocalAxisB.CopyLane(lane, &sourcePrestep.LocalAxisB, sourceLane)
	prestep.TargetVelocity.CopyLane(lane, &sourcePrestep.TargetVelocity, sourceLane)
	prestep.Spring.CopyLane(lane, &sourcePrestep.Spring, sourceLane)
	prestep.Servo.CopyLane(lane, &sourcePrestep.Servo, sourceLane)
	accumulated.CopyLane(lane, sourceAccumulated, sourceLane)
}

func (angularAxisServoFunctions) ClearLane(prestep *AngularAxisServoPrestepData, accumulated *wide.Float, lane int) {
	prestep.LocalAxisA.ClearLane(lane)
	prestep.LocalAxisB.ClearLane(lane)
	prestep.TargetVelocity.ClearLane(lane)
	prestep.Spring.ClearLane(lane)
	prestep.Servo.ClearLane(lane)
	accumulated.ClearLane(lane)
}
