package constraints

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/impulse/internal/bodies"
	"github.com/san-kum/impulse/internal/softness"
	"github.com/san-kum/impulse/internal/solver"
	"github.com/san-kum/impulse/internal/wide"
)

// AngularAxisMotorTypeID is the dense kind id of [AngularAxisMotor].
const AngularAxisMotorTypeID = 41

// effectiveMassEpsilon is the smallest combined inverse inertia about the motor
// axes, relative to the pair's total inverse inertia, that still yields an
// effective mass. Below it the lane is skipped for the step. Being relative,
// it disables axes the bodies cannot turn about, not heavy bodies.
const effectiveMassEpsilon = 1e-6

// AngularAxisMotor drives the relative angular velocity about two body-local
// axes toward TargetVelocity.
//
// The axes are transformed once per step in Prestep; drift between the two
// world axes during the step is ignored and no torque arises about any other
// axis. Axes are not normalized: a non-unit axis scales the motor.
type AngularAxisMotor struct {
	LocalAxisA     mgl64.Vec3
	LocalAxisB     mgl64.Vec3
	TargetVelocity float64
	Settings       softness.MotorSettings
}

func (AngularAxisMotor) ConstraintTypeID() int { return AngularAxisMotorTypeID }

// AngularAxisMotorPrestepData is the bundled form of [AngularAxisMotor].
type AngularAxisMotorPrestepData struct {
	LocalAxisA     wide.Vector3
	LocalAxisB     wide.Vector3
	TargetVelocity wide.Float
	Settings       softness.MotorSettingsWide
}

// AngularAxisMotorProjection holds the terms frozen by Prestep.
type AngularAxisMotorProjection struct {
	VelocityToImpulseA        wide.Vector3
	NegatedVelocityToImpulseB wide.Vector3
	ImpulseToVelocityA        wide.Vector3
	NegatedImpulseToVelocityB wide.Vector3
	BiasImpulse               wide.Float
	SoftnessImpulseScale      wide.Float
	MaximumImpulse            wide.Float
}

type angularAxisMotorFunctions struct{}

// NewAngularAxisMotorProcessor returns the processor for id 41.
func NewAngularAxisMotorProcessor() solver.TypeProcessor {
	return solver.NewTwoBodyTypeProcessor[AngularAxisMotorPrestepData, AngularAxisMotorProjection, wide.Float](
		AngularAxisMotorTypeID, angularAxisMotorFunctions{})
}

func (angularAxisMotorFunctions) Prestep(store *bodies.Store, refs *bodies.TwoBodyReferences, count int,
	dt, inverseDt float32, inertiaA, inertiaB *bodies.Inertias,
	prestep *AngularAxisMotorPrestepData, projection *AngularAxisMotorProjection) {
	cfmScale, softnessImpulseScale, maximumImpulse := softness.ComputeMotor(&prestep.Settings, dt, inverseDt)
	prestepAngularAxis(store, refs, count, inertiaA, inertiaB,
		&prestep.LocalAxisA, &prestep.LocalAxisB, prestep.TargetVelocity, cfmScale, projection)
	projection.SoftnessImpulseScale = softnessImpulseScale
	projection.MaximumImpulse = maximumImpulse
}

// prestepAngularAxis fills the velocity and impulse terms shared by the axis
// motor and servo. Lanes at or beyond count get zero effective mass.
func prestepAngularAxis(store *bodies.Store, refs *bodies.TwoBodyReferences, count int,
	inertiaA, inertiaB *bodies.Inertias, localAxisA, localAxisB *wide.Vector3,
	targetVelocity, cfmScale wide.Float, projection *AngularAxisMotorProjection) {
	var orientationA, orientationB wide.Quaternion
	store.GatherOrientation(refs, count, &orientationA, &orientationB)

	var axisA, axisB wide.Vector3
	wide.TransformWithoutOverlap(localAxisA, &orientationA, &axisA)
	wide.TransformWithoutOverlap(localAxisB, &orientationB, &axisB)

	var impulseToVelocityA, impulseToVelocityB wide.Vector3
	inertiaA.InverseInertiaTensor.TransformWithoutOverlap(&axisA, &impulseToVelocityA)
	inertiaB.InverseInertiaTensor.TransformWithoutOverlap(&axisB, &impulseToVelocityB)
	contribution := wide.Dot(axisA, impulseToVelocityA).Add(wide.Dot(axisB, impulseToVelocityB))

	// trace * |axis|^2 bounds each contribution, so it sets the scale the
	// contribution is compared against.
	scale := inertiaA.InverseInertiaTensor.Trace().Mul(axisA.LengthSquared()).
		Add(inertiaB.InverseInertiaTensor.Trace().Mul(axisB.LengthSquared()))
	effectiveMass := cfmScale.Mul(contribution.SafeReciprocal(scale, effectiveMassEpsilon))
	effectiveMass = wide.Select(wide.ActiveMask(count), effectiveMass, wide.Float{})

	projection.VelocityToImpulseA = axisA.Scale(effectiveMass)
	projection.NegatedVelocityToImpulseB = axisB.Scale(effectiveMass).Negate()
	projection.ImpulseToVelocityA = impulseToVelocityA
	projection.NegatedImpulseToVelocityB = impulseToVelocityB.Negate()
	projection.BiasImpulse = targetVelocity.Mul(effectiveMass)
}

// applyAngularImpulse adds the impulse to A and its reaction to B.
func applyAngularImpulse(velocityA, velocityB *bodies.Velocities, projection *AngularAxisMotorProjection, impulse wide.Float) {
	velocityA.Angular = velocityA.Angular.Add(projection.ImpulseToVelocityA.Scale(impulse))
	velocityB.Angular = velocityB.Angular.Add(projection.NegatedImpulseToVelocityB.Scale(impulse))
}

// ApplyImpulse converts a constraint-space impulse into angular velocity changes.
func (angularAxisMotorFunctions) ApplyImpulse(velocityA, velocityB *bodies.Velocities, projection *AngularAxisMotorProjection, impulse wide.Float) {
	applyAngularImpulse(velocityA, velocityB, projection, impulse)
}

func (f angularAxisMotorFunctions) WarmStart(velocityA, velocityB *bodies.Velocities, projection *AngularAxisMotorProjection, accumulated *wide.Float) {
	f.ApplyImpulse(velocityA, velocityB, projection, *accumulated)
}

func (f angularAxisMotorFunctions) Solve(velocityA, velocityB *bodies.Velocities, projection *AngularAxisMotorProjection, accumulated *wide.Float) {
	// csi = bias - accumulated * softness - (wA . vtiA + wB . nvtiB)
	velocityImpulse := wide.Dot(velocityA.Angular, projection.VelocityToImpulseA).
		Add(wide.Dot(velocityB.Angular, projection.NegatedVelocityToImpulseB))
	csi := projection.BiasImpulse.
		Sub(accumulated.Mul(projection.SoftnessImpulseScale)).
		Sub(velocityImpulse)
	softness.ClampImpulse(projection.MaximumImpulse, accumulated, &csi)
	f.ApplyImpulse(velocityA, velocityB, projection, csi)
}

func (angularAxisMotorFunctions) WriteDescription(prestep *AngularAxisMotorPrestepData, lane int, d solver.Description) error {
	m, ok := d.(AngularAxisMotor)
	if !ok {
		return fmt.Errorf("angular axis motor: got %T: %w", d, solver.ErrDescriptionType)
	}
	if err := m.Settings.Validate(); err != nil {
		return err
	}
	prestep.LocalAxisA.WriteSlot(lane, m.LocalAxisA)
	prestep.LocalAxisB.WriteSlot(lane, m.LocalAxisB)
	prestep.TargetVelocity[lane] = float32(m.TargetVelocity)
	prestep.Settings.WriteSlot(lane, m.Settings)
	return nil
}

func (angularAxisMotorFunctions) ReadDescription(prestep *AngularAxisMotorPrestepData, lane int) solver.Description {
	return AngularAxisMotor{
		LocalAxisA:     prestep.LocalAxisA.ReadSlot(lane),
		LocalAxisB:     prestep.LocalAxisB.ReadSlot(lane),
		TargetVelocity: float64(prestep.TargetVelocity[lane]),
		Settings:       prestep.Settings.ReadSlot(lane),
	}
}

func (angularAxisMotorFunctions) ReadImpulse(accumulated *wide.Float, lane int) float64 {
	return float64(accumulated[lane])
}

func (angularAxisMotorFunctions) CopyLane(sourcePrestep *AngularAxisMotorPrestepData, sourceAccumulated *wide.Float, sourceLane int,
	prestep *AngularAxisMotorPrestepData, accumulated *wide.Float, lane int) {
	prestep.LocalAxisA.CopyLane(lane, &sourcePrestep.LocalAxisA, sourceLane)
	prestep.LocalAxisB.CopyLane(lane, &sourcePrestep.LocalAxisB, sourceLane)
	prestep.TargetVelocity.CopyLane(lane, &sourcePrestep.TargetVelocity, sourceLane)
	prestep.Settings.CopyLane(lane, &sourcePrestep.Settings, sourceLane)
	accumulated.CopyLane(lane, sourceAccumulated, sourceLane)
}

func (angularAxisMotorFunctions) ClearLane(prestep *AngularAxisMotorPrestepData, accumulated *wide.Float, lane int) {
	prestep.LocalAxisA.ClearLane(lane)
	prestep.LocalAxisB.ClearLane(lane)
	prestep.TargetVelocity.ClearLane(lane)
	prestep.Settings.ClearLane(lane)
	accumulated.ClearLane(lane)
}
