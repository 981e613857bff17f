// Package bodies owns the per-body state the solver reads and writes.
//
// The [Store] keeps orientation, velocity and inverse inertia in flat
// per-body slices. Constraint kinds never touch those slices directly: they
// gather a bundle's worth of state into wide types through a
// [TwoBodyReferences] list and scatter velocities back through the same list.
//
// # Thread Safety
//
// The store performs no locking. Concurrent scatters are only safe when the
// bundles involved reference pairwise-disjoint bodies, which is guaranteed by
// batch construction upstream and never checked here.
package bodies

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/impulse/internal/wide"
)

// Sentinel marks an unused lane in a [TwoBodyReferences] bundle.
const Sentinel int32 = -1

var (
	// ErrBodyNotFound indicates a body index outside the store.
	ErrBodyNotFound = errors.New("bodies: body not found")

	// ErrInvalidInertia indicates a negative inverse mass.
	ErrInvalidInertia = errors.New("bodies: inverse mass must be non-negative")
)

// Description is the scalar, user-facing state of one body.
type Description struct {
	Orientation     mgl64.Quat
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	InverseMass     float64

	// LocalInverseInertia is expressed in the body's local frame.
	LocalInverseInertia mgl64.Mat3
}

// Kinematic returns a description with zero inverse mass and inertia.
func Kinematic(orientation mgl64.Quat, angular mgl64.Vec3) Description {
	return Description{Orientation: orientation, AngularVelocity: angular}
}

// Velocities is one side (A or B) of a bundle's gathered velocities.
type Velocities struct {
	Linear  wide.Vector3
	Angular wide.Vector3
}

// Inertias is one side of a bundle's gathered inverse inertia, in world space.
type Inertias struct {
	InverseMass          wide.Float
	InverseInertiaTensor wide.Symmetric3x3
}

// TwoBodyReferences lists the A and B body of each lane in a bundle.
type TwoBodyReferences struct {
	A, B [wide.Width]int32
}

// EmptyReferences returns a bundle whose lanes are all Sentinel.
func EmptyReferences() TwoBodyReferences {
	var r TwoBodyReferences
	for i := range r.A {
		r.A[i] = Sentinel
		r.B[i] = Sentinel
	}
	return r
}

// Store holds all bodies in SoA layout.
type Store struct {
	orientation  []mgl64.Quat
	linear       []mgl64.Vec3
	angular      []mgl64.Vec3
	inverseMass  []float64
	localInertia []mgl64.Mat3
}

// NewStore creates a store with room for capacity bodies.
func NewStore(capacity int) *Store {
	return &Store{
		orientation:  make([]mgl64.Quat, 0, capacity),
		linear:       make([]mgl64.Vec3, 0, capacity),
		angular:      make([]mgl64.Vec3, 0, capacity),
		inverseMass:  make([]float64, 0, capacity),
		localInertia: make([]mgl64.Mat3, 0, capacity),
	}
}

// Count returns the number of bodies.
func (s *Store) Count() int { return len(s.orientation) }

// Add appends a body and returns its index.
func (s *Store) Add(d Description) (int, error) {
	if d.InverseMass < 0 {
		return 0, ErrInvalidInertia
	}
	orientation := d.Orientation
	if orientation == (mgl64.Quat{}) {
		orientation = mgl64.QuatIdent()
	}
	s.orientation = append(s.orientation, orientation)
	s.linear = append(s.linear, d.LinearVelocity)
	s.angular = append(s.angular, d.AngularVelocity)
	s.inverseMass = append(s.inverseMass, d.InverseMass)
	s.localInertia = append(s.localInertia, d.LocalInverseInertia)
	return len(s.orientation) - 1, nil
}

// Contains reports whether index names a body in the store.
func (s *Store) Contains(index int) bool {
	return index >= 0 && index < len(s.orientation)
}

// Get returns the scalar description of a body.
func (s *Store) Get(index int) (Description, error) {
	if !s.Contains(index) {
		return Description{}, fmt.Errorf("get body %d: %w", index, ErrBodyNotFound)
	}
	return Description{
		Orientation:         s.orientation[index],
		LinearVelocity:      s.linear[index],
		AngularVelocity:     s.angular[index],
		InverseMass:         s.inverseMass[index],
		LocalInverseInertia: s.localInertia[index],
	}, nil
}

// SetVelocity overwrites a body's velocities.
func (s *Store) SetVelocity(index int, linear, angular mgl64.Vec3) error {
	if !s.Contains(index) {
		return fmt.Errorf("set velocity of body %d: %w", index, ErrBodyNotFound)
	}
	s.linear[index] = linear
	s.angular[index] = angular
	return nil
}

// SetOrientation overwrites a body's orientation. Pose integration is external;
// this is its write path.
func (s *Store) SetOrientation(index int, q mgl64.Quat) error {
	if !s.Contains(index) {
		return fmt.Errorf("set orientation of body %d: %w", index, ErrBodyNotFound)
	}
	s.orientation[index] = q
	return nil
}

// AngularVelocity returns a body's angular velocity. It panics on a bad index.
func (s *Store) AngularVelocity(index int) mgl64.Vec3 {
	return s.angular[index]
}

// active reports whether a lane references a real body.
func (s *Store) active(index int32) bool {
	return index != Sentinel && int(index) < len(s.orientation)
}
