package solver

import (
	"github.com/san-kum/impulse/internal/bodies"
	"github.com/san-kum/impulse/internal/wide"
)

// Handle identifies a constraint for its whole lifetime.
type Handle int32

// Description is the user-facing configuration of one constraint.
type Description interface {
	// ConstraintTypeID returns the dense kind id the description belongs to.
	ConstraintTypeID() int
}

// TypeBatch stores every constraint of one kind within one batch.
//
// PrestepData, Projection and AccumulatedImpulses hold slices of the kind's
// bundle types (one element per bundle). They are untyped here and resolved by
// the processor registered for TypeID. Projection is scratch: it is rebuilt by
// every Prestep and never read back.
type TypeBatch struct {
	TypeID              int
	BodyReferences      []bodies.TwoBodyReferences
	PrestepData         any
	Projection          any
	AccumulatedImpulses any
	Handles             []Handle
	ConstraintCount     int
}

// BundleCount returns the number of bundles in use.
func (b *TypeBatch) BundleCount() int {
	return BundleCount(b.ConstraintCount)
}

// LaneCount returns how many lanes of a bundle hold live constraints.
// Only the last bundle can be partially filled.
func (b *TypeBatch) LaneCount(bundle int) int {
	n := b.ConstraintCount - bundle*wide.Width
	if n > wide.Width {
		return wide.Width
	}
	if n < 0 {
		return 0
	}
	return n
}

// BundleCount returns ceil(count / Width).
func BundleCount(count int) int {
	return (count + wide.Width - 1) / wide.Width
}

// BundleIndices splits a constraint index into its bundle and lane.
func BundleIndices(index int) (bundle, inner int) {
	return index / wide.Width, index % wide.Width
}

// Location addresses a constraint inside a constraint set.
type Location struct {
	BatchIndex int
	TypeID     int
	Index      int
}
