package solver

import "github.com/san-kum/impulse/internal/bodies"

// TypeProcessor runs one constraint kind over untyped batch storage.
// Implementations are stateless. Every method asserts that the batch holds the
// processor's kind and panics otherwise.
type TypeProcessor interface {
	TypeID() int

	// Initialize prepares empty storage for the kind.
	Initialize(batch *TypeBatch, capacity int)

	// Allocate appends a constraint between two bodies and returns its index.
	// The new slot holds zeroed prestep data and a zero accumulated impulse.
	Allocate(batch *TypeBatch, handle Handle, bodyA, bodyB int32) int

	// Remove deletes the constraint at index by moving the last constraint into
	// its slot. It returns the handle of the moved constraint, if any.
	Remove(batch *TypeBatch, index int) (moved Handle, ok bool)

	ApplyDescription(batch *TypeBatch, index int, description Description) error
	Describe(batch *TypeBatch, index int) Description
	AccumulatedImpulse(batch *TypeBatch, index int) float64
	BodyPair(batch *TypeBatch, index int) (a, b int32)

	Prestep(batch *TypeBatch, store *bodies.Store, dt, inverseDt float32, startBundle, endBundle int)
	WarmStart(batch *TypeBatch, store *bodies.Store, startBundle, endBundle int)
	SolveIteration(batch *TypeBatch, store *bodies.Store, startBundle, endBundle int)
}
