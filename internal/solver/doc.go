// Package solver implements the generic sequential-impulse engine.
//
// A constraint kind is defined by three bundle-shaped data types and a set of
// operations:
//
//   - PrestepData: SoA copy of the user description, refreshed each step
//   - Projection: pose-dependent Jacobians and softness terms, rebuilt in Prestep
//   - AccumulatedImpulse: running impulse carried across iterations and steps
//
// [TwoBodyFunctions] supplies Prestep, WarmStart and Solve for one kind and
// [TwoBodyTypeProcessor] binds it to a dense kind id, translating the untyped
// storage of a [TypeBatch] into typed calls. The [Registry] routes batches to
// processors by id once per batch, never per constraint.
//
// # Batches
//
// A [ConstraintSet] groups constraints into batches whose referenced bodies are
// pairwise disjoint. Every type batch in one batch can therefore run
// concurrently without locks. Disjointness is a construction invariant and is
// not verified while solving.
//
// # Step Structure
//
//	solver.Prestep(dt)            // all batches, parallel
//	for each batch: WarmStart     // barrier between batches
//	for i := 0; i < iterations; i++ {
//	    for each batch: Solve     // barrier between batches
//	}
//
// [Solver.Step] runs the whole sequence to completion. There is no
// cancellation: a caller that wants to abort drops the frame.
package solver
