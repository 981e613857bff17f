package solver

import (
	"fmt"

	"github.com/san-kum/impulse/internal/bodies"
)

// TwoBodyFunctions is the per-kind numerical contract. P is the prestep
// bundle, Proj the projection bundle and A the accumulated impulse bundle.
//
// Prestep runs once per step before any impulse iteration and freezes every
// pose-dependent term for the rest of the step. ApplyImpulse maps a
// constraint-space impulse to velocity changes on both bodies. WarmStart
// reapplies the accumulated impulse and Solve performs one sequential-impulse
// iteration, clamping the running total; both apply through ApplyImpulse.
type TwoBodyFunctions[P, Proj, A any] interface {
	Prestep(store *bodies.Store, refs *bodies.TwoBodyReferences, count int,
		dt, inverseDt float32, inertiaA, inertiaB *bodies.Inertias,
		prestep *P, projection *Proj)
	ApplyImpulse(velocityA, velocityB *bodies.Velocities, projection *Proj, impulse A)
	WarmStart(velocityA, velocityB *bodies.Velocities, projection *Proj, accumulated *A)
	Solve(velocityA, velocityB *bodies.Velocities, projection *Proj, accumulated *A)
}

// DescriptionCodec moves single constraints between scalar descriptions and
// bundle lanes ("first/offset instance" addressing). CopyLane moves the
// stored lane data, prestep and accumulated impulse, without converting it.
type DescriptionCodec[P, A any] interface {
	WriteDescription(prestep *P, lane int, description Description) error
	ReadDescription(prestep *P, lane int) Description
	ReadImpulse(accumulated *A, lane int) float64
	CopyLane(sourcePrestep *P, sourceAccumulated *A, sourceLane int, prestep *P, accumulated *A, lane int)
	ClearLane(prestep *P, accumulated *A, lane int)
}

// TwoBodyKind is implemented by concrete constraint kinds.
type TwoBodyKind[P, Proj, A any] interface {
	TwoBodyFunctions[P, Proj, A]
	DescriptionCodec[P, A]
}

// TwoBodyTypeProcessor binds a kind to an id. It is instantiated once per
// kind, so the numerical calls inside the bundle loops are static.
type TwoBodyTypeProcessor[P, Proj, A any] struct {
	typeID int
	kind   TwoBodyKind[P, Proj, A]
}

// NewTwoBodyTypeProcessor creates a processor for kind under typeID.
func NewTwoBodyTypeProcessor[P, Proj, A any](typeID int, kind TwoBodyKind[P, Proj, A]) *TwoBodyTypeProcessor[P, Proj, A] {
	return &TwoBodyTypeProcessor[P, Proj, A]{typeID: typeID, kind: kind}
}

func (p *TwoBodyTypeProcessor[P, Proj, A]) TypeID() int { return p.typeID }

func (p *TwoBodyTypeProcessor[P, Proj, A]) views(batch *TypeBatch) ([]P, []Proj, []A) {
	assertType(batch, p.typeID)
	return batch.PrestepData.([]P), batch.Projection.([]Proj), batch.AccumulatedImpulses.([]A)
}

func (p *TwoBodyTypeProcessor[P, Proj, A]) Initialize(batch *TypeBatch, capacity int) {
	bundles := BundleCount(capacity)
	batch.TypeID = p.typeID
	batch.BodyReferences = make([]bodies.TwoBodyReferences, 0, bundles)
	batch.PrestepData = make([]P, 0, bundles)
	batch.Projection = make([]Proj, 0, bundles)
	batch.AccumulatedImpulses = make([]A, 0, bundles)
	batch.Handles = make([]Handle, 0, capacity)
	batch.ConstraintCount = 0
}

func (p *TwoBodyTypeProcessor[P, Proj, A]) Allocate(batch *TypeBatch, handle Handle, bodyA, bodyB int32) int {
	prestep, projection, accumulated := p.views(batch)
	index := batch.ConstraintCount
	bundle, inner := BundleIndices(index)
	if bundle == len(batch.BodyReferences) {
		var zeroP P
		var zeroProj Proj
		var zeroA A
		batch.BodyReferences = append(batch.BodyReferences, bodies.EmptyReferences())
		batch.PrestepData = append(prestep, zeroP)
		batch.Projection = append(projection, zeroProj)
		batch.AccumulatedImpulses = append(accumulated, zeroA)
	}
	batch.BodyReferences[bundle].A[inner] = bodyA
	batch.BodyReferences[bundle].B[inner] = bodyB
	batch.Handles = append(batch.Handles, handle)
	batch.ConstraintCount++
	return index
}

func (p *TwoBodyTypeProcessor[P, Proj, A]) Remove(batch *TypeBatch, index int) (Handle, bool) {
	prestep, projection, accumulated := p.views(batch)
	p.checkIndex(batch, index)

	last := batch.ConstraintCount - 1
	lastBundle, lastInner := BundleIndices(last)
	var moved Handle
	ok := index != last
	if ok {
		bundle, inner := BundleIndices(index)
		p.kind.CopyLane(&prestep[lastBundle], &accumulated[lastBundle], lastInner,
			&prestep[bundle], &accumulated[bundle], inner)
		batch.BodyReferences[bundle].A[inner] = batch.BodyReferences[lastBundle].A[lastInner]
		batch.BodyReferences[bundle].B[inner] = batch.BodyReferences[lastBundle].B[lastInner]
		moved = batch.Handles[last]
		batch.Handles[index] = moved
	}

	p.kind.ClearLane(&prestep[lastBundle], &accumulated[lastBundle], lastInner)
	batch.BodyReferences[lastBundle].A[lastInner] = bodies.Sentinel
	batch.BodyReferences[lastBundle].B[lastInner] = bodies.Sentinel
	batch.Handles = batch.Handles[:last]
	batch.ConstraintCount--

	if lastInner == 0 {
		batch.BodyReferences = batch.BodyReferences[:lastBundle]
		batch.PrestepData = prestep[:lastBundle]
		batch.Projection = projection[:lastBundle]
		batch.AccumulatedImpulses = accumulated[:lastBundle]
	}
	return moved, ok
}

func (p *TwoBodyTypeProcessor[P, Proj, A]) checkIndex(batch *TypeBatch, index int) {
	if index < 0 || index >= batch.ConstraintCount {
		panic(fmt.Sprintf("solver: constraint index %d out of range [0,%d)", index, batch.ConstraintCount))
	}
}

func (p *TwoBodyTypeProcessor[P, Proj, A]) ApplyDescription(batch *TypeBatch, index int, description Description) error {
	prestep, _, _ := p.views(batch)
	p.checkIndex(batch, index)
	if description.ConstraintTypeID() != p.typeID {
		return fmt.Errorf("apply kind %d to kind %d: %w", description.ConstraintTypeID(), p.typeID, ErrDescriptionType)
	}
	bundle, inner := BundleIndices(index)
	return p.kind.WriteDescription(&prestep[bundle], inner, description)
}

func (p *TwoBodyTypeProcessor[P, Proj, A]) Describe(batch *TypeBatch, index int) Description {
	prestep, _, _ := p.views(batch)
	p.checkIndex(batch, index)
	bundle, inner := BundleIndices(index)
	return p.kind.ReadDescription(&prestep[bundle], inner)
}

func (p *TwoBodyTypeProcessor[P, Proj, A]) AccumulatedImpulse(batch *TypeBatch, index int) float64 {
	_, _, accumulated := p.views(batch)
	p.checkIndex(batch, index)
	bundle, inner := BundleIndices(index)
	return p.kind.ReadImpulse(&accumulated[bundle], inner)
}

func (p *TwoBodyTypeProcessor[P, Proj, A]) BodyPair(batch *TypeBatch, index int) (int32, int32) {
	assertType(batch, p.typeID)
	p.checkIndex(batch, index)
	bundle, inner := BundleIndices(index)
	return batch.BodyReferences[bundle].A[inner], batch.BodyReferences[bundle].B[inner]
}

func (p *TwoBodyTypeProcessor[P, Proj, A]) Prestep(batch *TypeBatch, store *bodies.Store, dt, inverseDt float32, startBundle, endBundle int) {
	prestep, projection, _ := p.views(batch)
	var inertiaA, inertiaB bodies.Inertias
	for i := startBundle; i < endBundle; i++ {
		refs := &batch.BodyReferences[i]
		count := batch.LaneCount(i)
		store.GatherInertia(refs, count, &inertiaA, &inertiaB)
		p.kind.Prestep(store, refs, count, dt, inverseDt, &inertiaA, &inertiaB, &prestep[i], &projection[i])
	}
}

func (p *TwoBodyTypeProcessor[P, Proj, A]) WarmStart(batch *TypeBatch, store *bodies.Store, startBundle, endBundle int) {
	_, projection, accumulated := p.views(batch)
	var velocityA, velocityB bodies.Velocities
	for i := startBundle; i < endBundle; i++ {
		refs := &batch.BodyReferences[i]
		count := batch.LaneCount(i)
		store.GatherVelocities(refs, count, &velocityA, &velocityB)
		p.kind.WarmStart(&velocityA, &velocityB, &projection[i], &accumulated[i])
		store.ScatterVelocities(refs, count, &velocityA, &velocityB)
	}
}

func (p *TwoBodyTypeProcessor[P, Proj, A]) SolveIteration(batch *TypeBatch, store *bodies.Store, startBundle, endBundle int) {
	_, projection, accumulated := p.views(batch)
	var velocityA, velocityB bodies.Velocities
	for i := startBundle; i < endBundle; i++ {
		refs := &batch.BodyReferences[i]
		count := batch.LaneCount(i)
		store.GatherVelocities(refs, count, &velocityA, &velocityB)
		p.kind.Solve(&velocityA, &velocityB, &projection[i], &accumulated[i])
		store.ScatterVelocities(refs, count, &velocityA, &velocityB)
	}
}
