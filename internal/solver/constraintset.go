package solver

import (
	"fmt"

	"github.com/san-kum/impulse/internal/bodies"
)

// Batch holds type batches whose referenced bodies are pairwise disjoint.
type Batch struct {
	TypeBatches []*TypeBatch
	typeIndex   map[int]int
	referenced  map[int32]struct{}
}

func newBatch() *Batch {
	return &Batch{
		typeIndex:  make(map[int]int),
		referenced: make(map[int32]struct{}),
	}
}

// References reports whether any constraint in the batch touches body.
func (b *Batch) References(body int32) bool {
	_, ok := b.referenced[body]
	return ok
}

func (b *Batch) typeBatch(p TypeProcessor, capacity int) *TypeBatch {
	if i, ok := b.typeIndex[p.TypeID()]; ok {
		return b.TypeBatches[i]
	}
	tb := &TypeBatch{}
	p.Initialize(tb, capacity)
	b.typeIndex[p.TypeID()] = len(b.TypeBatches)
	b.TypeBatches = append(b.TypeBatches, tb)
	return tb
}

func (b *Batch) removeTypeBatch(typeID int) {
	i, ok := b.typeIndex[typeID]
	if !ok {
		return
	}
	last := len(b.TypeBatches) - 1
	if i != last {
		b.TypeBatches[i] = b.TypeBatches[last]
		b.typeIndex[b.TypeBatches[i].TypeID] = i
	}
	b.TypeBatches[last] = nil
	b.TypeBatches = b.TypeBatches[:last]
	delete(b.typeIndex, typeID)
}

// ConstraintSet owns every constraint and the batches they live in.
//
// Add assigns constraints greedily to the first batch referencing neither
// body. This stands in for a proper graph-colouring pass; the solver only
// relies on the resulting disjointness.
type ConstraintSet struct {
	registry  *Registry
	store     *bodies.Store
	batches   []*Batch
	locations []Location
	live      []bool
	free      []Handle
	capacity  int
}

// NewConstraintSet creates an empty set. capacity sizes new type batches.
func NewConstraintSet(registry *Registry, store *bodies.Store, capacity int) *ConstraintSet {
	return &ConstraintSet{
		registry: registry,
		store:    store,
		capacity: capacity,
	}
}

// Batches returns the batches in solve order.
func (s *ConstraintSet) Batches() []*Batch { return s.batches }

// Count returns the number of live constraints.
func (s *ConstraintSet) Count() int {
	return len(s.locations) - len(s.free)
}

// Add creates a constraint between bodyA and bodyB.
func (s *ConstraintSet) Add(bodyA, bodyB int, description Description) (Handle, error) {
	if !s.store.Contains(bodyA) {
		return 0, fmt.Errorf("add constraint on body %d: %w", bodyA, bodies.ErrBodyNotFound)
	}
	if !s.store.Contains(bodyB) {
		return 0, fmt.Errorf("add constraint on body %d: %w", bodyB, bodies.ErrBodyNotFound)
	}
	if bodyA == bodyB {
		return 0, ErrSameBody
	}
	p, err := s.registry.Processor(description.ConstraintTypeID())
	if err != nil {
		return 0, err
	}

	a, b := int32(bodyA), int32(bodyB)
	batchCount := len(s.batches)
	batchIndex := s.findBatch(a, b)
	batch := s.batches[batchIndex]
	tb := batch.typeBatch(p, s.capacity)

	handle := s.allocateHandle()
	index := p.Allocate(tb, handle, a, b)
	if err := p.ApplyDescription(tb, index, description); err != nil {
		p.Remove(tb, index)
		if tb.ConstraintCount == 0 {
			batch.removeTypeBatch(p.TypeID())
		}
		// A batch created for this constraint holds nothing else.
		if len(s.batches) > batchCount {
			s.batches = s.batches[:batchCount]
		}
		s.releaseHandle(handle)
		return 0, err
	}

	batch.referenced[a] = struct{}{}
	batch.referenced[b] = struct{}{}
	s.locations[handle] = Location{BatchIndex: batchIndex, TypeID: p.TypeID(), Index: index}
	Logger().Debug("constraint added",
		"handle", handle, "kind", p.TypeID(), "batch", batchIndex, "index", index)
	return handle, nil
}

func (s *ConstraintSet) findBatch(a, b int32) int {
	for i, batch := range s.batches {
		if !batch.References(a) && !batch.References(b) {
			return i
		}
	}
	s.batches = append(s.batches, newBatch())
	Logger().Debug("batch created", "batch", len(s.batches)-1)
	return len(s.batches) - 1
}

func (s *ConstraintSet) allocateHandle() Handle {
	if n := len(s.free); n > 0 {
		h := s.free[n-1]
		s.free = s.free[:n-1]
		s.live[h] = true
		return h
	}
	s.locations = append(s.locations, Location{})
	s.live = append(s.live, true)
	return Handle(len(s.locations) - 1)
}

func (s *ConstraintSet) releaseHandle(h Handle) {
	s.live[h] = false
	s.locations[h] = Location{}
	s.free = append(s.free, h)
}

// Location returns where a constraint is stored.
func (s *ConstraintSet) Location(handle Handle) (Location, error) {
	if handle < 0 || int(handle) >= len(s.locations) || !s.live[handle] {
		return Location{}, fmt.Errorf("handle %d: %w", handle, ErrInvalidHandle)
	}
	return s.locations[handle], nil
}

func (s *ConstraintSet) resolve(handle Handle) (Location, TypeProcessor, *TypeBatch, error) {
	loc, err := s.Location(handle)
	if err != nil {
		return Location{}, nil, nil, err
	}
	p, err := s.registry.Processor(loc.TypeID)
	if err != nil {
		return Location{}, nil, nil, err
	}
	batch := s.batches[loc.BatchIndex]
	return loc, p, batch.TypeBatches[batch.typeIndex[loc.TypeID]], nil
}

// Update replaces the description of an existing constraint. The accumulated
// impulse is kept.
func (s *ConstraintSet) Update(handle Handle, description Description) error {
	loc, p, tb, err := s.resolve(handle)
	if err != nil {
		return err
	}
	return p.ApplyDescription(tb, loc.Index, description)
}

// Describe reads a constraint's description back out of bundle storage.
func (s *ConstraintSet) Describe(handle Handle) (Description, error) {
	loc, p, tb, err := s.resolve(handle)
	if err != nil {
		return nil, err
	}
	return p.Describe(tb, loc.Index), nil
}

// AccumulatedImpulse returns the impulse carried by a constraint.
func (s *ConstraintSet) AccumulatedImpulse(handle Handle) (float64, error) {
	loc, p, tb, err := s.resolve(handle)
	if err != nil {
		return 0, err
	}
	return p.AccumulatedImpulse(tb, loc.Index), nil
}

// Bodies returns the two bodies a constraint connects.
func (s *ConstraintSet) Bodies(handle Handle) (int, int, error) {
	loc, p, tb, err := s.resolve(handle)
	if err != nil {
		return 0, 0, err
	}
	a, b := p.BodyPair(tb, loc.Index)
	return int(a), int(b), nil
}

// Remove deletes a constraint and frees its handle.
func (s *ConstraintSet) Remove(handle Handle) error {
	loc, p, tb, err := s.resolve(handle)
	if err != nil {
		return err
	}
	a, b := p.BodyPair(tb, loc.Index)
	if moved, ok := p.Remove(tb, loc.Index); ok {
		s.locations[moved].Index = loc.Index
	}

	batch := s.batches[loc.BatchIndex]
	delete(batch.referenced, a)
	delete(batch.referenced, b)
	if tb.ConstraintCount == 0 {
		batch.removeTypeBatch(loc.TypeID)
	}
	s.releaseHandle(handle)
	Logger().Debug("constraint removed", "handle", handle, "kind", loc.TypeID, "batch", loc.BatchIndex)
	return nil
}

// Handles returns the live handles in ascending order.
func (s *ConstraintSet) Handles() []Handle {
	out := make([]Handle, 0, s.Count())
	for h, ok := range s.live {
		if ok {
			out = append(out, Handle(h))
		}
	}
	return out
}
