package solver

import (
	"fmt"
	"sort"
)

// Registry maps dense kind ids to processors.
type Registry struct {
	processors []TypeProcessor
}

func NewRegistry() *Registry {
	return &Registry{processors: make([]TypeProcessor, 0, 64)}
}

// Register installs p under p.TypeID().
func (r *Registry) Register(p TypeProcessor) error {
	id := p.TypeID()
	if id < 0 {
		return fmt.Errorf("register kind %d: %w", id, ErrUnknownType)
	}
	for len(r.processors) <= id {
		r.processors = append(r.processors, nil)
	}
	if r.processors[id] != nil {
		return fmt.Errorf("register kind %d: %w", id, ErrDuplicateType)
	}
	r.processors[id] = p
	return nil
}

// Processor returns the processor registered under id.
func (r *Registry) Processor(id int) (TypeProcessor, error) {
	if id < 0 || id >= len(r.processors) || r.processors[id] == nil {
		return nil, fmt.Errorf("kind %d: %w", id, ErrUnknownType)
	}
	return r.processors[id], nil
}

// TypeIDs lists registered ids in ascending order.
func (r *Registry) TypeIDs() []int {
	ids := make([]int, 0, len(r.processors))
	for id, p := range r.processors {
		if p != nil {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}
