package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHandle indicates a handle that does not name a live constraint.
	ErrInvalidHandle = errors.New("solver: invalid constraint handle")

	// ErrUnknownType indicates a kind id with no registered processor.
	ErrUnknownType = errors.New("solver: unknown constraint type")

	// ErrDuplicateType indicates a second processor registered under one id.
	ErrDuplicateType = errors.New("solver: constraint type already registered")

	// ErrDescriptionType indicates a description whose kind differs from the
	// constraint it is applied to.
	ErrDescriptionType = errors.New("solver: description type mismatch")

	// ErrSameBody indicates a two-body constraint attached twice to one body.
	ErrSameBody = errors.New("solver: constraint references the same body twice")

	// ErrInvalidTimestep indicates a non-positive dt.
	ErrInvalidTimestep = errors.New("solver: timestep must be positive")
)

// assertType panics when a batch is handed to a processor of another kind.
// Reinterpreting the storage would corrupt it, so there is no recovery.
func assertType(batch *TypeBatch, typeID int) {
	if batch.TypeID != typeID {
		panic(fmt.Sprintf("solver: type batch holds kind %d, processor expects %d", batch.TypeID, typeID))
	}
}
