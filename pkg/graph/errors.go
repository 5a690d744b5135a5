package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID indicates an entity with the same ID already exists.
	ErrDuplicateID = errors.New("duplicate entity id")

	// ErrUnknownEntity indicates a referenced entity does not exist.
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrInvalidWeight indicates a relationship weight that is not positive.
	ErrInvalidWeight = errors.New("relationship weight must be positive")

	// ErrSelfLoop indicates a relationship whose endpoints are the same entity.
	ErrSelfLoop = errors.New("relationship endpoints must differ")

	// ErrInvalidKind indicates an entity kind outside the declared set.
	ErrInvalidKind = errors.New("invalid entity kind")

	// ErrEmptyID indicates an entity without an identifier.
	ErrEmptyID = errors.New("entity id cannot be empty")
)

// DuplicateIDError is returned by AddEntity when the ID is taken.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("entity %q already exists", e.ID)
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateID }

// UnknownEntityError is returned when a relationship or move references a missing entity.
type UnknownEntityError struct {
	ID string
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("entity %q not found", e.ID)
}

func (e *UnknownEntityError) Unwrap() error { return ErrUnknownEntity }

// InvalidWeightError is returned by AddRelationship for a weight <= 0.
type InvalidWeightError struct {
	Weight int
}

func (e *InvalidWeightError) Error() string {
	return fmt.Sprintf("invalid relationship weight %d: must be positive", e.Weight)
}

func (e *InvalidWeightError) Unwrap() error { return ErrInvalidWeight }
