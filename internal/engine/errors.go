package engine

import "errors"

var (
	// ErrInvalidInput marks a well-formed input with unusable values:
	// a non-unit direction, a missing tile, an out-of-range index.
	ErrInvalidInput = errors.New("invalid input")
	// ErrWrongPhase marks an input the live phase does not accept.
	ErrWrongPhase = errors.New("input not accepted in this phase")
	// ErrTargetMissing marks an effect whose target no longer exists.
	ErrTargetMissing = errors.New("effect target missing")
	// ErrInvariant marks a broken store link. It indicates a sequencing bug.
	ErrInvariant = errors.New("store invariant violated")
)
