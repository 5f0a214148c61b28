package preview

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a tree failed validation.
	ErrValidation = errors.New("validation error")

	// ErrMappingMiss indicates no addressable node precedes a source line.
	ErrMappingMiss = errors.New("no addressable node for line")

	// ErrPatchInvariant indicates a patched tree diverged from its target snapshot.
	ErrPatchInvariant = errors.New("patched tree does not match snapshot")

	// ErrInvalidPath indicates a patch path did not resolve against the live tree.
	ErrInvalidPath = errors.New("invalid patch path")

	// ErrInvalidOp indicates an unknown or malformed patch operation.
	ErrInvalidOp = errors.New("invalid patch op")
)
