package spacetime

import "errors"

var (
	// ErrInvalidTime is returned for NaN or out-of-range time values.
	ErrInvalidTime = errors.New("invalid time value")

	// ErrInvalidRange is returned when a range ends before it starts.
	ErrInvalidRange = errors.New("invalid time range")

	ErrDuplicateClip   = errors.New("clip already exists")
	ErrUnknownPlugin   = errors.New("unknown plugin")
	ErrDuplicatePlugin = errors.New("plugin already registered")
	ErrDuplicateLayer  = errors.New("layer already exists")
	ErrUnknownLayer    = errors.New("unknown layer")

	// ErrDetached is returned by clip operations once the clip has been removed.
	ErrDetached = errors.New("clip is not part of a composition")

	// ErrDestroyed is returned by every mutating call after Destroy.
	ErrDestroyed = errors.New("composition destroyed")
)
