package logctx

import "errors"

// Access and lookup errors.
var (
	// ErrAccessDenied is returned by every mutating operation when the
	// installed AccessPolicy rejects the required capability. No state is
	// modified when it is returned.
	ErrAccessDenied = errors.New("log context access denied")

	// ErrLevelNotFound is returned by GetLevelForName when no live
	// registration exists for the requested name. Weakly registered levels
	// whose instances have been reclaimed count as absent.
	ErrLevelNotFound = errors.New("unknown level")
)

// Argument validation errors.
var (
	ErrNilKey         = errors.New("attachment key is required")
	ErrNilValue       = errors.New("attachment value is required")
	ErrNilLevel       = errors.New("level is required")
	ErrNilHandler     = errors.New("handler is required")
	ErrNilSelector    = errors.New("selector is required")
	ErrNilInitializer = errors.New("initializer is required")
)
