package endpoint

import "errors"

var (
	// ErrInvalidEndpoint reports a raw endpoint value that cannot be normalized.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrNotInitialized reports that no endpoint has been loaded or set yet.
	ErrNotInitialized = errors.New("endpoint not initialized")
)
