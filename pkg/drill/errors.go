package drill

import "errors"

// Sentinel errors for drill construction and traversal. Compare with errors.Is.
var (
	ErrInvalidConfiguration = errors.New("drill: invalid configuration")
	ErrInvalidArgument      = errors.New("drill: invalid argument")
	ErrInvalidState         = errors.New("drill: invalid state")
)
